package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet is one fresh wallet's cumulative position on a single outcome within
// the detection window. A wallet has at most one live Bet per outcome; a
// repeat bet accumulates Amount and keeps the first-seen Timestamp.
type Bet struct {
	Wallet    string          `json:"wallet"`
	TxHash    string          `json:"txHash"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ClusterAlert is raised when enough distinct fresh wallets bet the same
// outcome within the detection window. Identity and market fields are frozen
// at creation; only FreshWallets, TotalAmount, LatestBetAt and Wallets are
// mutated by subsequent updates.
type ClusterAlert struct {
	ID           string          `json:"id"`
	OutcomeID    string          `json:"outcomeId"`
	Question     string          `json:"question"`
	Outcome      string          `json:"outcome"`
	Price        *float64        `json:"price"`
	Slug         string          `json:"slug"`
	ConditionID  string          `json:"conditionId"`
	Image        string          `json:"image,omitempty"`
	MarketURL    string          `json:"marketUrl,omitempty"`
	FreshWallets int             `json:"freshWallets"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	FirstBetAt   time.Time       `json:"firstBetAt"`
	LatestBetAt  time.Time       `json:"latestBetAt"`
	SampleTxHash string          `json:"sampleTxHash"`
	Wallets      []Bet           `json:"wallets"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PipelineStats is the periodic statistics snapshot published by the scanner.
type PipelineStats struct {
	TradesSeen      int64     `json:"tradesSeen"`
	FreshWallets    int64     `json:"freshWallets"`
	AlertsTriggered int64     `json:"alertsTriggered"`
	StartedAt       time.Time `json:"startedAt"`
	LastBlock       uint64    `json:"lastBlock"`
	Connected       bool      `json:"connected"`
}

// AlertSink receives detection output. Implementations log to the console,
// publish to the dashboard signal bus, or fan out to several sinks.
type AlertSink interface {
	// NewAlert is called exactly once per outcome, when its fresh-wallet
	// count first crosses the threshold.
	NewAlert(ctx context.Context, alert ClusterAlert) error
	// AlertUpdate is called when an already-alerted outcome receives
	// further fresh-wallet bets.
	AlertUpdate(ctx context.Context, alert ClusterAlert) error
	// Stats publishes a periodic statistics snapshot.
	Stats(ctx context.Context, stats PipelineStats) error
}

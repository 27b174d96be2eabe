// Package pipeline contains the ingestion side of the sentinel: the chunked
// chain scanner and the trade processor that feeds the freshness classifier,
// bet ledger, and cluster detector.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polysentinel/sentinel/internal/detector"
	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/ledger"
)

// usdcDecimals is the fixed-point scale of the exchange's collateral asset.
const usdcDecimals = 6

// FreshnessClassifier gates which participants reach the ledger.
type FreshnessClassifier interface {
	IsFresh(ctx context.Context, wallet string) bool
}

// Processor turns raw trade events into ledger entries. For each event it
// derives the maker-side and taker-side participants, applies the zero
// address and minimum-amount filters, classifies freshness, and records
// surviving bets, triggering detection on first-time wallet+outcome entries.
type Processor struct {
	classifier FreshnessClassifier
	ledger     *ledger.Ledger
	detector   *detector.Detector
	minBet     decimal.Decimal
	logger     *slog.Logger

	tradesSeen   atomic.Int64
	freshWallets atomic.Int64
}

// NewProcessor creates a Processor. minBet is the fiat-equivalent minimum
// per-participant amount; zero disables the filter.
func NewProcessor(classifier FreshnessClassifier, l *ledger.Ledger, d *detector.Detector, minBet decimal.Decimal, logger *slog.Logger) *Processor {
	return &Processor{
		classifier: classifier,
		ledger:     l,
		detector:   d,
		minBet:     minBet,
		logger:     logger.With(slog.String("component", "processor")),
	}
}

// participant is one side of a fill, mapped to the outcome token it is
// taking a position in.
type participant struct {
	wallet    string
	outcomeID string
	amount    decimal.Decimal
}

// ProcessTrade handles a single decoded OrderFilled event, observed at now.
func (p *Processor) ProcessTrade(ctx context.Context, ev domain.TradeEvent, now time.Time) {
	p.tradesSeen.Add(1)

	for _, part := range participants(ev) {
		if part.wallet == domain.ZeroAddress || part.outcomeID == domain.CollateralAssetID {
			continue
		}
		// Skip small bets before classifying: saves an RPC round-trip
		// per sub-threshold participant.
		if p.minBet.IsPositive() && part.amount.LessThan(p.minBet) {
			continue
		}
		if !p.classifier.IsFresh(ctx, part.wallet) {
			continue
		}

		first := p.ledger.Record(part.outcomeID, part.wallet, ev.TxHash, part.amount, now)
		if !first {
			continue
		}

		p.freshWallets.Add(1)
		p.logger.Debug("fresh wallet bet recorded",
			slog.String("wallet", part.wallet),
			slog.String("outcome_id", part.outcomeID),
			slog.String("amount", part.amount.StringFixed(2)),
			slog.String("tx_hash", ev.TxHash),
		)

		p.detector.Evaluate(ctx, part.outcomeID, now)
	}
}

// participants derives the two sides of a fill. A side whose own asset is
// the collateral is buying the counterparty's outcome token, so its bet maps
// to that token with its collateral spend as the amount; a side holding a
// token keeps its own token and filled amount.
func participants(ev domain.TradeEvent) [2]participant {
	maker := participant{
		wallet:    ev.Maker,
		outcomeID: ev.MakerAssetID,
		amount:    scaleAmount(ev.MakerAmountFilled),
	}
	if ev.MakerAssetID == domain.CollateralAssetID {
		maker.outcomeID = ev.TakerAssetID
	}

	taker := participant{
		wallet:    ev.Taker,
		outcomeID: ev.TakerAssetID,
		amount:    scaleAmount(ev.TakerAmountFilled),
	}
	if ev.TakerAssetID == domain.CollateralAssetID {
		taker.outcomeID = ev.MakerAssetID
	}

	return [2]participant{maker, taker}
}

// scaleAmount converts a fixed-point chain amount to fiat-equivalent units.
func scaleAmount(units int64) decimal.Decimal {
	return decimal.New(units, -usdcDecimals)
}

// TradesSeen returns the number of trade events processed since startup.
func (p *Processor) TradesSeen() int64 {
	return p.tradesSeen.Load()
}

// FreshWallets returns the number of first-time fresh-wallet bets recorded
// since startup.
func (p *Processor) FreshWallets() int64 {
	return p.freshWallets.Load()
}

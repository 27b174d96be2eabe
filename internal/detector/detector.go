// Package detector evaluates ledger state against the fresh-wallet threshold
// and manages the one-alert-per-outcome lifecycle.
package detector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/ledger"
)

// MetadataResolver supplies market metadata for an outcome token; nil means
// unavailable.
type MetadataResolver interface {
	Resolve(ctx context.Context, tokenID string) *domain.MarketInfo
}

// FilterFunc reports whether a market is excluded from alerting by content
// policy.
type FilterFunc func(domain.MarketInfo) bool

// Config holds detection parameters.
type Config struct {
	// Threshold is the fresh-wallet count at which an outcome alerts.
	Threshold int
	// MaxAlerts bounds the retained alert list; the oldest alert is
	// evicted past capacity.
	MaxAlerts int
	// AlertOnUnknownMarket decides the policy for outcomes whose metadata
	// cannot be resolved: alert with placeholder labels, or suppress the
	// outcome permanently.
	AlertOnUnknownMarket bool
}

// Detector drives the per-outcome alert state machine. An outcome is Unseen
// until its first fresh bet, below threshold until enough distinct fresh
// wallets converge, and then permanently alerted: either active (a
// ClusterAlert exists and receives in-place updates) or suppressed by
// content policy. Suppression is terminal.
type Detector struct {
	ledger   *ledger.Ledger
	resolver MetadataResolver
	filter   FilterFunc
	sink     domain.AlertSink
	cfg      Config
	logger   *slog.Logger

	mu        sync.RWMutex
	alerted   map[string]bool                 // every outcome that crossed the threshold
	active    map[string]*domain.ClusterAlert // alerted minus suppressed
	alerts    []*domain.ClusterAlert          // creation order, bounded by MaxAlerts
	triggered int64
}

// New creates a Detector over the given ledger.
func New(l *ledger.Ledger, resolver MetadataResolver, filter FilterFunc, sink domain.AlertSink, cfg Config, logger *slog.Logger) *Detector {
	return &Detector{
		ledger:   l,
		resolver: resolver,
		filter:   filter,
		sink:     sink,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "detector")),
		alerted:  make(map[string]bool),
		active:   make(map[string]*domain.ClusterAlert),
	}
}

// Evaluate re-runs detection for an outcome. The trade processor calls it
// after every new-wallet bet insertion; it is not called for
// amount-accumulation-only updates.
func (d *Detector) Evaluate(ctx context.Context, outcomeID string, now time.Time) {
	bets := d.ledger.FreshBets(outcomeID, now)

	d.mu.Lock()
	defer d.mu.Unlock()

	if alert, ok := d.active[outcomeID]; ok {
		d.update(ctx, alert, bets)
		return
	}
	if d.alerted[outcomeID] {
		// Suppressed; terminal.
		return
	}
	if len(bets) < d.cfg.Threshold {
		return
	}

	d.cross(ctx, outcomeID, bets, now)
}

// cross handles the first threshold crossing for an outcome: it resolves
// metadata once, applies the content policy, and either creates the alert or
// permanently suppresses the outcome.
func (d *Detector) cross(ctx context.Context, outcomeID string, bets []domain.Bet, now time.Time) {
	d.alerted[outcomeID] = true

	info := d.resolver.Resolve(ctx, outcomeID)
	unknown := info == nil || info.Unknown()

	if unknown && !d.cfg.AlertOnUnknownMarket {
		d.logger.Info("outcome suppressed: metadata unavailable",
			slog.String("outcome_id", outcomeID),
			slog.Int("fresh_wallets", len(bets)),
		)
		return
	}
	if info != nil && d.filter(*info) {
		d.logger.Info("outcome suppressed by content policy",
			slog.String("outcome_id", outcomeID),
			slog.String("question", info.Question),
			slog.Int("fresh_wallets", len(bets)),
		)
		return
	}

	alert := d.newAlert(outcomeID, info, bets, now)
	d.active[outcomeID] = alert
	d.alerts = append(d.alerts, alert)
	if len(d.alerts) > d.cfg.MaxAlerts {
		d.alerts = d.alerts[len(d.alerts)-d.cfg.MaxAlerts:]
	}
	d.triggered++

	d.logger.Info("cluster alert created",
		slog.String("alert_id", alert.ID),
		slog.String("outcome_id", outcomeID),
		slog.String("question", alert.Question),
		slog.Int("fresh_wallets", alert.FreshWallets),
		slog.String("total_amount", alert.TotalAmount.StringFixed(2)),
	)

	if err := d.sink.NewAlert(ctx, *alert); err != nil {
		d.logger.Error("alert publish failed",
			slog.String("alert_id", alert.ID),
			slog.String("error", err.Error()),
		)
	}
}

// update mutates an active alert in place. Identity and market fields stay
// frozen; the content filter is never re-evaluated and no second alert is
// ever created for the outcome.
func (d *Detector) update(ctx context.Context, alert *domain.ClusterAlert, bets []domain.Bet) {
	alert.FreshWallets = len(bets)
	alert.TotalAmount = sumAmounts(bets)
	alert.LatestBetAt = latestTimestamp(bets, alert.LatestBetAt)
	alert.Wallets = append(alert.Wallets[:0:0], bets...)

	if err := d.sink.AlertUpdate(ctx, *alert); err != nil {
		d.logger.Error("alert update publish failed",
			slog.String("alert_id", alert.ID),
			slog.String("error", err.Error()),
		)
	}
}

// newAlert freezes the alert's identity and market fields. Unknown metadata
// yields placeholder labels.
func (d *Detector) newAlert(outcomeID string, info *domain.MarketInfo, bets []domain.Bet, now time.Time) *domain.ClusterAlert {
	alert := &domain.ClusterAlert{
		ID:           uuid.NewString(),
		OutcomeID:    outcomeID,
		Question:     "Unknown market",
		Outcome:      domain.UnknownOutcome,
		FreshWallets: len(bets),
		TotalAmount:  sumAmounts(bets),
		Wallets:      append([]domain.Bet(nil), bets...),
		CreatedAt:    now,
	}
	if info != nil {
		if info.Question != "" {
			alert.Question = info.Question
		}
		alert.Outcome = info.Outcome
		alert.Price = info.Price
		alert.Slug = info.Slug
		alert.ConditionID = info.ConditionID
		alert.Image = info.Image
		alert.MarketURL = info.URL()
	}
	if len(bets) > 0 {
		alert.FirstBetAt = bets[0].Timestamp
		alert.LatestBetAt = latestTimestamp(bets, bets[0].Timestamp)
		alert.SampleTxHash = bets[0].TxHash
	}
	return alert
}

// Alerts returns a snapshot of retained alerts, most recent first. Safe for
// concurrent use by the dashboard handlers.
func (d *Detector) Alerts() []domain.ClusterAlert {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.ClusterAlert, 0, len(d.alerts))
	for i := len(d.alerts) - 1; i >= 0; i-- {
		out = append(out, *d.alerts[i])
	}
	return out
}

// Triggered returns the number of alerts created since startup.
func (d *Detector) Triggered() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.triggered
}

func sumAmounts(bets []domain.Bet) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bets {
		total = total.Add(b.Amount)
	}
	return total
}

func latestTimestamp(bets []domain.Bet, fallback time.Time) time.Time {
	latest := fallback
	for _, b := range bets {
		if b.Timestamp.After(latest) {
			latest = b.Timestamp
		}
	}
	return latest
}

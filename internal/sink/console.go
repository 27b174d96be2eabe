package sink

import (
	"context"
	"log/slog"

	"github.com/polysentinel/sentinel/internal/domain"
)

// Console is the domain.AlertSink for console mode: alerts go to the
// structured log and nowhere else.
type Console struct {
	logger *slog.Logger
}

// NewConsole creates a Console sink.
func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger.With(slog.String("component", "alerts"))}
}

// NewAlert logs a newly created cluster alert.
func (c *Console) NewAlert(_ context.Context, alert domain.ClusterAlert) error {
	c.logger.Warn("FRESH WALLET CLUSTER",
		slog.String("question", alert.Question),
		slog.String("outcome", alert.Outcome),
		slog.Int("fresh_wallets", alert.FreshWallets),
		slog.String("total_amount", alert.TotalAmount.StringFixed(2)),
		slog.String("market_url", alert.MarketURL),
		slog.String("sample_tx", alert.SampleTxHash),
	)
	return nil
}

// AlertUpdate logs growth of an existing cluster.
func (c *Console) AlertUpdate(_ context.Context, alert domain.ClusterAlert) error {
	c.logger.Warn("cluster growing",
		slog.String("question", alert.Question),
		slog.String("outcome", alert.Outcome),
		slog.Int("fresh_wallets", alert.FreshWallets),
		slog.String("total_amount", alert.TotalAmount.StringFixed(2)),
	)
	return nil
}

// Stats logs the periodic snapshot at debug level to keep the console
// readable.
func (c *Console) Stats(_ context.Context, stats domain.PipelineStats) error {
	c.logger.Debug("pipeline stats",
		slog.Int64("trades_seen", stats.TradesSeen),
		slog.Int64("fresh_wallets", stats.FreshWallets),
		slog.Int64("alerts", stats.AlertsTriggered),
		slog.Uint64("last_block", stats.LastBlock),
		slog.Bool("connected", stats.Connected),
	)
	return nil
}

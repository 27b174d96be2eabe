package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/notify"
)

// Notify bridges detection output to the notification channels (Telegram,
// Discord). Stats snapshots are not forwarded; operators subscribe to
// alerts, not heartbeats.
type Notify struct {
	notifier *notify.Notifier
}

// NewNotify creates a Notify sink over the given notifier.
func NewNotify(n *notify.Notifier) *Notify {
	return &Notify{notifier: n}
}

// NewAlert forwards an alert-created event.
func (n *Notify) NewAlert(ctx context.Context, alert domain.ClusterAlert) error {
	return n.notifier.Notify(ctx, EventAlertNew, "Fresh wallet cluster", formatAlert(alert))
}

// AlertUpdate forwards an alert-updated event.
func (n *Notify) AlertUpdate(ctx context.Context, alert domain.ClusterAlert) error {
	return n.notifier.Notify(ctx, EventAlertUpdate, "Cluster growing", formatAlert(alert))
}

// Stats is a no-op.
func (n *Notify) Stats(context.Context, domain.PipelineStats) error {
	return nil
}

// formatAlert renders a compact human-readable summary for chat channels.
func formatAlert(alert domain.ClusterAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s\n", alert.Question, alert.Outcome)
	fmt.Fprintf(&b, "%d fresh wallets, $%s total\n", alert.FreshWallets, alert.TotalAmount.StringFixed(2))
	if alert.Price != nil {
		fmt.Fprintf(&b, "current price: %.2f\n", *alert.Price)
	}
	if alert.MarketURL != "" {
		b.WriteString(alert.MarketURL)
	}
	return b.String()
}

package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/polysentinel/sentinel/internal/domain"
)

// Bus publishes detection output on the signal bus for the dashboard
// WebSocket hub to fan out.
type Bus struct {
	bus domain.SignalBus
}

// NewBus creates a Bus sink over the given signal bus.
func NewBus(bus domain.SignalBus) *Bus {
	return &Bus{bus: bus}
}

// NewAlert publishes an alert-created event.
func (b *Bus) NewAlert(ctx context.Context, alert domain.ClusterAlert) error {
	return b.publish(ctx, ChannelAlert, Envelope{Type: EventAlertNew, Alert: &alert})
}

// AlertUpdate publishes an alert-updated event.
func (b *Bus) AlertUpdate(ctx context.Context, alert domain.ClusterAlert) error {
	return b.publish(ctx, ChannelAlertUpdate, Envelope{Type: EventAlertUpdate, Alert: &alert})
}

// Stats publishes a statistics snapshot.
func (b *Bus) Stats(ctx context.Context, stats domain.PipelineStats) error {
	return b.publish(ctx, ChannelStats, Envelope{Type: EventStats, Stats: &stats})
}

func (b *Bus) publish(ctx context.Context, channel string, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("sink: marshal %s: %w", env.Type, err)
	}
	if err := b.bus.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("sink: publish %s: %w", env.Type, err)
	}
	return nil
}

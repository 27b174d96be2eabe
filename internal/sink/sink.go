// Package sink provides the alert outputs: a console logger, a signal-bus
// broadcaster for the dashboard, and a bridge to the notification channels.
// "Log to console" and "broadcast to subscribers" are two implementations of
// the same capability, selected by configuration.
package sink

import (
	"github.com/polysentinel/sentinel/internal/domain"
)

// Signal bus channels carrying detection output.
const (
	ChannelAlert       = "ch:alert"
	ChannelAlertUpdate = "ch:alert_update"
	ChannelStats       = "ch:stats"
)

// Event types carried in the Envelope.
const (
	EventAlertNew    = "alert_new"
	EventAlertUpdate = "alert_update"
	EventStats       = "stats"
)

// Envelope is the JSON frame published on the signal bus and forwarded to
// WebSocket clients.
type Envelope struct {
	Type  string                `json:"type"`
	Alert *domain.ClusterAlert  `json:"alert,omitempty"`
	Stats *domain.PipelineStats `json:"stats,omitempty"`
}

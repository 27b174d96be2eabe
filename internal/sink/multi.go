package sink

import (
	"context"
	"errors"

	"github.com/polysentinel/sentinel/internal/domain"
)

// Multi fans detection output out to several sinks. A single sink failure
// does not prevent delivery to the remaining sinks.
type Multi struct {
	sinks []domain.AlertSink
}

// NewMulti creates a Multi over the given sinks.
func NewMulti(sinks ...domain.AlertSink) *Multi {
	return &Multi{sinks: sinks}
}

// NewAlert delivers to every sink.
func (m *Multi) NewAlert(ctx context.Context, alert domain.ClusterAlert) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.NewAlert(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AlertUpdate delivers to every sink.
func (m *Multi) AlertUpdate(ctx context.Context, alert domain.ClusterAlert) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.AlertUpdate(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats delivers to every sink.
func (m *Multi) Stats(ctx context.Context, stats domain.PipelineStats) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Stats(ctx, stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

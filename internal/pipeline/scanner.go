package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/polysentinel/sentinel/internal/detector"
	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/ledger"
)

// ChainReader is the chain query surface the scanner depends on.
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterTrades(ctx context.Context, from, to uint64) ([]domain.TradeEvent, error)
}

// ScannerConfig holds scan-loop parameters.
type ScannerConfig struct {
	// ChunkSize bounds each log query's block range; public providers
	// reject wide ranges.
	ChunkSize uint64
	// StartBlocksBack is the backfill depth at startup.
	StartBlocksBack uint64
	// PollInterval is the sleep between scan cycles.
	PollInterval time.Duration
	// ChunkPause is the pause between chunk queries within a cycle.
	ChunkPause time.Duration
	// MaxRetries bounds retry attempts for transient chain errors within a
	// cycle. Retries back off exponentially from retryBaseDelay.
	MaxRetries int
}

// retryBaseDelay is the first backoff step for transient chain errors.
const retryBaseDelay = time.Second

// Scanner is the sole driver of the detection pipeline. Each cycle it reads
// the chain head, scans any new blocks in fixed-size chunks, feeds every
// trade through the processor, sweeps expired bets, and publishes stats.
// Cycles never overlap: the loop blocks on a sleep between them.
type Scanner struct {
	chain     ChainReader
	processor *Processor
	ledger    *ledger.Ledger
	detector  *detector.Detector
	sink      domain.AlertSink
	cfg       ScannerConfig
	logger    *slog.Logger

	cursor    atomic.Uint64 // last fully processed block
	connected atomic.Bool
	startedAt time.Time

	// Injectable clock and sleep so tests can drive cycles without real
	// waits.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScanner creates a Scanner.
func NewScanner(chain ChainReader, processor *Processor, l *ledger.Ledger, d *detector.Detector, sink domain.AlertSink, cfg ScannerConfig, logger *slog.Logger) *Scanner {
	return &Scanner{
		chain:     chain,
		processor: processor,
		ledger:    l,
		detector:  d,
		sink:      sink,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "scanner")),
		startedAt: time.Now().UTC(),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// Run executes the scan loop until the context is cancelled. The initial
// head read is fatal: the sentinel must not start half-blind.
func (s *Scanner) Run(ctx context.Context) error {
	head, err := s.chain.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("scanner: initial head read: %w", err)
	}

	start := head
	if s.cfg.StartBlocksBack < head {
		start = head - s.cfg.StartBlocksBack
	}
	s.cursor.Store(start)
	s.connected.Store(true)

	s.logger.Info("scan loop starting",
		slog.Uint64("head", head),
		slog.Uint64("cursor", start),
		slog.Uint64("chunk_size", s.cfg.ChunkSize),
		slog.Duration("poll_interval", s.cfg.PollInterval),
	)

	for {
		s.runCycle(ctx)

		if err := s.sleep(ctx, s.cfg.PollInterval); err != nil {
			s.logger.Info("scan loop stopped")
			return ctx.Err()
		}
	}
}

// runCycle performs one scan cycle. Upstream failures end the cycle without
// advancing the cursor; the same range is retried next cycle.
func (s *Scanner) runCycle(ctx context.Context) {
	head, err := s.withRetry(ctx, func() (uint64, error) {
		return s.chain.BlockNumber(ctx)
	})
	if err != nil {
		s.connected.Store(false)
		s.logger.Error("head read failed, will retry next cycle",
			slog.String("error", err.Error()),
		)
		return
	}
	s.connected.Store(true)

	s.scanRange(ctx, head)

	if removed := s.ledger.SweepExpired(s.now()); removed > 0 {
		s.logger.Debug("swept expired bets", slog.Int("removed", removed))
	}

	if err := s.sink.Stats(ctx, s.Stats()); err != nil {
		s.logger.Warn("stats publish failed", slog.String("error", err.Error()))
	}
}

// scanRange processes (cursor, head] in chunks. A chunk's cursor advances
// only after all its events are fully processed; on a chunk failure the
// remainder of the range is abandoned for this cycle.
func (s *Scanner) scanRange(ctx context.Context, head uint64) {
	cursor := s.cursor.Load()
	if head <= cursor {
		return
	}

	for from := cursor + 1; from <= head; {
		to := from + s.cfg.ChunkSize - 1
		if to > head {
			to = head
		}

		events, err := s.withRetryEvents(ctx, from, to)
		if err != nil {
			s.logger.Error("chunk fetch failed, cursor held",
				slog.Uint64("from", from),
				slog.Uint64("to", to),
				slog.String("error", err.Error()),
			)
			return
		}

		for _, ev := range events {
			s.processor.ProcessTrade(ctx, ev, s.now())
		}

		s.cursor.Store(to)
		if len(events) > 0 {
			s.logger.Info("chunk processed",
				slog.Uint64("from", from),
				slog.Uint64("to", to),
				slog.Int("trades", len(events)),
			)
		}

		from = to + 1
		if from <= head {
			if err := s.sleep(ctx, s.cfg.ChunkPause); err != nil {
				return
			}
		}
	}
}

// withRetry retries a head read with exponential backoff for transient
// errors.
func (s *Scanner) withRetry(ctx context.Context, fn func() (uint64, error)) (uint64, error) {
	var lastErr error
	delay := retryBaseDelay
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, delay); err != nil {
				return 0, ctx.Err()
			}
			delay *= 2
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// withRetryEvents retries a chunk fetch with exponential backoff.
func (s *Scanner) withRetryEvents(ctx context.Context, from, to uint64) ([]domain.TradeEvent, error) {
	var lastErr error
	delay := retryBaseDelay
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, delay); err != nil {
				return nil, ctx.Err()
			}
			delay *= 2
		}
		events, err := s.chain.FilterTrades(ctx, from, to)
		if err == nil {
			return events, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Stats assembles the current statistics snapshot. Safe for concurrent use
// by the dashboard handlers.
func (s *Scanner) Stats() domain.PipelineStats {
	return domain.PipelineStats{
		TradesSeen:      s.processor.TradesSeen(),
		FreshWallets:    s.processor.FreshWallets(),
		AlertsTriggered: s.detector.Triggered(),
		StartedAt:       s.startedAt,
		LastBlock:       s.cursor.Load(),
		Connected:       s.connected.Load(),
	}
}

// sleepCtx sleeps for d or until ctx is cancelled, returning the context
// error in the latter case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still yield to cancellation.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package app

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/polysentinel/sentinel/internal/detector"
	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/freshness"
	"github.com/polysentinel/sentinel/internal/ledger"
	"github.com/polysentinel/sentinel/internal/metadata"
	"github.com/polysentinel/sentinel/internal/pipeline"
	"github.com/polysentinel/sentinel/internal/server"
	"github.com/polysentinel/sentinel/internal/server/handler"
	"github.com/polysentinel/sentinel/internal/server/ws"
	"github.com/polysentinel/sentinel/internal/sink"
)

// pipelineParts groups what a mode needs after assembly: the scanner to run
// and the detector/scanner pair backing the dashboard snapshot.
type pipelineParts struct {
	scanner  *pipeline.Scanner
	detector *detector.Detector
}

// buildPipeline assembles the detection pipeline over the shared
// dependencies with the given alert sink.
func buildPipeline(deps *Dependencies, alertSink domain.AlertSink, logger *slog.Logger) pipelineParts {
	cfg := deps.Cfg

	classifier := freshness.NewClassifier(
		deps.Chain,
		deps.FreshCache,
		cfg.Freshness.TTL(),
		cfg.Freshness.MaxTxCount,
		logger,
	)

	resolver := metadata.NewResolver(deps.Gamma, deps.MarketCache, logger)

	led := ledger.New(cfg.Detector.Window())

	det := detector.New(led, resolver, metadata.ShouldFilter, alertSink, detector.Config{
		Threshold:            cfg.Detector.FreshWalletThreshold,
		MaxAlerts:            cfg.Detector.MaxAlerts,
		AlertOnUnknownMarket: cfg.Detector.AlertOnUnknownMarket,
	}, logger)

	minBet := decimal.NewFromFloat(cfg.Detector.MinBetAmount)
	proc := pipeline.NewProcessor(classifier, led, det, minBet, logger)

	scan := pipeline.NewScanner(deps.Chain, proc, led, det, alertSink, pipeline.ScannerConfig{
		ChunkSize:       cfg.Chain.ChunkSize,
		StartBlocksBack: cfg.Chain.StartBlocksBack,
		PollInterval:    cfg.Chain.PollInterval(),
		ChunkPause:      cfg.Chain.ChunkPause(),
		MaxRetries:      cfg.Chain.MaxRetries,
	}, logger)

	return pipelineParts{scanner: scan, detector: det}
}

// ConsoleMode runs the scan loop with alerts written to the log and any
// configured chat channels. It blocks until the context is cancelled.
func (a *App) ConsoleMode(ctx context.Context, deps *Dependencies) error {
	alertSink := sink.NewMulti(
		sink.NewConsole(deps.Logger),
		sink.NewNotify(deps.Notifier),
	)

	parts := buildPipeline(deps, alertSink, deps.Logger)
	return parts.scanner.Run(ctx)
}

// snapshot adapts the detector and scanner to the dashboard's snapshot
// interface so freshly connected clients receive current state.
type snapshot struct {
	detector *detector.Detector
	scanner  *pipeline.Scanner
}

func (s snapshot) Alerts() []domain.ClusterAlert { return s.detector.Alerts() }
func (s snapshot) Stats() domain.PipelineStats   { return s.scanner.Stats() }

// ServeMode runs the scan loop alongside the dashboard HTTP/WebSocket
// server. Detection output goes to the log, the signal bus (feeding the
// WebSocket hub), and any configured chat channels. All goroutines stop
// together on the first failure or on context cancellation.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	alertSink := sink.NewMulti(
		sink.NewConsole(deps.Logger),
		sink.NewBus(deps.Bus),
		sink.NewNotify(deps.Notifier),
	)

	parts := buildPipeline(deps, alertSink, deps.Logger)

	hub := ws.NewHub(deps.Bus, snapshot{detector: parts.detector, scanner: parts.scanner}, deps.Logger)

	srv := server.New(server.Config{
		Port:        deps.Cfg.Server.Port,
		CORSOrigins: deps.Cfg.Server.CORSOrigins,
	}, server.Handlers{
		Health: handler.NewHealthHandler(deps.Logger),
		Alerts: handler.NewAlertHandler(parts.detector, deps.Logger),
		Stats:  handler.NewStatsHandler(parts.scanner, deps.Logger),
	}, hub, deps.Logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return parts.scanner.Run(ctx) })
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	return g.Wait()
}

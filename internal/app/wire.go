package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polysentinel/sentinel/internal/cache/memory"
	redisc "github.com/polysentinel/sentinel/internal/cache/redis"
	"github.com/polysentinel/sentinel/internal/config"
	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/notify"
	"github.com/polysentinel/sentinel/internal/platform/chain"
	"github.com/polysentinel/sentinel/internal/platform/gamma"
)

// Dependencies holds the shared infrastructure both modes build their
// pipeline on: the chain client, the metadata client, the caches, the signal
// bus, and the notifier. Mode-specific objects (detector, scanner, server)
// are assembled per mode because the alert sink differs between them.
type Dependencies struct {
	Cfg    *config.Config
	Logger *slog.Logger

	Chain *chain.Client
	Gamma *gamma.Client

	FreshCache  domain.FreshnessCache
	MarketCache domain.MarketInfoCache
	Bus         domain.SignalBus

	Notifier *notify.Notifier
}

// Wire constructs all shared dependencies. It returns a cleanup function
// that releases held connections; callers must invoke it on shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	chainClient, err := chain.Dial(ctx, chain.Config{
		RPCURL:          cfg.Chain.RPCURL,
		ExchangeAddress: cfg.Chain.ExchangeAddress,
		RequestTimeout:  time.Duration(cfg.Chain.RequestTimeout) * time.Second,
	}, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("wire: chain client: %w", err)
	}
	closers = append(closers, chainClient.Close)

	gammaClient := gamma.NewClient(cfg.Gamma.Host)

	deps := &Dependencies{
		Cfg:    cfg,
		Logger: logger,
		Chain:  chainClient,
		Gamma:  gammaClient,
	}

	if cfg.Redis.Enabled {
		rc, err := redisc.New(ctx, redisc.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = rc.Close() })

		deps.FreshCache = redisc.NewFreshnessCache(rc, cfg.Freshness.TTL())
		deps.MarketCache = redisc.NewMarketCache(rc)
		deps.Bus = redisc.NewSignalBus(rc)
		logger.Info("caches backed by redis", slog.String("addr", cfg.Redis.Addr))
	} else {
		deps.FreshCache = memory.NewFreshnessCache()
		deps.MarketCache = memory.NewMarketCache()
		deps.Bus = memory.NewBus()
		logger.Info("caches backed by process memory")
	}

	deps.Notifier = buildNotifier(cfg, logger)

	return deps, cleanup, nil
}

// buildNotifier creates the chat notifier from whichever channels are
// configured. With no channels configured the notifier is a silent no-op.
func buildNotifier(cfg *config.Config, logger *slog.Logger) *notify.Notifier {
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	return notify.NewNotifier(senders, cfg.Notify.Events, logger)
}

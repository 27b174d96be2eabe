// Package config defines the top-level configuration for the sentinel and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SENTINEL_* environment
// variables.
type Config struct {
	Chain     ChainConfig     `toml:"chain"`
	Gamma     GammaConfig     `toml:"gamma"`
	Detector  DetectorConfig  `toml:"detector"`
	Freshness FreshnessConfig `toml:"freshness"`
	Redis     RedisConfig     `toml:"redis"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ChainConfig holds the Polygon RPC endpoint and scan-loop parameters.
type ChainConfig struct {
	RPCURL          string `toml:"rpc_url"`
	ExchangeAddress string `toml:"exchange_address"`
	ChunkSize       uint64 `toml:"chunk_size"`
	StartBlocksBack uint64 `toml:"start_blocks_back"`
	PollIntervalSec int    `toml:"poll_interval_sec"`
	ChunkPauseMs    int    `toml:"chunk_pause_ms"`
	MaxRetries      int    `toml:"max_retries"`
	RequestTimeout  int    `toml:"request_timeout_sec"`
}

// PollInterval returns the scan-cycle sleep as a duration.
func (c ChainConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// ChunkPause returns the pause between chunk queries as a duration.
func (c ChainConfig) ChunkPause() time.Duration {
	return time.Duration(c.ChunkPauseMs) * time.Millisecond
}

// GammaConfig holds the market metadata API endpoint.
type GammaConfig struct {
	Host string `toml:"host"`
}

// DetectorConfig holds cluster detection parameters.
type DetectorConfig struct {
	FreshWalletThreshold int     `toml:"fresh_wallet_threshold"`
	WindowHours          int     `toml:"window_hours"`
	MinBetAmount         float64 `toml:"min_bet_amount"`
	AlertOnUnknownMarket bool    `toml:"alert_on_unknown_market"`
	MaxAlerts            int     `toml:"max_alerts"`
}

// Window returns the rolling detection window as a duration.
func (c DetectorConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// FreshnessConfig holds wallet-freshness classification parameters.
type FreshnessConfig struct {
	TTLMinutes int    `toml:"ttl_minutes"`
	MaxTxCount uint64 `toml:"max_tx_count"`
}

// TTL returns how long a cached freshness verdict may be trusted.
func (c FreshnessConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// RedisConfig holds Redis connection parameters. Redis is optional: when
// Enabled is false the sentinel runs on in-memory caches and the dashboard
// hub uses an in-process bus.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds the dashboard HTTP/WebSocket server configuration.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel settings.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns the built-in configuration. Values mirror the documented
// operational defaults: threshold 10 wallets, 24h window, 30s poll, 10-block
// chunks, 1h freshness TTL.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:          "https://polygon-rpc.com",
			ExchangeAddress: "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E",
			ChunkSize:       10,
			StartBlocksBack: 300,
			PollIntervalSec: 30,
			ChunkPauseMs:    500,
			MaxRetries:      3,
			RequestTimeout:  15,
		},
		Gamma: GammaConfig{
			Host: "https://gamma-api.polymarket.com",
		},
		Detector: DetectorConfig{
			FreshWalletThreshold: 10,
			WindowHours:          24,
			MinBetAmount:         0,
			AlertOnUnknownMarket: true,
			MaxAlerts:            50,
		},
		Freshness: FreshnessConfig{
			TTLMinutes: 60,
			MaxTxCount: 2,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Enabled: false,
			Port:    8080,
		},
		Mode:     "console",
		LogLevel: "info",
	}
}

var validModes = map[string]bool{
	"console": true,
	"serve":   true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for inconsistencies and returns a single
// error aggregating every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: console, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Chain.RPCURL == "" {
		errs = append(errs, "chain: rpc_url must not be empty")
	}
	if c.Chain.ExchangeAddress == "" {
		errs = append(errs, "chain: exchange_address must not be empty")
	}
	if c.Chain.ChunkSize == 0 {
		errs = append(errs, "chain: chunk_size must be positive")
	}
	if c.Chain.PollIntervalSec <= 0 {
		errs = append(errs, "chain: poll_interval_sec must be positive")
	}

	if c.Gamma.Host == "" {
		errs = append(errs, "gamma: host must not be empty")
	}

	if c.Detector.FreshWalletThreshold <= 0 {
		errs = append(errs, "detector: fresh_wallet_threshold must be positive")
	}
	if c.Detector.WindowHours <= 0 {
		errs = append(errs, "detector: window_hours must be positive")
	}
	if c.Detector.MinBetAmount < 0 {
		errs = append(errs, "detector: min_bet_amount must not be negative")
	}
	if c.Detector.MaxAlerts <= 0 {
		errs = append(errs, "detector: max_alerts must be positive")
	}

	if c.Freshness.TTLMinutes <= 0 {
		errs = append(errs, "freshness: ttl_minutes must be positive")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty when redis is enabled")
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
		}
	}

	// Serve mode needs the dashboard server; console mode must not silently
	// drop alerts, so it needs no extra wiring.
	if strings.ToLower(c.Mode) == "serve" && !c.Server.Enabled {
		errs = append(errs, "server: enabled must be true in serve mode")
	}

	// Telegram credentials must be set together.
	tk := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tk != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

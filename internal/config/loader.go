package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SENTINEL_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
//
// A missing file is not an error: the defaults plus environment overrides
// are enough to run against public endpoints.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SENTINEL_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject endpoints and secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "SENTINEL_CHAIN_RPC_URL")
	setStr(&cfg.Chain.ExchangeAddress, "SENTINEL_CHAIN_EXCHANGE_ADDRESS")
	setUint64(&cfg.Chain.ChunkSize, "SENTINEL_CHAIN_CHUNK_SIZE")
	setUint64(&cfg.Chain.StartBlocksBack, "SENTINEL_CHAIN_START_BLOCKS_BACK")
	setInt(&cfg.Chain.PollIntervalSec, "SENTINEL_CHAIN_POLL_INTERVAL_SEC")
	setInt(&cfg.Chain.ChunkPauseMs, "SENTINEL_CHAIN_CHUNK_PAUSE_MS")
	setInt(&cfg.Chain.MaxRetries, "SENTINEL_CHAIN_MAX_RETRIES")
	setInt(&cfg.Chain.RequestTimeout, "SENTINEL_CHAIN_REQUEST_TIMEOUT_SEC")

	// ── Gamma ──
	setStr(&cfg.Gamma.Host, "SENTINEL_GAMMA_HOST")

	// ── Detector ──
	setInt(&cfg.Detector.FreshWalletThreshold, "SENTINEL_DETECTOR_FRESH_WALLET_THRESHOLD")
	setInt(&cfg.Detector.WindowHours, "SENTINEL_DETECTOR_WINDOW_HOURS")
	setFloat64(&cfg.Detector.MinBetAmount, "SENTINEL_DETECTOR_MIN_BET_AMOUNT")
	setBool(&cfg.Detector.AlertOnUnknownMarket, "SENTINEL_DETECTOR_ALERT_ON_UNKNOWN_MARKET")
	setInt(&cfg.Detector.MaxAlerts, "SENTINEL_DETECTOR_MAX_ALERTS")

	// ── Freshness ──
	setInt(&cfg.Freshness.TTLMinutes, "SENTINEL_FRESHNESS_TTL_MINUTES")
	setUint64(&cfg.Freshness.MaxTxCount, "SENTINEL_FRESHNESS_MAX_TX_COUNT")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SENTINEL_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SENTINEL_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SENTINEL_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SENTINEL_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SENTINEL_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SENTINEL_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SENTINEL_REDIS_TLS_ENABLED")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SENTINEL_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SENTINEL_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SENTINEL_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SENTINEL_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SENTINEL_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SENTINEL_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SENTINEL_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SENTINEL_MODE")
	setStr(&cfg.LogLevel, "SENTINEL_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

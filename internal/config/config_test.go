package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("built-in defaults must validate: %v", err)
	}
	if cfg.Detector.Window() != 24*time.Hour {
		t.Errorf("expected 24h default window, got %v", cfg.Detector.Window())
	}
	if cfg.Freshness.TTL() != time.Hour {
		t.Errorf("expected 1h default freshness TTL, got %v", cfg.Freshness.TTL())
	}
	if cfg.Chain.PollInterval() != 30*time.Second {
		t.Errorf("expected 30s default poll interval, got %v", cfg.Chain.PollInterval())
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("a missing config file must not be an error: %v", err)
	}
	if cfg.Chain.RPCURL != Defaults().Chain.RPCURL {
		t.Errorf("expected default RPC URL, got %q", cfg.Chain.RPCURL)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "serve"
log_level = "debug"

[chain]
rpc_url = "https://rpc.example.com"
chunk_size = 25

[detector]
fresh_wallet_threshold = 5

[server]
enabled = true
port = 9090
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chain.RPCURL != "https://rpc.example.com" {
		t.Errorf("file value should win, got %q", cfg.Chain.RPCURL)
	}
	if cfg.Chain.ChunkSize != 25 {
		t.Errorf("expected chunk_size 25, got %d", cfg.Chain.ChunkSize)
	}
	if cfg.Detector.FreshWalletThreshold != 5 {
		t.Errorf("expected threshold 5, got %d", cfg.Detector.FreshWalletThreshold)
	}
	// Untouched values keep their defaults.
	if cfg.Gamma.Host != Defaults().Gamma.Host {
		t.Errorf("unset fields must keep defaults, got %q", cfg.Gamma.Host)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[chain]\nrpc_url = \"https://file.example.com\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SENTINEL_CHAIN_RPC_URL", "https://env.example.com")
	t.Setenv("SENTINEL_DETECTOR_FRESH_WALLET_THRESHOLD", "7")
	t.Setenv("SENTINEL_DETECTOR_ALERT_ON_UNKNOWN_MARKET", "false")
	t.Setenv("SENTINEL_SERVER_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chain.RPCURL != "https://env.example.com" {
		t.Errorf("env must win over file, got %q", cfg.Chain.RPCURL)
	}
	if cfg.Detector.FreshWalletThreshold != 7 {
		t.Errorf("expected threshold 7, got %d", cfg.Detector.FreshWalletThreshold)
	}
	if cfg.Detector.AlertOnUnknownMarket {
		t.Error("expected alert_on_unknown_market off")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected CORS origins %v", cfg.Server.CORSOrigins)
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "daemon"
	cfg.Chain.RPCURL = ""
	cfg.Detector.FreshWalletThreshold = 0
	cfg.Notify.TelegramToken = "token-without-chat-id"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{"mode", "rpc_url", "fresh_wallet_threshold", "telegram"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error should mention %q: %v", want, err)
		}
	}
}

func TestValidateServeModeRequiresServer(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "serve"
	cfg.Server.Enabled = false

	if err := cfg.Validate(); err == nil {
		t.Error("serve mode without the server enabled must not validate")
	}

	cfg.Server.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("serve mode with the server enabled should validate: %v", err)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Notify.TelegramToken = "123:abc"

	red := RedactedConfig(&cfg)
	if red.Redis.Password != "***" || red.Notify.TelegramToken != "***" {
		t.Error("secrets must be redacted")
	}
	if red.Notify.DiscordWebhookURL != "" {
		t.Error("empty secrets stay empty")
	}
	// The original is untouched.
	if cfg.Redis.Password != "hunter2" {
		t.Error("redaction must not mutate the source config")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAMLWithDurations(t *testing.T) {
	path := writeConfig(t, `
robinhood:
  api_key: key-1
  base64_private_key: secret
trading:
  symbols: [BTC-USD, ETH-USD, DOGE-USD]
  retention_horizon: 2h
  analysis_horizon: 45m
  decide_every: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Trading.Symbols) != 3 {
		t.Fatalf("symbols = %v", cfg.Trading.Symbols)
	}
	if cfg.Trading.RetentionHorizon.Std() != 2*time.Hour {
		t.Fatalf("retention = %v, want 2h", cfg.Trading.RetentionHorizon.Std())
	}
	if cfg.Trading.AnalysisHorizon.Std() != 45*time.Minute {
		t.Fatalf("analysis = %v, want 45m", cfg.Trading.AnalysisHorizon.Std())
	}
	// Unset values fall back to defaults.
	if cfg.Trading.QuoteEvery.Std() != time.Second {
		t.Fatalf("quote_every default = %v, want 1s", cfg.Trading.QuoteEvery.Std())
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Fatalf("listen_addr default = %q", cfg.Server.ListenAddr)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
trading:
  retention_horizon: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
robinhood:
  api_key: from-file
`)
	t.Setenv("ROBINHOOD_API_KEY", "from-env")
	t.Setenv("TRADING_SYMBOLS", "SOL-USD, AVAX-USD")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Robinhood.APIKey != "from-env" {
		t.Fatalf("api key = %q, want env override", cfg.Robinhood.APIKey)
	}
	if len(cfg.Trading.Symbols) != 2 || cfg.Trading.Symbols[1] != "AVAX-USD" {
		t.Fatalf("symbols = %v", cfg.Trading.Symbols)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Trading.Symbols) == 0 {
		t.Fatal("expected default symbols")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error with no credentials")
	}

	cfg.Robinhood.APIKey = "k"
	cfg.Robinhood.Base64PrivateKey = "s"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.Trading.Symbols = []string{"BTCUSD"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for symbol without a dash")
	}

	cfg.Trading.Symbols = []string{"BTC-USD"}
	cfg.Trading.AnalysisHorizon = cfg.Trading.RetentionHorizon * 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when analysis horizon exceeds retention")
	}
}

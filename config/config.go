// Package config loads daemon configuration from a YAML file with
// environment variable overrides and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30m" or "1h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Robinhood struct {
		APIKey           string `yaml:"api_key"`
		Base64PrivateKey string `yaml:"base64_private_key"`
		BaseURL          string `yaml:"base_url"`
	} `yaml:"robinhood"`
	Trading struct {
		Symbols          []string `yaml:"symbols"`
		RetentionHorizon Duration `yaml:"retention_horizon"`
		AnalysisHorizon  Duration `yaml:"analysis_horizon"`
		QuoteEvery       Duration `yaml:"quote_every"`
		DecideEvery      Duration `yaml:"decide_every"`
		FlushEvery       Duration `yaml:"flush_every"`
	} `yaml:"trading"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Server struct {
		ListenAddr  string `yaml:"listen_addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; env vars alone can configure the
// daemon.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ROBINHOOD_API_KEY"); v != "" {
		cfg.Robinhood.APIKey = v
	}
	if v := os.Getenv("ROBINHOOD_BASE64_PRIVATE_KEY"); v != "" {
		cfg.Robinhood.Base64PrivateKey = v
	}
	if v := os.Getenv("ROBINHOOD_BASE_URL"); v != "" {
		cfg.Robinhood.BaseURL = v
	}
	if v := os.Getenv("TRADING_SYMBOLS"); v != "" {
		cfg.Trading.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if len(cfg.Trading.Symbols) == 0 {
		cfg.Trading.Symbols = []string{"BTC-USD", "ETH-USD"}
	}
	if cfg.Trading.RetentionHorizon <= 0 {
		cfg.Trading.RetentionHorizon = Duration(time.Hour)
	}
	if cfg.Trading.AnalysisHorizon <= 0 {
		cfg.Trading.AnalysisHorizon = Duration(30 * time.Minute)
	}
	if cfg.Trading.QuoteEvery <= 0 {
		cfg.Trading.QuoteEvery = Duration(time.Second)
	}
	if cfg.Trading.DecideEvery <= 0 {
		cfg.Trading.DecideEvery = Duration(15 * time.Second)
	}
	if cfg.Trading.FlushEvery <= 0 {
		cfg.Trading.FlushEvery = Duration(5 * time.Minute)
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/price_history.db"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = ":9090"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Robinhood.APIKey == "" {
		return fmt.Errorf("robinhood.api_key is required")
	}
	if c.Robinhood.Base64PrivateKey == "" {
		return fmt.Errorf("robinhood.base64_private_key is required")
	}
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("trading.symbols must not be empty")
	}
	for _, s := range c.Trading.Symbols {
		if !strings.Contains(s, "-") {
			return fmt.Errorf("trading symbol %q is not a pair like BTC-USD", s)
		}
	}
	if c.Trading.AnalysisHorizon > c.Trading.RetentionHorizon {
		return fmt.Errorf("trading.analysis_horizon must not exceed trading.retention_horizon")
	}
	return nil
}

func splitSymbols(v string) []string {
	var symbols []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

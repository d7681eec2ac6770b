// Package config loads and saves fincompass settings from TOML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincompass/internal/pipeline"
)

// EnvPrefix prefixes every environment override, e.g. FINCOMPASS_DB_PATH.
const EnvPrefix = "FINCOMPASS"

// Config holds all fincompass configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Finance    FinanceConfig    `toml:"finance"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
}

// FinanceConfig holds the business parameters fed into the ledger and forecast.
// Money amounts are decimals and are written to the file as strings.
type FinanceConfig struct {
	PayoutDelayDays     int             `toml:"payout_delay_days"`
	InitialCash         decimal.Decimal `toml:"initial_cash"`
	AverageProfitMargin float64         `toml:"average_profit_margin"`
	IncrementBuffer     decimal.Decimal `toml:"increment_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background ledger service.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
	EventsLimit int    `toml:"events_limit"`
}

// envOverrides mirrors the settings that may come from the environment.
// Nil fields were not set.
type envOverrides struct {
	DBPath          *string  `envconfig:"DB_PATH"`
	PayoutDelayDays *int     `envconfig:"PAYOUT_DELAY_DAYS"`
	InitialCash     *string  `envconfig:"INITIAL_CASH"`
	ProfitMargin    *float64 `envconfig:"AVERAGE_PROFIT_MARGIN"`
	IncrementBuffer *string  `envconfig:"INCREMENT_BUFFER"`
	Theme           *string  `envconfig:"THEME"`
	DaemonAddr      *string  `envconfig:"DAEMON_ADDR"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Finance: FinanceConfig{
			PayoutDelayDays:     15,
			InitialCash:         decimal.NewFromInt(3000),
			AverageProfitMargin: 0.25,
			IncrementBuffer:     decimal.NewFromInt(900),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8797",
			IntervalSec: 30,
			EventsLimit: 200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincompass")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fincompass")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincompass")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fincompass")
}

// DBPath returns the configured database path or the default under DataDir.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "finance.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides (and a .env file in the working directory) apply last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if env.DBPath != nil {
		cfg.General.DBPath = *env.DBPath
	}
	if env.PayoutDelayDays != nil {
		cfg.Finance.PayoutDelayDays = *env.PayoutDelayDays
	}
	if env.InitialCash != nil {
		v, err := parseMoney(EnvPrefix+"_INITIAL_CASH", *env.InitialCash)
		if err != nil {
			return err
		}
		cfg.Finance.InitialCash = v
	}
	if env.ProfitMargin != nil {
		cfg.Finance.AverageProfitMargin = *env.ProfitMargin
	}
	if env.IncrementBuffer != nil {
		v, err := parseMoney(EnvPrefix+"_INCREMENT_BUFFER", *env.IncrementBuffer)
		if err != nil {
			return err
		}
		cfg.Finance.IncrementBuffer = v
	}
	if env.Theme != nil {
		cfg.Appearance.Theme = *env.Theme
	}
	if env.DaemonAddr != nil {
		cfg.Daemon.Addr = *env.DaemonAddr
	}
	return nil
}

func parseMoney(name, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading environment: %s: invalid amount %q", name, raw)
	}
	return v, nil
}

// Validate rejects settings the ledger and forecast cannot work with.
func (c Config) Validate() error {
	f := c.Finance
	if f.PayoutDelayDays < 0 {
		return fmt.Errorf("finance.payout_delay_days must be >= 0, got %d", f.PayoutDelayDays)
	}
	if f.AverageProfitMargin < 0 {
		return fmt.Errorf("finance.average_profit_margin must be >= 0, got %g", f.AverageProfitMargin)
	}
	if !f.IncrementBuffer.IsPositive() {
		return fmt.Errorf("finance.increment_buffer must be > 0, got %s", f.IncrementBuffer)
	}
	if c.Daemon.IntervalSec < 0 {
		return fmt.Errorf("daemon.interval_sec must be >= 0, got %d", c.Daemon.IntervalSec)
	}
	return nil
}

// Margin returns the average profit margin as a decimal.
func (c Config) Margin() decimal.Decimal {
	return decimal.NewFromFloat(c.Finance.AverageProfitMargin)
}

// LedgerParams converts the finance settings for the ledger builder.
func (c Config) LedgerParams() pipeline.LedgerParams {
	return pipeline.LedgerParams{
		PayoutDelayDays: c.Finance.PayoutDelayDays,
		InitialCash:     c.Finance.InitialCash,
	}
}

// GrowthParams converts the finance settings for the growth predictor.
func (c Config) GrowthParams() pipeline.GrowthParams {
	return pipeline.GrowthParams{
		PayoutDelayDays: c.Finance.PayoutDelayDays,
		IncrementBuffer: c.Finance.IncrementBuffer,
	}
}

// Params bundles LedgerParams and GrowthParams.
func (c Config) Params() pipeline.Params {
	return pipeline.Params{Ledger: c.LedgerParams(), Growth: c.GrowthParams()}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
	assert.Equal(t, filepath.Join(dir, "data", "fincompass", "finance.db"), cfg.DBPath())
	require.NoError(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.General.DBPath = "/tmp/x.db"
	cfg.Finance.PayoutDelayDays = 10
	cfg.Finance.InitialCash = decimal.RequireFromString("1250.5")
	cfg.Appearance.Theme = "tokyo-night"
	require.NoError(t, Save(cfg))
	require.True(t, Exists())

	info, err := os.Stat(ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(ConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[finance]\npayout_delay_days = 7\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Finance.PayoutDelayDays)
	assert.True(t, cfg.Finance.InitialCash.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "flexoki-dark", cfg.Appearance.Theme)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(ConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[finance\n"), 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("FINCOMPASS_DB_PATH", "/data/override.db")
	t.Setenv("FINCOMPASS_PAYOUT_DELAY_DAYS", "21")
	t.Setenv("FINCOMPASS_INITIAL_CASH", "4500.25")
	t.Setenv("FINCOMPASS_THEME", "terminal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/override.db", cfg.DBPath())
	assert.Equal(t, 21, cfg.Finance.PayoutDelayDays)
	assert.Equal(t, "4500.25", cfg.Finance.InitialCash.String())
	assert.Equal(t, "terminal", cfg.Appearance.Theme)
	// unset overrides leave values alone
	assert.InDelta(t, 0.25, cfg.Finance.AverageProfitMargin, 1e-9)
}

func TestLoad_BadEnvValue(t *testing.T) {
	isolate(t)
	t.Setenv("FINCOMPASS_PAYOUT_DELAY_DAYS", "fifteen")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading environment")
}

func TestLoad_MoneyIsExact(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(ConfigDir(), 0o755))
	// Bare TOML floats are still accepted.
	body := "[finance]\ninitial_cash = 3000.10\nincrement_buffer = \"900.35\"\n"
	require.NoError(t, os.WriteFile(ConfigPath(), []byte(body), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000.1", cfg.Finance.InitialCash.String())
	assert.Equal(t, "900.35", cfg.Finance.IncrementBuffer.String())

	require.NoError(t, Save(cfg))
	got, err := Load()
	require.NoError(t, err)
	assert.True(t, got.Finance.InitialCash.Equal(decimal.RequireFromString("3000.10")))
	assert.True(t, got.Params().Growth.IncrementBuffer.Equal(decimal.RequireFromString("900.35")))
}

func TestLoad_BadEnvAmount(t *testing.T) {
	isolate(t)
	t.Setenv("FINCOMPASS_INCREMENT_BUFFER", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FINCOMPASS_INCREMENT_BUFFER")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"negative delay", func(c *Config) { c.Finance.PayoutDelayDays = -1 }, "payout_delay_days"},
		{"negative margin", func(c *Config) { c.Finance.AverageProfitMargin = -0.1 }, "average_profit_margin"},
		{"zero buffer", func(c *Config) { c.Finance.IncrementBuffer = decimal.Zero }, "increment_buffer"},
		{"negative interval", func(c *Config) { c.Daemon.IntervalSec = -5 }, "interval_sec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}

	cfg := DefaultConfig()
	cfg.Finance.PayoutDelayDays = 0
	assert.NoError(t, cfg.Validate())
}

func TestParamsConversion(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Params()
	assert.Equal(t, 15, p.Ledger.PayoutDelayDays)
	assert.True(t, p.Ledger.InitialCash.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 15, p.Growth.PayoutDelayDays)
	assert.True(t, p.Growth.IncrementBuffer.Equal(decimal.NewFromInt(900)))
	assert.True(t, cfg.Margin().Equal(decimal.RequireFromString("0.25")))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fcalc.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.005, cfg.Calculator.MaintenanceMarginRate)
	assert.Equal(t, 125.0, cfg.Calculator.MaxLeverage)
	assert.Equal(t, 25.0, cfg.Calculator.RiskThresholds.Medium)
	assert.Equal(t, 50.0, cfg.Calculator.RiskThresholds.High)
	assert.Equal(t, 75.0, cfg.Calculator.RiskThresholds.Extreme)
	assert.Equal(t, 0.5, cfg.Calculator.KellyFraction)
	assert.Equal(t, 0.25, cfg.Calculator.KellyMaxFraction)
	assert.Equal(t, HistoryMemory, cfg.History.Backend)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Calculator, cfg.Calculator)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, `
[app]
log_level = "debug"

[calculator]
maintenance_margin_rate = 0.01
tiered_maintenance = true
max_leverage = 50

[calculator.risk_thresholds]
medium = 20
high = 40
extreme = 60

[history]
backend = "none"
limit = 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 0.01, cfg.Calculator.MaintenanceMarginRate)
	assert.True(t, cfg.Calculator.TieredMaintenance)
	assert.Equal(t, 50.0, cfg.Calculator.MaxLeverage)
	assert.Equal(t, 40.0, cfg.Calculator.RiskThresholds.High)
	assert.Equal(t, HistoryNone, cfg.History.Backend)
	assert.Equal(t, 10, cfg.History.Limit)
	// untouched keys keep defaults
	assert.Equal(t, 0.5, cfg.Calculator.KellyFraction)
}

func TestLoad_BadTOML(t *testing.T) {
	path := writeFile(t, "[calculator\nmax_leverage = ")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "[calculator]\nmax_leverage = 50\n")

	t.Setenv("FCALC_MAX_LEVERAGE", "20")
	t.Setenv("FCALC_TIERED_MAINTENANCE", "true")
	t.Setenv("FCALC_HISTORY_BACKEND", "redis")
	t.Setenv("FCALC_REDIS_ADDR", "10.0.0.1:6379")
	t.Setenv("FCALC_REDIS_DB", "3")
	t.Setenv("FCALC_CACHE_SIZE", "010")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20.0, cfg.Calculator.MaxLeverage)
	assert.True(t, cfg.Calculator.TieredMaintenance)
	assert.Equal(t, HistoryRedis, cfg.History.Backend)
	assert.Equal(t, "10.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 10, cfg.Calculator.CacheSize)
}

func TestLoad_MalformedEnv(t *testing.T) {
	t.Setenv("FCALC_CACHE_SIZE", "not-a-number")
	t.Setenv("FCALC_TIERED_MAINTENANCE", "sometimes")
	t.Setenv("FCALC_MAX_LEVERAGE", "lots")
	t.Setenv("FCALC_REDIS_DB", "1.5")

	cfg, err := Load("")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Len(t, multierr.Errors(err), 4)
	assert.Contains(t, err.Error(), "FCALC_CACHE_SIZE")
	assert.Contains(t, err.Error(), "FCALC_TIERED_MAINTENANCE")
	assert.Contains(t, err.Error(), "FCALC_MAX_LEVERAGE")
	assert.Contains(t, err.Error(), "FCALC_REDIS_DB")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.App.LogLevel = "verbose"
	cfg.Calculator.MaxLeverage = 500
	cfg.Calculator.RiskThresholds.High = 10
	cfg.History.Backend = "mongo"
	cfg.Calculator.KellyFraction = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "max_leverage")
	assert.Contains(t, err.Error(), "risk_thresholds")
	assert.Contains(t, err.Error(), "backend")
	assert.Contains(t, err.Error(), "kelly_fraction")
}

func TestValidate_RedisNeedsAddr(t *testing.T) {
	cfg := Defaults()
	cfg.History.Backend = HistoryRedis
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "secret"

	out := cfg.Redacted()
	assert.Equal(t, "***", out.Redis.Password)
	assert.Equal(t, "secret", cfg.Redis.Password)
}

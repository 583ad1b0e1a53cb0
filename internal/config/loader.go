package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/multierr"

	"frizo/futures_calculator/pkg/utils"
)

const envPrefix = "FCALC_"

// Load defaults, then the TOML file at path when it exists, then .env, then
// FCALC_* environment variables. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if !utils.FileExists(path) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	// missing .env is fine
	_ = godotenv.Load()

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides every malformed variable is reported, not just the first.
func applyEnvOverrides(cfg *Config) error {
	var env envReader

	env.str(&cfg.App.Environment, "ENVIRONMENT")
	env.str(&cfg.App.LogLevel, "LOG_LEVEL")
	env.str(&cfg.App.LogFile, "LOG_FILE")

	env.float(&cfg.Calculator.MaintenanceMarginRate, "MAINTENANCE_MARGIN_RATE")
	env.boolean(&cfg.Calculator.TieredMaintenance, "TIERED_MAINTENANCE")
	env.float(&cfg.Calculator.MaxLeverage, "MAX_LEVERAGE")
	env.float(&cfg.Calculator.RiskThresholds.Medium, "RISK_MEDIUM")
	env.float(&cfg.Calculator.RiskThresholds.High, "RISK_HIGH")
	env.float(&cfg.Calculator.RiskThresholds.Extreme, "RISK_EXTREME")
	env.float(&cfg.Calculator.KellyFraction, "KELLY_FRACTION")
	env.float(&cfg.Calculator.KellyMaxFraction, "KELLY_MAX_FRACTION")
	env.integer(&cfg.Calculator.CacheSize, "CACHE_SIZE")

	env.str(&cfg.History.Backend, "HISTORY_BACKEND")
	env.integer(&cfg.History.Limit, "HISTORY_LIMIT")

	env.str(&cfg.Redis.Addr, "REDIS_ADDR")
	env.str(&cfg.Redis.Password, "REDIS_PASSWORD")
	env.integer(&cfg.Redis.DB, "REDIS_DB")
	env.str(&cfg.Redis.KeyPrefix, "REDIS_KEY_PREFIX")

	return env.err
}

// getEnv gets an FCALC_ prefixed environment variable, "" when unset.
func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

// envReader each setter only touches dst when the variable is set and
// parses, parse failures pile up in err.
type envReader struct {
	err error
}

func (r *envReader) fail(key, v, want string) {
	r.err = multierr.Append(r.err, fmt.Errorf("%s%s: %q is not %s", envPrefix, key, v, want))
}

func (r *envReader) str(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func (r *envReader) integer(dst *int, key string) {
	v := getEnv(key)
	if v == "" {
		return
	}
	// base 10, "010" is ten
	f, err := cast.ToFloat64E(v)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		r.fail(key, v, "a whole number")
		return
	}
	*dst = int(f)
}

func (r *envReader) float(dst *float64, key string) {
	v := getEnv(key)
	if v == "" {
		return
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(key, v, "a number")
		return
	}
	*dst = f
}

func (r *envReader) boolean(dst *bool, key string) {
	v := getEnv(key)
	if v == "" {
		return
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		r.fail(key, v, "a boolean")
		return
	}
	*dst = b
}

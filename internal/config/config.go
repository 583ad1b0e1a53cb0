package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"frizo/futures_calculator/internal/risk"
	"frizo/futures_calculator/pkg/utils"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig        `toml:"app"`
	Calculator CalculatorConfig `toml:"calculator"`
	History    HistoryConfig    `toml:"history"`
	Redis      RedisConfig      `toml:"redis"`
}

type AppConfig struct {
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
	// LogFile empty means stderr only
	LogFile string `toml:"log_file"`
}

type CalculatorConfig struct {
	MaintenanceMarginRate float64 `toml:"maintenance_margin_rate"`
	// TieredMaintenance uses the notional brackets instead of the flat rate
	TieredMaintenance bool            `toml:"tiered_maintenance"`
	MaxLeverage       float64         `toml:"max_leverage"`
	RiskThresholds    risk.Thresholds `toml:"risk_thresholds"`
	KellyFraction     float64         `toml:"kelly_fraction"`
	KellyMaxFraction  float64         `toml:"kelly_max_fraction"`
	// CacheSize memo entries per calculator, 0 disables
	CacheSize int `toml:"cache_size"`
}

type HistoryConfig struct {
	Backend string `toml:"backend"`
	Limit   int    `toml:"limit"`
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

const (
	HistoryMemory = "memory"
	HistoryRedis  = "redis"
	HistoryNone   = "none"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "warning", "error"}
	validBackends  = []string{HistoryMemory, HistoryRedis, HistoryNone}
)

// Defaults built-in values, overridden by file and environment.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Calculator: CalculatorConfig{
			MaintenanceMarginRate: 0.005,
			MaxLeverage:           125,
			RiskThresholds:        risk.DefaultThresholds,
			KellyFraction:         0.5,
			KellyMaxFraction:      0.25,
			CacheSize:             256,
		},
		History: HistoryConfig{
			Backend: HistoryMemory,
			Limit:   100,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "fcalc:",
		},
	}
}

// Validate returns every problem found, combined.
func (c *Config) Validate() error {
	var err error
	add := func(format string, args ...interface{}) {
		err = multierr.Append(err, fmt.Errorf(format, args...))
	}

	if !utils.Contains(validLogLevels, strings.ToLower(c.App.LogLevel)) {
		add("app: unknown log_level %q (valid: debug, info, warn, error)", c.App.LogLevel)
	}

	calc := c.Calculator
	if calc.MaintenanceMarginRate < 0 || calc.MaintenanceMarginRate >= 1 {
		add("calculator: maintenance_margin_rate must be in [0, 1), got %v", calc.MaintenanceMarginRate)
	}
	if calc.MaxLeverage < 1 || calc.MaxLeverage > risk.MaxLeverage {
		add("calculator: max_leverage must be in [1, %v], got %v", risk.MaxLeverage, calc.MaxLeverage)
	}
	t := calc.RiskThresholds
	if !(t.Medium > 0 && t.Medium < t.High && t.High < t.Extreme && t.Extreme <= risk.MaxScore) {
		add("calculator: risk_thresholds must satisfy 0 < medium < high < extreme <= %v", risk.MaxScore)
	}
	if calc.KellyFraction <= 0 || calc.KellyFraction > 1 {
		add("calculator: kelly_fraction must be in (0, 1], got %v", calc.KellyFraction)
	}
	if calc.KellyMaxFraction <= 0 || calc.KellyMaxFraction > 1 {
		add("calculator: kelly_max_fraction must be in (0, 1], got %v", calc.KellyMaxFraction)
	}
	if calc.CacheSize < 0 {
		add("calculator: cache_size must not be negative")
	}

	if !utils.Contains(validBackends, strings.ToLower(c.History.Backend)) {
		add("history: unknown backend %q (valid: memory, redis, none)", c.History.Backend)
	}
	if c.History.Limit < 0 {
		add("history: limit must not be negative")
	}
	if strings.EqualFold(c.History.Backend, HistoryRedis) && c.Redis.Addr == "" {
		add("redis: addr is required when history backend is redis")
	}

	return err
}

// Redacted copy safe to print.
func (c Config) Redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = "***"
	}
	return c
}

// Package common provides shared utilities for Folioperf
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folioperf
type Config struct {
	Environment string        `toml:"environment"`
	Engine      EngineConfig  `toml:"engine"`
	Logging     LoggingConfig `toml:"logging"`
}

// EngineConfig holds the tunables of the TWR engine.
type EngineConfig struct {
	// BaseCurrency is the currency all portfolio values are expressed in.
	BaseCurrency string `toml:"base_currency"`
	// PriceToleranceSeconds widens forward-fill price lookups so that a
	// market close stamped later the same calendar day is still visible
	// from a midnight-aligned query time.
	PriceToleranceSeconds int64 `toml:"price_tolerance_seconds"`
	// MinChainBase is the smallest base-currency denominator a sub-period
	// return may be computed against.
	MinChainBase float64 `toml:"min_chain_base"`
	// FreezeWindows suppress a portfolio's computed value over date ranges
	// with known bad source data.
	FreezeWindows []FreezeWindow `toml:"freeze_windows"`
}

// FreezeWindow marks a date range during which a portfolio's value is forced
// to zero. A window applies when PortfolioID matches exactly, or when
// NameMatch is a normalized (lowercased, accent-stripped) substring of the
// portfolio name.
type FreezeWindow struct {
	PortfolioID string `toml:"portfolio_id"`
	NameMatch   string `toml:"name_match"`
	From        string `toml:"from"` // "YYYY-MM-DD", inclusive
	To          string `toml:"to"`   // "YYYY-MM-DD", inclusive
}

// Interval parses the window bounds as UTC-midnight days.
func (w FreezeWindow) Interval() (from, to time.Time, err error) {
	from, err = time.Parse("2006-01-02", w.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid freeze window 'from' date %q: %w", w.From, err)
	}
	to, err = time.Parse("2006-01-02", w.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid freeze window 'to' date %q: %w", w.To, err)
	}
	return from, to, nil
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Engine: EngineConfig{
			BaseCurrency:          "EUR",
			PriceToleranceSeconds: 86400,
			MinChainBase:          100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIOPERF_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("FOLIOPERF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if bc := os.Getenv("FOLIOPERF_BASE_CURRENCY"); bc != "" {
		config.Engine.BaseCurrency = strings.ToUpper(bc)
	}

	if tol := os.Getenv("FOLIOPERF_PRICE_TOLERANCE"); tol != "" {
		if v, err := strconv.ParseInt(tol, 10, 64); err == nil && v >= 0 {
			config.Engine.PriceToleranceSeconds = v
		}
	}
}

// validateConfig normalizes and checks config values.
func validateConfig(config *Config) error {
	config.Engine.BaseCurrency = strings.ToUpper(strings.TrimSpace(config.Engine.BaseCurrency))
	if config.Engine.BaseCurrency == "" {
		config.Engine.BaseCurrency = "EUR"
	}
	if config.Engine.PriceToleranceSeconds < 0 {
		return fmt.Errorf("price_tolerance_seconds must be >= 0, got %d", config.Engine.PriceToleranceSeconds)
	}
	if config.Engine.MinChainBase < 0 {
		return fmt.Errorf("min_chain_base must be >= 0, got %g", config.Engine.MinChainBase)
	}
	for _, w := range config.Engine.FreezeWindows {
		from, to, err := w.Interval()
		if err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("freeze window 'to' (%s) precedes 'from' (%s)", w.To, w.From)
		}
		if w.PortfolioID == "" && w.NameMatch == "" {
			return fmt.Errorf("freeze window needs a portfolio_id or name_match")
		}
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

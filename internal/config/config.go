// Package config provides configuration management for the options calculator.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing"`
	Solver  SolverConfig  `mapstructure:"solver"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Journal JournalConfig `mapstructure:"journal"`
	UI      UIConfig      `mapstructure:"ui"`
}

// PricingConfig holds model inputs applied when the user does not supply them.
type PricingConfig struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	DefaultVol   float64 `mapstructure:"default_volatility"`
}

// SolverConfig tunes the implied volatility solver.
type SolverConfig struct {
	SeedVol       float64 `mapstructure:"seed_volatility"`
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations"`
	MinVol        float64 `mapstructure:"min_volatility"`
	MaxVol        float64 `mapstructure:"max_volatility"`
}

// RiskConfig holds inputs for the historical risk metrics.
type RiskConfig struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	MinReturns   int     `mapstructure:"min_returns"`
}

// JournalConfig controls the local calculation journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // empty means <config dir>/journal.db
}

// UIConfig holds output formatting configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/optcalc"
	}
	return filepath.Join(home, ".config", "optcalc")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Pricing: PricingConfig{
			RiskFreeRate: 0.05,
			DefaultVol:   0.30,
		},
		Solver: SolverConfig{
			SeedVol:       0.3,
			Tolerance:     1e-6,
			MaxIterations: 100,
			MinVol:        0.0001,
			MaxVol:        5.0,
		},
		Risk: RiskConfig{
			RiskFreeRate: 0.04,
			MinReturns:   20,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		UI: UIConfig{
			ColorEnabled: true,
			DateFormat:   "02-Jan-2006",
		},
	}
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A missing config file is not
// an error: a template is written for the user and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := createTemplateConfig(configDir); werr != nil {
				return nil, werr
			}
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("reading config.toml: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("pricing.risk_free_rate", cfg.Pricing.RiskFreeRate)
	v.SetDefault("pricing.default_volatility", cfg.Pricing.DefaultVol)
	v.SetDefault("solver.seed_volatility", cfg.Solver.SeedVol)
	v.SetDefault("solver.tolerance", cfg.Solver.Tolerance)
	v.SetDefault("solver.max_iterations", cfg.Solver.MaxIterations)
	v.SetDefault("solver.min_volatility", cfg.Solver.MinVol)
	v.SetDefault("solver.max_volatility", cfg.Solver.MaxVol)
	v.SetDefault("risk.risk_free_rate", cfg.Risk.RiskFreeRate)
	v.SetDefault("risk.min_returns", cfg.Risk.MinReturns)
	v.SetDefault("journal.enabled", cfg.Journal.Enabled)
	v.SetDefault("journal.path", cfg.Journal.Path)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
	v.SetDefault("ui.date_format", cfg.UI.DateFormat)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPTCALC_RISK_FREE_RATE"); v != "" {
		var rate float64
		if _, err := fmt.Sscanf(v, "%f", &rate); err == nil {
			cfg.Pricing.RiskFreeRate = rate
		}
	}
	if v := os.Getenv("OPTCALC_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("NO_COLOR"); v != "" {
		cfg.UI.ColorEnabled = false
	}
}

// Validate checks the configuration for values the engines cannot work with.
func (c *Config) Validate() error {
	if c.Pricing.RiskFreeRate < -0.1 || c.Pricing.RiskFreeRate > 1 {
		return fmt.Errorf("pricing.risk_free_rate must be between -0.1 and 1, got %v", c.Pricing.RiskFreeRate)
	}
	if c.Pricing.DefaultVol <= 0 || c.Pricing.DefaultVol > 5 {
		return fmt.Errorf("pricing.default_volatility must be in (0, 5], got %v", c.Pricing.DefaultVol)
	}
	if c.Solver.SeedVol <= 0 {
		return fmt.Errorf("solver.seed_volatility must be positive, got %v", c.Solver.SeedVol)
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("solver.tolerance must be positive, got %v", c.Solver.Tolerance)
	}
	if c.Solver.MaxIterations < 1 {
		return fmt.Errorf("solver.max_iterations must be at least 1, got %d", c.Solver.MaxIterations)
	}
	if c.Solver.MinVol <= 0 || c.Solver.MaxVol <= c.Solver.MinVol {
		return fmt.Errorf("solver volatility bounds invalid: [%v, %v]", c.Solver.MinVol, c.Solver.MaxVol)
	}
	if c.Risk.MinReturns < 2 {
		return fmt.Errorf("risk.min_returns must be at least 2, got %d", c.Risk.MinReturns)
	}
	return nil
}

// JournalPath resolves the journal database location.
func (c *Config) JournalPath(configDir string) string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "journal.db")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# optcalc configuration

[pricing]
# Annual risk-free rate used when --rate is not given
risk_free_rate = 0.05
# Volatility used when neither --vol nor --market-price is given
default_volatility = 0.30

[solver]
# Implied volatility solver tuning
seed_volatility = 0.3
tolerance = 1e-6
max_iterations = 100
min_volatility = 0.0001
max_volatility = 5.0

[risk]
# Annual risk-free rate for the Sharpe ratio
risk_free_rate = 0.04
# Minimum daily returns required for risk metrics
min_returns = 20

[journal]
# Record calculations in a local SQLite journal
enabled = true
# Database path; empty means <config dir>/journal.db
path = ""

[ui]
# Enable colored output
color_enabled = true
# Date format for journal listings
date_format = "02-Jan-2006"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

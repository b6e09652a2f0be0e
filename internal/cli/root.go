package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"optcalc/internal/config"
	"optcalc/internal/logging"
	"optcalc/internal/pricing"
	"optcalc/internal/risk"
	"optcalc/internal/spreads"
	"optcalc/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-31"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Engine    *pricing.Engine
	Evaluator *spreads.Evaluator
	Risk      *risk.Calculator
	Store     store.DataStore
}

// output builds an Output honoring the configured color preference.
func (app *App) output(cmd *cobra.Command) *Output {
	return NewOutput(cmd, app.Config.UI.ColorEnabled)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) *cobra.Command {
	engine := &pricing.Engine{
		SeedVol:       cfg.Solver.SeedVol,
		Tolerance:     cfg.Solver.Tolerance,
		MaxIterations: cfg.Solver.MaxIterations,
		MinVol:        cfg.Solver.MinVol,
		MaxVol:        cfg.Solver.MaxVol,
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
		Engine:    engine,
		Evaluator: spreads.NewEvaluator(engine),
		Risk: &risk.Calculator{
			MinReturns:   cfg.Risk.MinReturns,
			RiskFreeRate: cfg.Risk.RiskFreeRate,
		},
	}

	if cfg.Journal.Enabled {
		dataStore, err := store.NewSQLiteStore(cfg.JournalPath(configDir))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open journal, calculations will not be recorded")
		} else {
			app.Store = dataStore
			logger.Debug().Msg("Journal store initialized")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "optcalc",
		Short: "Options pricing and spread analysis CLI",
		Long: `optcalc prices options with the Black-Scholes model, computes Greeks,
solves implied volatility from market prices, and evaluates multi-leg
spread strategies with breakevens and probability of profit.

Use 'optcalc help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/optcalc)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newGreeksCmd(app))
	rootCmd.AddCommand(newIVCmd(app))
	rootCmd.AddCommand(newSpreadCmd(app))
	rootCmd.AddCommand(newRiskCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))

	return rootCmd
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("optcalc v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			dir := app.ConfigDir
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				output.JSON(map[string]string{"path": dir})
			} else {
				output.Println(dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, app *App) {
	cfg := app.Config

	output.Bold("Pricing")
	output.Printf("  Risk-Free Rate:     %.2f%%\n", cfg.Pricing.RiskFreeRate*100)
	output.Printf("  Default Volatility: %.2f%%\n", cfg.Pricing.DefaultVol*100)
	output.Println()

	output.Bold("Solver")
	output.Printf("  Seed Volatility: %.2f\n", cfg.Solver.SeedVol)
	output.Printf("  Tolerance:       %g\n", cfg.Solver.Tolerance)
	output.Printf("  Max Iterations:  %d\n", cfg.Solver.MaxIterations)
	output.Printf("  Vol Bounds:      [%g, %g]\n", cfg.Solver.MinVol, cfg.Solver.MaxVol)
	output.Println()

	output.Bold("Risk")
	output.Printf("  Risk-Free Rate: %.2f%%\n", cfg.Risk.RiskFreeRate*100)
	output.Printf("  Min Returns:    %d\n", cfg.Risk.MinReturns)
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled: %v\n", cfg.Journal.Enabled)
	output.Printf("  Path:    %s\n", cfg.JournalPath(app.ConfigDir))
}

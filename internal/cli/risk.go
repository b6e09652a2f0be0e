package cli

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"optcalc/internal/errors"
)

func newRiskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Compute risk metrics from a close-price series",
		Long: `Compute volatility, value at risk, maximum drawdown, and Sharpe
ratio from a daily close-price history.

Prices come from --csv (one close per line, or the last column of each
row, oldest first) or from --closes as a comma-separated list.`,
		Example: `  optcalc risk --csv closes.csv --position 10000
  optcalc risk --closes 100,102,101,103,...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRisk(cmd, app)
		},
	}

	cmd.Flags().String("csv", "", "CSV file with daily closes, oldest first")
	cmd.Flags().String("closes", "", "comma-separated daily closes, oldest first")
	cmd.Flags().Float64("position", 0, "position size in dollars for dollar-denominated figures")

	return cmd
}

func runRisk(cmd *cobra.Command, app *App) error {
	output := app.output(cmd)

	csvPath, _ := cmd.Flags().GetString("csv")
	closesArg, _ := cmd.Flags().GetString("closes")
	position, _ := cmd.Flags().GetFloat64("position")

	var closes []float64
	var err error
	switch {
	case csvPath != "":
		closes, err = readClosesCSV(csvPath)
	case closesArg != "":
		closes, err = parseCloses(closesArg)
	default:
		return errors.NewValidationError("closes", "", "either --csv or --closes is required")
	}
	if err != nil {
		return err
	}

	metrics, err := app.Risk.Compute(closes, position)
	if err != nil {
		return err
	}

	app.Logger.Debug().
		Int("data_points", metrics.DataPoints).
		Float64("annual_volatility", metrics.AnnualVolatility).
		Msg("Risk metrics computed")

	if output.IsJSON() {
		return output.JSON(metrics)
	}

	output.Bold("Risk Metrics")
	output.Printf("  Data Points:     %d\n", metrics.DataPoints)
	output.Println()
	output.Printf("  Daily Vol:       %.2f%%\n", metrics.DailyVolatility*100)
	output.Printf("  Annual Vol:      %.2f%%\n", metrics.AnnualVolatility*100)
	output.Printf("  VaR 95%% (1d):    %.2f%%\n", metrics.VaR95Daily*100)
	output.Printf("  VaR 99%% (1d):    %.2f%%\n", metrics.VaR99Daily*100)
	output.Printf("  Max Drawdown:    %.2f%%\n", metrics.MaxDrawdown*100)
	output.Printf("  Sharpe Ratio:    %.3f\n", metrics.SharpeRatio)
	output.Printf("  Mean Daily Ret:  %.4f%%\n", metrics.MeanDailyReturn*100)
	output.Printf("  Total Return:    %s\n",
		output.ColoredString(output.PnLColor(metrics.TotalReturn), FormatPercent(metrics.TotalReturn)))

	if metrics.Position != nil {
		output.Println()
		output.Bold("Position (%s)", FormatCurrency(metrics.Position.Size))
		output.Printf("  VaR 95%% (1d):    %s\n", FormatCurrency(metrics.Position.VaR95Dollar))
		output.Printf("  VaR 99%% (1d):    %s\n", FormatCurrency(metrics.Position.VaR99Dollar))
		output.Printf("  Max Drawdown:    %s\n", FormatCurrency(metrics.Position.DrawdownDollar))
	}

	return nil
}

// readClosesCSV reads one close per row, taking the last numeric column so
// both bare price lists and full OHLCV exports work. A non-numeric first row
// is treated as a header.
func readClosesCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var closes []float64
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		value, perr := strconv.ParseFloat(strings.TrimSpace(record[len(record)-1]), 64)
		if perr != nil {
			if i == 0 {
				continue // header row
			}
			return nil, errors.NewValidationError("csv", record[len(record)-1],
				"last column must be a number")
		}
		closes = append(closes, value)
	}
	return closes, nil
}

func parseCloses(arg string) ([]float64, error) {
	parts := strings.Split(arg, ",")
	closes := make([]float64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.NewValidationError("closes", part, "must be a number")
		}
		closes = append(closes, value)
	}
	return closes, nil
}

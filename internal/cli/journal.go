package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"optcalc/internal/errors"
	"optcalc/internal/models"
	"optcalc/internal/store"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Review the calculation journal",
		Long:  "List and manage previously computed valuations and strategy analyses.",
	}

	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalClearCmd(app))

	return cmd
}

func newJournalListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Example: `  optcalc journal list
  optcalc journal list --strategies --symbol SPY --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if app.Store == nil {
				return errors.Wrap(errors.ErrDataNotFound, "journal is disabled or unavailable")
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			limit, _ := cmd.Flags().GetInt("limit")
			strategiesOnly, _ := cmd.Flags().GetBool("strategies")
			valuationsOnly, _ := cmd.Flags().GetBool("valuations")

			ctx := cmd.Context()

			var valuations []models.Valuation
			var analyses []models.StrategyAnalysis
			var err error

			if !strategiesOnly {
				valuations, err = app.Store.ListValuations(ctx, store.ValuationFilter{
					Symbol: symbol,
					Limit:  limit,
				})
				if err != nil {
					return err
				}
			}
			if !valuationsOnly {
				analyses, err = app.Store.ListStrategyAnalyses(ctx, store.StrategyFilter{
					Symbol: symbol,
					Limit:  limit,
				})
				if err != nil {
					return err
				}
			}

			if output.IsJSON() {
				switch {
				case valuationsOnly:
					return output.JSON(valuations)
				case strategiesOnly:
					return output.JSON(analyses)
				default:
					return output.JSON(map[string]interface{}{
						"valuations": valuations,
						"strategies": analyses,
					})
				}
			}

			if !strategiesOnly {
				printValuations(output, valuations)
			}
			if !valuationsOnly {
				if !strategiesOnly {
					output.Println()
				}
				printStrategies(output, analyses)
			}
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().Int("limit", 20, "maximum entries per section")
	cmd.Flags().Bool("strategies", false, "show only strategy analyses")
	cmd.Flags().Bool("valuations", false, "show only valuations")

	return cmd
}

func printValuations(output *Output, valuations []models.Valuation) {
	output.Bold("Valuations")
	if len(valuations) == 0 {
		output.Dim("  none recorded")
		return
	}

	table := NewTable(output, "When", "Symbol", "Type", "Strike", "Spot", "DTE", "Price", "IV")
	for _, v := range valuations {
		symbol := v.Symbol
		if symbol == "" {
			symbol = "-"
		}
		table.AddRow(
			FormatDateTime(v.CreatedAt),
			symbol,
			string(v.Type),
			FormatPrice(v.Strike),
			FormatPrice(v.Spot),
			strconv.Itoa(v.DaysToExpiry),
			FormatPrice(v.Price),
			FormatIV(v.ImpliedVolatility),
		)
	}
	table.Render()
}

func printStrategies(output *Output, analyses []models.StrategyAnalysis) {
	output.Bold("Strategies")
	if len(analyses) == 0 {
		output.Dim("  none recorded")
		return
	}

	table := NewTable(output, "When", "Symbol", "Strategy", "Net Cost", "Breakevens", "P(profit)")
	for _, a := range analyses {
		symbol := a.Symbol
		if symbol == "" {
			symbol = "-"
		}
		bes := make([]string, len(a.Breakevens))
		for i, be := range a.Breakevens {
			bes[i] = FormatPrice(be)
		}
		pop := "-"
		if a.ProbabilityOfProfit != nil {
			pop = FormatProbability(*a.ProbabilityOfProfit)
		}
		table.AddRow(
			FormatDateTime(a.CreatedAt),
			symbol,
			string(a.Kind),
			FormatCurrency(a.NetCost),
			strings.Join(bes, ", "),
			pop,
		)
	}
	table.Render()
}

func newJournalClearCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if app.Store == nil {
				return errors.Wrap(errors.ErrDataNotFound, "journal is disabled or unavailable")
			}

			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				output.Warning("This deletes all journal entries. Re-run with --yes to confirm.")
				return nil
			}

			if err := app.Store.Clear(cmd.Context()); err != nil {
				return err
			}
			output.Success("Journal cleared")
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "skip confirmation")
	return cmd
}

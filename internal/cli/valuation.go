package cli

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"optcalc/internal/errors"
	"optcalc/internal/logging"
	"optcalc/internal/models"
	"optcalc/internal/pricing"
)

// optionFlags registers the flags shared by the single-option commands.
func optionFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("spot", "s", 0, "underlying spot price (required)")
	cmd.Flags().Float64P("strike", "k", 0, "option strike price (required)")
	cmd.Flags().StringP("type", "t", "call", "option type: call or put")
	cmd.Flags().Int("dte", 0, "days to expiry")
	cmd.Flags().String("expiry", "", "expiry date (YYYY-MM-DD), alternative to --dte")
	cmd.Flags().String("as-of", "", "valuation date (YYYY-MM-DD), default today")
	cmd.Flags().Float64("vol", 0, "volatility as a decimal fraction (e.g. 0.30)")
	cmd.Flags().Float64("market-price", 0, "observed market price, solves volatility implicitly")
	cmd.Flags().Float64P("rate", "r", -1, "annual risk-free rate (default from config)")
	cmd.Flags().String("symbol", "", "underlying symbol for the journal")

	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
}

// optionInput collects the shared option flags into pricing parameters.
// Volatility is left at zero when neither --vol nor --market-price resolves it.
func optionInput(cmd *cobra.Command, app *App) (models.OptionParams, float64, int, string, error) {
	spot, _ := cmd.Flags().GetFloat64("spot")
	strike, _ := cmd.Flags().GetFloat64("strike")
	optType, _ := cmd.Flags().GetString("type")
	vol, _ := cmd.Flags().GetFloat64("vol")
	marketPrice, _ := cmd.Flags().GetFloat64("market-price")
	rate, _ := cmd.Flags().GetFloat64("rate")
	symbol, _ := cmd.Flags().GetString("symbol")

	days, err := resolveDays(cmd)
	if err != nil {
		return models.OptionParams{}, 0, 0, "", err
	}

	if rate < 0 {
		rate = app.Config.Pricing.RiskFreeRate
	}

	p := models.OptionParams{
		Spot:         spot,
		Strike:       strike,
		TimeToExpiry: float64(days) / 365,
		Type:         models.OptionType(optType),
		Volatility:   vol,
		Rate:         rate,
	}
	return p, marketPrice, days, symbol, nil
}

// resolveDays turns --dte or --expiry/--as-of into days to expiry.
func resolveDays(cmd *cobra.Command) (int, error) {
	dte, _ := cmd.Flags().GetInt("dte")
	expiry, _ := cmd.Flags().GetString("expiry")
	asOf, _ := cmd.Flags().GetString("as-of")

	if expiry == "" {
		if dte <= 0 && asOf != "" {
			return 0, errors.NewValidationError("as-of", asOf, "requires --expiry")
		}
		if dte < 0 {
			return 0, errors.NewValidationError("dte", dte, "must be non-negative")
		}
		return dte, nil
	}
	if dte > 0 {
		return 0, errors.NewValidationError("dte", dte, "cannot combine --dte with --expiry")
	}

	expDate, err := time.Parse("2006-01-02", expiry)
	if err != nil {
		return 0, errors.NewValidationError("expiry", expiry, "must be YYYY-MM-DD")
	}

	ref := time.Now().Truncate(24 * time.Hour)
	if asOf != "" {
		ref, err = time.Parse("2006-01-02", asOf)
		if err != nil {
			return 0, errors.NewValidationError("as-of", asOf, "must be YYYY-MM-DD")
		}
	}

	days := int(math.Round(expDate.Sub(ref).Hours() / 24))
	if days < 0 {
		return 0, errors.NewValidationError("expiry", expiry, "is before the valuation date")
	}
	return days, nil
}

// resolveVolatility fills in the volatility: an explicit --vol wins, then an
// implied solve from --market-price, then a moneyness estimate anchored at
// the configured default. The solution is non-nil when a solve ran. A failed
// convergence degrades to the best estimate with a warning rather than
// aborting.
func resolveVolatility(app *App, output *Output, p *models.OptionParams, marketPrice float64) (*models.IVSolution, error) {
	if p.Volatility > 0 {
		return nil, nil
	}

	if marketPrice > 0 {
		sol, err := app.Engine.SolveImpliedVol(*p, marketPrice)
		if err != nil {
			var nc *errors.NotConvergedError
			if errors.As(err, &nc) {
				output.Warning("Solver did not converge after %d iterations; using best estimate %.4f (residual %.2e)",
					nc.Iterations, nc.BestEstimate, nc.Residual)
				logging.LogSolve(app.Logger, nc.BestEstimate, nc.Iterations, false)
				p.Volatility = nc.BestEstimate
				return &sol, nil
			}
			return nil, err
		}
		logging.LogSolve(app.Logger, sol.Volatility, sol.Iterations, sol.Converged)
		p.Volatility = sol.Volatility
		return &sol, nil
	}

	p.Volatility = pricing.EstimateIVFrom(app.Config.Pricing.DefaultVol, p.Spot, p.Strike, p.Type)
	if !output.IsJSON() {
		output.Dim("No volatility given; estimated %s from moneyness", FormatIV(p.Volatility))
	}
	return nil, nil
}

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price an option and compute its Greeks",
		Long: `Price a European option with the Black-Scholes model.

Volatility comes from --vol, or is solved from --market-price, or falls
back to a moneyness estimate anchored at the configured default. The
result includes all five Greeks.`,
		Example: `  optcalc price --spot 630 --strike 600 --dte 30 --market-price 40
  optcalc price -s 100 -k 105 --type put --expiry 2026-10-16 --vol 0.25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValuation(cmd, app, true)
		},
	}
	optionFlags(cmd)
	return cmd
}

func newGreeksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greeks",
		Short: "Compute option Greeks",
		Long: `Compute delta, gamma, theta, vega, and rho for an option.

Theta is per calendar day; vega and rho are per 1% move.`,
		Example: `  optcalc greeks --spot 100 --strike 100 --dte 30 --vol 0.25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValuation(cmd, app, false)
		},
	}
	optionFlags(cmd)
	return cmd
}

// runValuation implements both price and greeks; showPrice selects the view.
func runValuation(cmd *cobra.Command, app *App, showPrice bool) error {
	output := app.output(cmd)

	p, marketPrice, days, symbol, err := optionInput(cmd, app)
	if err != nil {
		return err
	}

	sol, err := resolveVolatility(app, output, &p, marketPrice)
	if err != nil {
		return err
	}

	price, err := app.Engine.Price(p)
	if err != nil {
		return err
	}
	greeks, err := app.Engine.Greeks(p)
	if err != nil {
		return err
	}

	valuation := &models.Valuation{
		Symbol:            symbol,
		Spot:              p.Spot,
		Strike:            p.Strike,
		DaysToExpiry:      days,
		Type:              p.Type,
		Price:             price,
		ImpliedVolatility: p.Volatility,
		RiskFreeRate:      p.Rate,
		Greeks:            greeks,
	}
	if marketPrice > 0 {
		valuation.MarketPrice = &marketPrice
	}

	logging.LogValuation(app.Logger, symbol, string(p.Type), price, p.Volatility)
	app.journalValuation(cmd.Context(), valuation)

	if output.IsJSON() {
		return output.JSON(valuation)
	}

	if showPrice {
		printValuation(output, valuation, sol)
	} else {
		printGreeks(output, greeks)
	}
	return nil
}

func printValuation(output *Output, v *models.Valuation, sol *models.IVSolution) {
	label := "Call"
	if v.Type == models.Put {
		label = "Put"
	}
	if v.Symbol != "" {
		output.Bold("%s %s %s", v.Symbol, FormatPrice(v.Strike), label)
	} else {
		output.Bold("%s %s", FormatPrice(v.Strike), label)
	}
	output.Printf("  Spot:        %s\n", FormatCurrency(v.Spot))
	output.Printf("  Expiry:      %d days\n", v.DaysToExpiry)
	output.Printf("  Rate:        %.2f%%\n", v.RiskFreeRate*100)
	output.Println()

	output.Printf("  Fair Value:  %s\n", output.ColoredString(ColorBold, FormatCurrency(v.Price)))
	if v.MarketPrice != nil {
		diff := v.Price - *v.MarketPrice
		output.Printf("  Market:      %s (%s model)\n", FormatCurrency(*v.MarketPrice), output.FormatPnL(diff))
	}
	if sol != nil {
		output.Printf("  Implied Vol: %s %s\n", FormatIV(v.ImpliedVolatility),
			output.DimText(fmt.Sprintf("(%d iterations)", sol.Iterations)))
	} else {
		output.Printf("  Volatility:  %s\n", FormatIV(v.ImpliedVolatility))
	}
	output.Println()

	printGreeks(output, v.Greeks)
}

func printGreeks(output *Output, g models.Greeks) {
	output.Bold("Greeks")
	output.Printf("  Delta: %s\n", FormatGreek(g.Delta))
	output.Printf("  Gamma: %s\n", FormatGreek(g.Gamma))
	output.Printf("  Theta: %s %s\n", FormatGreek(g.Theta), output.DimText("per day"))
	output.Printf("  Vega:  %s %s\n", FormatGreek(g.Vega), output.DimText("per 1% vol"))
	output.Printf("  Rho:   %s %s\n", FormatGreek(g.Rho), output.DimText("per 1% rate"))
}

func newIVCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "Solve implied volatility from a market price",
		Long: `Solve the volatility implied by an observed market price.

Newton-Raphson from the configured seed, with a bisection fallback when
the iteration has no usable gradient. A price at or below intrinsic
value is rejected as arbitrage-inconsistent.`,
		Example: `  optcalc iv --spot 630 --strike 600 --dte 30 --market-price 40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			p, marketPrice, _, _, err := optionInput(cmd, app)
			if err != nil {
				return err
			}
			if marketPrice <= 0 {
				return errors.NewValidationError("market-price", marketPrice, "is required")
			}

			sol, err := app.Engine.SolveImpliedVol(p, marketPrice)
			if err != nil {
				var nc *errors.NotConvergedError
				if errors.As(err, &nc) {
					output.Warning("Solver did not converge after %d iterations (residual %.2e)",
						nc.Iterations, nc.Residual)
				} else {
					return err
				}
			}
			logging.LogSolve(app.Logger, sol.Volatility, sol.Iterations, sol.Converged)

			if output.IsJSON() {
				return output.JSON(sol)
			}

			output.Bold("Implied Volatility")
			output.Printf("  IV:         %s\n", FormatIV(sol.Volatility))
			output.Printf("  Iterations: %d\n", sol.Iterations)
			if sol.Converged {
				output.Success("  Converged")
			} else {
				output.Warning("  Best estimate only")
			}
			return nil
		},
	}
	optionFlags(cmd)
	cmd.MarkFlagRequired("market-price")
	return cmd
}

// journalValuation records a valuation, logging rather than failing when the
// journal is unavailable.
func (app *App) journalValuation(ctx context.Context, v *models.Valuation) {
	if app.Store == nil {
		return
	}
	if err := app.Store.SaveValuation(ctx, v); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to journal valuation")
	}
}

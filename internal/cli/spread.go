package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"optcalc/internal/errors"
	"optcalc/internal/logging"
	"optcalc/internal/models"
	"optcalc/internal/spreads"
)

func newSpreadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spread",
		Short: "Evaluate multi-leg spread strategies",
		Long: `Evaluate a spread strategy: net cost, max profit and loss,
breakevens, and probability of profit.

Legs are given as repeated --leg flags in the form
SIDE:TYPE:STRIKE:PREMIUM[:QTY], for example --leg long:call:100:3.50.`,
	}

	kinds := []struct {
		kind  models.StrategyKind
		short string
	}{
		{models.Vertical, "Evaluate a vertical spread (two legs, same type)"},
		{models.Straddle, "Evaluate a straddle (call and put at one strike)"},
		{models.Strangle, "Evaluate a strangle (put below call)"},
		{models.IronCondor, "Evaluate an iron condor (four legs)"},
	}

	for _, k := range kinds {
		cmd.AddCommand(newStrategyCmd(app, k.kind, k.short))
	}

	return cmd
}

func newStrategyCmd(app *App, kind models.StrategyKind, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Example: fmt.Sprintf(`  optcalc spread %s --leg long:call:100:5.00 --leg short:call:110:2.00 \
    --spot 100 --dte 30 --vol 0.25`, kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpread(cmd, app, kind)
		},
	}

	cmd.Flags().StringArray("leg", nil, "leg as SIDE:TYPE:STRIKE:PREMIUM[:QTY] (repeatable)")
	cmd.Flags().Float64P("spot", "s", 0, "underlying spot price, enables probability of profit")
	cmd.Flags().Int("dte", 0, "days to expiry, enables probability of profit")
	cmd.Flags().Float64("vol", 0, "volatility for probability of profit (default from legs)")
	cmd.Flags().String("symbol", "", "underlying symbol for the journal")
	cmd.Flags().Bool("payoff", false, "render the expiry payoff diagram")
	cmd.MarkFlagRequired("leg")

	return cmd
}

func runSpread(cmd *cobra.Command, app *App, kind models.StrategyKind) error {
	output := app.output(cmd)

	legSpecs, _ := cmd.Flags().GetStringArray("leg")
	spot, _ := cmd.Flags().GetFloat64("spot")
	dte, _ := cmd.Flags().GetInt("dte")
	vol, _ := cmd.Flags().GetFloat64("vol")
	symbol, _ := cmd.Flags().GetString("symbol")
	showPayoff, _ := cmd.Flags().GetBool("payoff")

	legs := make([]models.Leg, 0, len(legSpecs))
	for _, spec := range legSpecs {
		leg, err := parseLeg(spec)
		if err != nil {
			return err
		}
		legs = append(legs, leg)
	}

	analysis, err := app.Evaluator.Evaluate(spreads.Input{
		Kind:         kind,
		Symbol:       symbol,
		Spot:         spot,
		TimeToExpiry: float64(dte) / 365,
		Volatility:   vol,
		Legs:         legs,
	})
	if err != nil {
		return err
	}

	logging.LogStrategy(app.Logger, string(analysis.Kind), analysis.NetCost, analysis.Breakevens)
	app.journalStrategy(cmd.Context(), analysis)

	if output.IsJSON() {
		return output.JSON(analysis)
	}

	printStrategy(output, analysis)
	if showPayoff {
		output.Println()
		renderPayoff(output, analysis.Legs)
	}
	return nil
}

// parseLeg parses SIDE:TYPE:STRIKE:PREMIUM[:QTY].
func parseLeg(spec string) (models.Leg, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return models.Leg{}, errors.NewValidationError("leg", spec,
			"must be SIDE:TYPE:STRIKE:PREMIUM[:QTY]")
	}

	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return models.Leg{}, errors.NewValidationError("leg", spec, "strike must be a number")
	}
	premium, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return models.Leg{}, errors.NewValidationError("leg", spec, "premium must be a number")
	}

	qty := 1
	if len(parts) == 5 {
		qty, err = strconv.Atoi(parts[4])
		if err != nil {
			return models.Leg{}, errors.NewValidationError("leg", spec, "quantity must be an integer")
		}
	}

	return models.Leg{
		Side:     models.Side(strings.ToLower(parts[0])),
		Type:     models.OptionType(strings.ToLower(parts[1])),
		Strike:   strike,
		Premium:  premium,
		Quantity: qty,
	}, nil
}

func printStrategy(output *Output, a *models.StrategyAnalysis) {
	title := titleCase(string(a.Kind))
	if a.Symbol != "" {
		title = a.Symbol + " " + title
	}
	output.Bold(title)
	output.Dim("  %s", a.Direction)
	output.Println()

	table := NewTable(output, "Leg", "Type", "Strike", "Premium", "Qty")
	for _, leg := range a.Legs {
		table.AddRow(
			string(leg.Side),
			string(leg.Type),
			FormatPrice(leg.Strike),
			FormatPrice(leg.Premium),
			strconv.Itoa(leg.Quantity),
		)
	}
	table.Render()
	output.Println()

	costLabel := "Net Debit"
	cost := a.NetCost
	if cost < 0 {
		costLabel = "Net Credit"
		cost = -cost
	}
	output.Printf("  %s:   %s\n", costLabel, FormatCurrency(cost))
	output.Printf("  Max Profit:  %s\n", formatBound(output, a.MaxProfit, true))
	output.Printf("  Max Loss:    %s\n", formatBound(output, a.MaxLoss, false))

	bes := make([]string, len(a.Breakevens))
	for i, be := range a.Breakevens {
		bes[i] = FormatPrice(be)
	}
	output.Printf("  Breakevens:  %s\n", strings.Join(bes, ", "))

	if a.ProbabilityOfProfit != nil {
		output.Printf("  P(profit):   %s\n", FormatProbability(*a.ProbabilityOfProfit))
	}
}

// titleCase turns "iron-condor" into "Iron Condor".
func titleCase(kind string) string {
	words := strings.Split(kind, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatBound(output *Output, v *float64, isProfit bool) string {
	if v == nil {
		return output.DimText("unlimited")
	}
	if isProfit {
		return output.Green(FormatCurrency(*v))
	}
	return output.Red(FormatCurrency(*v))
}

// renderPayoff draws an ASCII expiry payoff diagram.
func renderPayoff(output *Output, legs []models.Leg) {
	const (
		width  = 61
		height = 15
	)

	low, high := spreads.CurveBounds(legs)
	points := spreads.Curve(legs, low, high, width)
	if len(points) == 0 {
		return
	}

	minP, maxP := points[0].Payoff, points[0].Payoff
	for _, pt := range points {
		minP = math.Min(minP, pt.Payoff)
		maxP = math.Max(maxP, pt.Payoff)
	}
	if maxP == minP {
		maxP = minP + 1
	}

	output.Bold("Payoff at Expiry")
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	zeroRow := int(math.Round(float64(height-1) * maxP / (maxP - minP)))
	if zeroRow >= 0 && zeroRow < height {
		for col := 0; col < width; col++ {
			grid[zeroRow][col] = '·'
		}
	}

	for col, pt := range points {
		row := int(math.Round(float64(height-1) * (maxP - pt.Payoff) / (maxP - minP)))
		if row >= 0 && row < height {
			grid[row][col] = '█'
		}
	}

	for i, line := range grid {
		label := "        "
		switch i {
		case 0:
			label = fmt.Sprintf("%8.2f", maxP)
		case height - 1:
			label = fmt.Sprintf("%8.2f", minP)
		case zeroRow:
			label = fmt.Sprintf("%8.2f", 0.0)
		}
		output.Printf("%s │%s\n", label, string(line))
	}
	output.Printf("%s └%s\n", strings.Repeat(" ", 8), strings.Repeat("─", width))
	output.Printf("%s  %-10s%s%10s\n", strings.Repeat(" ", 8),
		FormatPrice(low), strings.Repeat(" ", width-20), FormatPrice(high))
}

// journalStrategy records a strategy analysis, logging rather than failing
// when the journal is unavailable.
func (app *App) journalStrategy(ctx context.Context, a *models.StrategyAnalysis) {
	if app.Store == nil {
		return
	}
	if err := app.Store.SaveStrategyAnalysis(ctx, a); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to journal strategy analysis")
	}
}

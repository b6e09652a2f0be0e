// Package spreads evaluates multi-leg option strategies: net cost, maximum
// profit and loss, breakevens, and probability of profit.
package spreads

import (
	"math"

	"optcalc/internal/errors"
	"optcalc/internal/models"
	"optcalc/internal/pricing"
)

// Input describes a strategy to evaluate. Spot, TimeToExpiry, and Volatility
// feed the probability-of-profit estimate; when they are missing the
// probability is omitted rather than failing the evaluation.
type Input struct {
	Kind         models.StrategyKind
	Symbol       string
	Spot         float64
	TimeToExpiry float64 // years
	Volatility   float64 // explicit override; 0 means take from legs
	Legs         []models.Leg
}

// Evaluator computes strategy analytics. It holds no state between calls.
type Evaluator struct {
	engine *pricing.Engine
}

// NewEvaluator creates an evaluator backed by the given pricing engine.
func NewEvaluator(engine *pricing.Engine) *Evaluator {
	if engine == nil {
		engine = pricing.NewEngine()
	}
	return &Evaluator{engine: engine}
}

// Evaluate dispatches to the payoff calculator for the requested strategy.
// The supported set is closed: vertical, straddle, strangle, iron condor.
func (ev *Evaluator) Evaluate(in Input) (*models.StrategyAnalysis, error) {
	if !in.Kind.Valid() {
		return nil, errors.Wrapf(errors.ErrUnknownStrategy, "%q", string(in.Kind))
	}
	if err := validateLegs(in.Legs); err != nil {
		return nil, err
	}

	legs := normalizeQuantities(in.Legs)

	var (
		analysis *models.StrategyAnalysis
		err      error
	)
	switch in.Kind {
	case models.Vertical:
		analysis, err = evalVertical(legs)
	case models.Straddle:
		analysis, err = evalStraddle(legs)
	case models.Strangle:
		analysis, err = evalStrangle(legs)
	case models.IronCondor:
		analysis, err = evalIronCondor(legs)
	}
	if err != nil {
		return nil, err
	}

	analysis.Symbol = in.Symbol
	analysis.Spot = in.Spot
	analysis.ProbabilityOfProfit = ev.probabilityOfProfit(in, analysis)
	return analysis, nil
}

// validateLegs checks per-leg fields common to all strategies.
func validateLegs(legs []models.Leg) error {
	for _, leg := range legs {
		if !leg.Type.Valid() {
			return errors.NewValidationError("legs.type", string(leg.Type), "must be 'call' or 'put'")
		}
		if !leg.Side.Valid() {
			return errors.NewValidationError("legs.side", string(leg.Side), "must be 'long' or 'short'")
		}
		if leg.Strike <= 0 {
			return errors.NewValidationError("legs.strike", leg.Strike, "must be positive")
		}
		if leg.Premium < 0 {
			return errors.NewValidationError("legs.premium", leg.Premium, "must be non-negative")
		}
		if leg.Quantity < 0 {
			return errors.NewValidationError("legs.quantity", leg.Quantity, "must be non-negative")
		}
	}
	return nil
}

// normalizeQuantities defaults unset quantities to one contract.
func normalizeQuantities(legs []models.Leg) []models.Leg {
	out := make([]models.Leg, len(legs))
	copy(out, legs)
	for i := range out {
		if out[i].Quantity == 0 {
			out[i].Quantity = 1
		}
	}
	return out
}

// netCost is the signed cost of entering the position: positive means debit
// paid, negative means credit received.
func netCost(legs []models.Leg) float64 {
	var total float64
	for _, leg := range legs {
		total += leg.Premium * leg.Side.Sign() * float64(leg.Quantity)
	}
	return total
}

// commonQuantity requires all legs to share one quantity and returns it.
func commonQuantity(kind string, legs []models.Leg) (float64, error) {
	q := legs[0].Quantity
	for _, leg := range legs[1:] {
		if leg.Quantity != q {
			return 0, errors.NewStrategyError(kind, "all legs must have the same quantity")
		}
	}
	return float64(q), nil
}

func evalVertical(legs []models.Leg) (*models.StrategyAnalysis, error) {
	const kind = "vertical"
	if len(legs) != 2 {
		return nil, errors.NewStrategyError(kind, "requires exactly 2 legs")
	}
	if legs[0].Type != legs[1].Type {
		return nil, errors.NewStrategyError(kind, "both legs must be the same option type")
	}
	if legs[0].Side == legs[1].Side {
		return nil, errors.NewStrategyError(kind, "legs must have opposite directions")
	}
	if legs[0].Strike == legs[1].Strike {
		return nil, errors.NewStrategyError(kind, "legs must have different strikes")
	}
	q, err := commonQuantity(kind, legs)
	if err != nil {
		return nil, err
	}

	long, short := legs[0], legs[1]
	if long.Side == models.Short {
		long, short = short, long
	}

	width := math.Abs(long.Strike - short.Strike)
	cost := netCost(legs)
	perShare := cost / q

	var maxProfit, maxLoss, breakeven float64
	var direction string

	if long.Type == models.Call {
		if long.Strike < short.Strike {
			// Bull call spread: debit, profits above the long strike.
			maxProfit = (width - perShare) * q
			maxLoss = cost
			breakeven = long.Strike + perShare
			direction = "bullish"
		} else {
			// Bear call spread: credit, profits below the short strike.
			credit := -perShare
			maxProfit = credit * q
			maxLoss = (width - credit) * q
			breakeven = short.Strike + credit
			direction = "bearish"
		}
	} else {
		if long.Strike > short.Strike {
			// Bear put spread: debit, profits below the long strike.
			maxProfit = (width - perShare) * q
			maxLoss = cost
			breakeven = long.Strike - perShare
			direction = "bearish"
		} else {
			// Bull put spread: credit, profits above the short strike.
			credit := -perShare
			maxProfit = credit * q
			maxLoss = (width - credit) * q
			breakeven = short.Strike - credit
			direction = "bullish"
		}
	}

	return &models.StrategyAnalysis{
		Kind:       models.Vertical,
		Direction:  direction,
		Legs:       legs,
		NetCost:    cost,
		MaxProfit:  &maxProfit,
		MaxLoss:    &maxLoss,
		Breakevens: []float64{breakeven},
	}, nil
}

func evalStraddle(legs []models.Leg) (*models.StrategyAnalysis, error) {
	const kind = "straddle"
	if len(legs) != 2 {
		return nil, errors.NewStrategyError(kind, "requires exactly 2 legs")
	}
	call, put, err := callPutPair(kind, legs)
	if err != nil {
		return nil, err
	}
	if call.Strike != put.Strike {
		return nil, errors.NewStrategyError(kind, "call and put must share the same strike")
	}
	if call.Side != put.Side {
		return nil, errors.NewStrategyError(kind, "both legs must have the same direction")
	}
	q, err := commonQuantity(kind, legs)
	if err != nil {
		return nil, err
	}

	cost := netCost(legs)
	perShare := math.Abs(cost) / q
	strike := call.Strike
	breakevens := []float64{strike - perShare, strike + perShare}

	analysis := &models.StrategyAnalysis{
		Kind:       models.Straddle,
		Legs:       legs,
		NetCost:    cost,
		Breakevens: breakevens,
	}

	if call.Side == models.Long {
		// Long straddle: bounded loss at the strike, unbounded profit.
		loss := cost
		analysis.Direction = "neutral (expects big move)"
		analysis.MaxLoss = &loss
	} else {
		// Short straddle: bounded profit, unbounded loss.
		profit := -cost
		analysis.Direction = "neutral (expects small move)"
		analysis.MaxProfit = &profit
	}

	return analysis, nil
}

func evalStrangle(legs []models.Leg) (*models.StrategyAnalysis, error) {
	const kind = "strangle"
	if len(legs) != 2 {
		return nil, errors.NewStrategyError(kind, "requires exactly 2 legs")
	}
	call, put, err := callPutPair(kind, legs)
	if err != nil {
		return nil, err
	}
	if put.Strike >= call.Strike {
		return nil, errors.NewStrategyError(kind, "put strike must be below call strike")
	}
	if call.Side != put.Side {
		return nil, errors.NewStrategyError(kind, "both legs must have the same direction")
	}
	q, err := commonQuantity(kind, legs)
	if err != nil {
		return nil, err
	}

	cost := netCost(legs)
	perShare := math.Abs(cost) / q
	breakevens := []float64{put.Strike - perShare, call.Strike + perShare}

	analysis := &models.StrategyAnalysis{
		Kind:       models.Strangle,
		Legs:       legs,
		NetCost:    cost,
		Breakevens: breakevens,
	}

	if call.Side == models.Long {
		loss := cost
		analysis.Direction = "neutral (expects big move)"
		analysis.MaxLoss = &loss
	} else {
		profit := -cost
		analysis.Direction = "neutral (expects small move)"
		analysis.MaxProfit = &profit
	}

	return analysis, nil
}

func evalIronCondor(legs []models.Leg) (*models.StrategyAnalysis, error) {
	const kind = "iron-condor"
	if len(legs) != 4 {
		return nil, errors.NewStrategyError(kind, "requires exactly 4 legs")
	}

	var longPut, shortPut, shortCall, longCall *models.Leg
	for i := range legs {
		leg := &legs[i]
		switch {
		case leg.Type == models.Put && leg.Side == models.Long:
			longPut = leg
		case leg.Type == models.Put && leg.Side == models.Short:
			shortPut = leg
		case leg.Type == models.Call && leg.Side == models.Short:
			shortCall = leg
		case leg.Type == models.Call && leg.Side == models.Long:
			longCall = leg
		}
	}
	if longPut == nil || shortPut == nil || shortCall == nil || longCall == nil {
		return nil, errors.NewStrategyError(kind,
			"requires a long put, short put, short call, and long call")
	}
	// Short strikes must sit strictly inside the long wings.
	if !(longPut.Strike < shortPut.Strike && shortPut.Strike < shortCall.Strike && shortCall.Strike < longCall.Strike) {
		return nil, errors.NewStrategyError(kind,
			"strikes must be ordered: long put < short put < short call < long call")
	}
	q, err := commonQuantity(kind, legs)
	if err != nil {
		return nil, err
	}

	cost := netCost(legs)
	credit := -cost / q

	putWidth := shortPut.Strike - longPut.Strike
	callWidth := longCall.Strike - shortCall.Strike

	maxProfit := credit * q
	maxLoss := (math.Max(putWidth, callWidth) - credit) * q
	breakevens := []float64{shortPut.Strike - credit, shortCall.Strike + credit}

	return &models.StrategyAnalysis{
		Kind:       models.IronCondor,
		Direction:  "neutral (expects low volatility)",
		Legs:       legs,
		NetCost:    cost,
		MaxProfit:  &maxProfit,
		MaxLoss:    &maxLoss,
		Breakevens: breakevens,
	}, nil
}

// callPutPair splits a two-leg strategy into its call and put legs.
func callPutPair(kind string, legs []models.Leg) (call, put models.Leg, err error) {
	switch {
	case legs[0].Type == models.Call && legs[1].Type == models.Put:
		return legs[0], legs[1], nil
	case legs[0].Type == models.Put && legs[1].Type == models.Call:
		return legs[1], legs[0], nil
	}
	return models.Leg{}, models.Leg{}, errors.NewStrategyError(kind, "requires one call and one put")
}

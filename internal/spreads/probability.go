package spreads

import (
	"math"

	"optcalc/internal/models"
)

// probabilityOfProfit estimates the chance the strategy expires profitable
// under a log-normal terminal-price assumption with a single volatility
// figure. Returns nil when spot, time, or volatility is unavailable; the
// rest of the analysis stands without it.
func (ev *Evaluator) probabilityOfProfit(in Input, analysis *models.StrategyAnalysis) *float64 {
	if in.Spot <= 0 || in.TimeToExpiry <= 0 || len(analysis.Breakevens) == 0 {
		return nil
	}

	sigma := in.Volatility
	if sigma <= 0 {
		sigma = legVolatility(in.Legs)
	}
	if sigma <= 0 {
		return nil
	}

	var pop float64
	switch {
	case len(analysis.Breakevens) == 1:
		be := analysis.Breakevens[0]
		above := probAbove(in.Spot, be, sigma, in.TimeToExpiry)
		if analysis.Direction == "bullish" {
			pop = above
		} else {
			pop = 1 - above
		}
	default:
		lower, upper := analysis.Breakevens[0], analysis.Breakevens[1]
		between := probAbove(in.Spot, lower, sigma, in.TimeToExpiry) -
			probAbove(in.Spot, upper, sigma, in.TimeToExpiry)
		if profitsOutside(analysis) {
			pop = 1 - between
		} else {
			pop = between
		}
	}

	pop = math.Max(0, math.Min(1, pop))
	return &pop
}

// legVolatility picks the volatility figure for the estimate: the first leg
// that carries one. For multi-strike strategies this is an approximation,
// not a contract.
func legVolatility(legs []models.Leg) float64 {
	for _, leg := range legs {
		if leg.Volatility > 0 {
			return leg.Volatility
		}
	}
	return 0
}

// probAbove is P(terminal price > level) for a log-normal terminal price
// with zero drift: N(ln(S/level) / (sigma*sqrt(T))).
func probAbove(spot, level, sigma, tYears float64) float64 {
	if level <= 0 {
		return 1
	}
	z := math.Log(spot/level) / (sigma * math.Sqrt(tYears))
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// profitsOutside reports whether a two-breakeven strategy profits outside
// the breakeven band (long premium) rather than inside it (short premium).
func profitsOutside(analysis *models.StrategyAnalysis) bool {
	switch analysis.Kind {
	case models.Straddle, models.Strangle:
		// Long positions pay a debit and need the move.
		return analysis.NetCost > 0
	default:
		// Iron condor collects a credit and profits inside the band.
		return false
	}
}

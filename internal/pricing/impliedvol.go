package pricing

import (
	"math"

	"optcalc/internal/errors"
	"optcalc/internal/models"
)

// vegaCollapse is the threshold below which Newton-Raphson steps become
// unstable and the solver switches to bisection.
const vegaCollapse = 1e-10

// SolveImpliedVol finds the volatility that reproduces marketPrice under the
// Black-Scholes model. The Volatility field of p is ignored.
//
// Newton-Raphson runs from the configured seed; when vega collapses (deep
// in/out of the money, short expiry) or the iteration budget runs out, the
// solver falls back to bisection over the configured volatility bounds.
// A market price at or below the discounted intrinsic floor fails
// immediately with ErrArbitrageInconsistent. Exhaustion without meeting
// tolerance returns a NotConvergedError alongside the best estimate.
func (e *Engine) SolveImpliedVol(p models.OptionParams, marketPrice float64) (models.IVSolution, error) {
	if err := validate(p); err != nil {
		return models.IVSolution{}, err
	}
	if p.TimeToExpiry <= 0 {
		return models.IVSolution{}, errors.NewValidationError(
			"time_to_expiry", p.TimeToExpiry, "option has expired")
	}
	if marketPrice <= 0 {
		return models.IVSolution{}, errors.NewValidationError(
			"market_price", marketPrice, "must be positive")
	}

	if marketPrice <= e.intrinsicFloor(p) {
		return models.IVSolution{}, errors.ErrArbitrageInconsistent
	}

	sigma := e.SeedVol
	for i := 0; i < e.MaxIterations; i++ {
		p.Volatility = sigma
		price := e.price(p)
		vega := e.vega(p)

		if vega < vegaCollapse {
			return e.bisect(p, marketPrice, i)
		}

		diff := price - marketPrice
		if math.Abs(diff) < e.Tolerance {
			return models.IVSolution{Volatility: sigma, Converged: true, Iterations: i + 1}, nil
		}

		sigma = clamp(sigma-diff/vega, e.MinVol, e.MaxVol)
	}

	return e.bisect(p, marketPrice, e.MaxIterations)
}

// intrinsicFloor is the discounted lower arbitrage bound on the option price.
func (e *Engine) intrinsicFloor(p models.OptionParams) float64 {
	discounted := p.Strike * math.Exp(-p.Rate*p.TimeToExpiry)
	if p.Type == models.Call {
		return math.Max(p.Spot-discounted, 0)
	}
	return math.Max(discounted-p.Spot, 0)
}

// bisect runs the bisection fallback over the configured volatility bounds.
// priorIterations is added to the reported iteration count.
func (e *Engine) bisect(p models.OptionParams, marketPrice float64, priorIterations int) (models.IVSolution, error) {
	low, high := e.MinVol, e.MaxVol
	mid := (low + high) / 2

	for i := 0; i < e.MaxIterations; i++ {
		mid = (low + high) / 2
		p.Volatility = mid
		price := e.price(p)

		if math.Abs(price-marketPrice) < e.Tolerance {
			return models.IVSolution{
				Volatility: mid,
				Converged:  true,
				Iterations: priorIterations + i + 1,
			}, nil
		}

		if price > marketPrice {
			high = mid
		} else {
			low = mid
		}
	}

	p.Volatility = mid
	residual := e.price(p) - marketPrice
	sol := models.IVSolution{
		Volatility: mid,
		Converged:  false,
		Iterations: priorIterations + e.MaxIterations,
	}
	return sol, errors.NewNotConvergedError(mid, sol.Iterations, residual)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package pricing

import (
	"math"

	"optcalc/internal/errors"
	"optcalc/internal/models"
)

// Price computes the Black-Scholes theoretical price of a European option.
// An expired contract (T = 0) or zero volatility is worth intrinsic value.
func (e *Engine) Price(p models.OptionParams) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}
	return e.price(p), nil
}

// price is the unvalidated pricing kernel used by the solver hot loop.
func (e *Engine) price(p models.OptionParams) float64 {
	if p.TimeToExpiry <= 0 || p.Volatility <= 0 {
		return intrinsic(p)
	}

	d1, d2 := d1d2(p)
	discount := math.Exp(-p.Rate * p.TimeToExpiry)

	if p.Type == models.Call {
		return p.Spot*normCDF(d1) - p.Strike*discount*normCDF(d2)
	}
	return p.Strike*discount*normCDF(-d2) - p.Spot*normCDF(-d1)
}

// Delta computes the Black-Scholes delta. At expiry it collapses to the
// moneyness limit: {0, 1} for calls, {-1, 0} for puts.
func (e *Engine) Delta(p models.OptionParams) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}

	if p.TimeToExpiry <= 0 || p.Volatility <= 0 {
		return expiryDelta(p), nil
	}

	d1, _ := d1d2(p)
	if p.Type == models.Call {
		return normCDF(d1), nil
	}
	return normCDF(d1) - 1, nil
}

// expiryDelta is the delta limit at T = 0.
func expiryDelta(p models.OptionParams) float64 {
	if p.Type == models.Call {
		if p.Spot > p.Strike {
			return 1
		}
		return 0
	}
	if p.Spot < p.Strike {
		return -1
	}
	return 0
}

// vega is the raw dPrice/dSigma used by the Newton-Raphson solver,
// without the per-1% display scaling.
func (e *Engine) vega(p models.OptionParams) float64 {
	if p.TimeToExpiry <= 0 || p.Volatility <= 0 {
		return 0
	}
	d1, _ := d1d2(p)
	return p.Spot * normPDF(d1) * math.Sqrt(p.TimeToExpiry)
}

// Greeks computes delta, gamma, theta, vega, and rho.
//
// Theta is expressed per calendar day and vega/rho per 1% move, matching
// the usual display convention. At T = 0 all Greeks collapse to their
// expiry-limit values: delta in {0, +/-1} by moneyness, the rest zero.
func (e *Engine) Greeks(p models.OptionParams) (models.Greeks, error) {
	if err := validate(p); err != nil {
		return models.Greeks{}, err
	}

	if p.TimeToExpiry <= 0 {
		return models.Greeks{Delta: expiryDelta(p)}, nil
	}

	if p.Volatility <= 0 {
		return models.Greeks{}, errors.NewValidationError("volatility", p.Volatility, "must be positive")
	}

	d1, d2 := d1d2(p)
	sqrtT := math.Sqrt(p.TimeToExpiry)
	discount := math.Exp(-p.Rate * p.TimeToExpiry)
	nd1 := normPDF(d1)

	g := models.Greeks{
		Gamma: nd1 / (p.Spot * p.Volatility * sqrtT),
		Vega:  p.Spot * nd1 * sqrtT / 100,
	}

	if p.Type == models.Call {
		Nd2 := normCDF(d2)
		g.Delta = normCDF(d1)
		g.Theta = (-p.Spot*nd1*p.Volatility/(2*sqrtT) - p.Rate*p.Strike*discount*Nd2) / 365
		g.Rho = p.Strike * p.TimeToExpiry * discount * Nd2 / 100
	} else {
		NnegD2 := normCDF(-d2)
		g.Delta = normCDF(d1) - 1
		g.Theta = (-p.Spot*nd1*p.Volatility/(2*sqrtT) + p.Rate*p.Strike*discount*NnegD2) / 365
		g.Rho = -p.Strike * p.TimeToExpiry * discount * NnegD2 / 100
	}

	return g, nil
}

// Package pricing implements Black-Scholes option valuation, Greeks, and
// implied volatility solving.
package pricing

import (
	"math"

	"optcalc/internal/errors"
	"optcalc/internal/models"
)

// Default solver parameters.
const (
	DefaultRate          = 0.05
	DefaultSeedVol       = 0.3
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
	DefaultMinVol        = 0.0001
	DefaultMaxVol        = 5.0
)

// Engine performs option valuations. It carries the solver configuration
// explicitly; it holds no state between calls.
type Engine struct {
	SeedVol       float64
	Tolerance     float64
	MaxIterations int
	MinVol        float64
	MaxVol        float64
}

// NewEngine creates an engine with default solver parameters.
func NewEngine() *Engine {
	return &Engine{
		SeedVol:       DefaultSeedVol,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		MinVol:        DefaultMinVol,
		MaxVol:        DefaultMaxVol,
	}
}

// validate checks the common inputs shared by all engine operations.
func validate(p models.OptionParams) error {
	if p.Spot <= 0 {
		return errors.NewValidationError("spot", p.Spot, "must be positive")
	}
	if p.Strike <= 0 {
		return errors.NewValidationError("strike", p.Strike, "must be positive")
	}
	if p.TimeToExpiry < 0 {
		return errors.NewValidationError("time_to_expiry", p.TimeToExpiry, "must be non-negative")
	}
	if !p.Type.Valid() {
		return errors.NewValidationError("option_type", string(p.Type), "must be 'call' or 'put'")
	}
	return nil
}

// intrinsic returns the expiry payoff for the given spot.
func intrinsic(p models.OptionParams) float64 {
	if p.Type == models.Call {
		return math.Max(0, p.Spot-p.Strike)
	}
	return math.Max(0, p.Strike-p.Spot)
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// d1d2 computes the Black-Scholes d1 and d2 terms. Caller guarantees
// T > 0 and sigma > 0.
func d1d2(p models.OptionParams) (float64, float64) {
	sqrtT := math.Sqrt(p.TimeToExpiry)
	d1 := (math.Log(p.Spot/p.Strike) + (p.Rate+0.5*p.Volatility*p.Volatility)*p.TimeToExpiry) /
		(p.Volatility * sqrtT)
	return d1, d1 - p.Volatility*sqrtT
}

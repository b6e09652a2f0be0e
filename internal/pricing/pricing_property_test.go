package pricing

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"optcalc/internal/models"
)

// Property 1: Put-call parity
//
// For any valid inputs with T > 0 and sigma > 0:
// price(call) - price(put) = S - K*e^(-rT) within floating-point tolerance.
func TestPropertyPutCallParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	e := NewEngine()

	properties.Property("C - P = S - K*e^(-rT)", prop.ForAll(
		func(S, K, T, sigma float64) bool {
			call, err := e.Price(callParams(S, K, T, 0.05, sigma))
			if err != nil {
				return false
			}
			put, err := e.Price(putParams(S, K, T, 0.05, sigma))
			if err != nil {
				return false
			}

			parity := S - K*math.Exp(-0.05*T)
			tolerance := 1e-6 * math.Max(1, math.Abs(parity))
			if diff := math.Abs((call - put) - parity); diff > tolerance {
				t.Logf("parity violated: S=%f K=%f T=%f sigma=%f diff=%g", S, K, T, sigma, diff)
				return false
			}
			return true
		},
		gen.Float64Range(10, 1000),
		gen.Float64Range(10, 1000),
		gen.Float64Range(0.01, 3),
		gen.Float64Range(0.05, 2),
	))

	properties.TestingRun(t)
}

// Property 2: IV round-trip
//
// Solving for implied volatility from a model price recovers the input
// volatility within solver tolerance.
func TestPropertyIVRoundtrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	e := NewEngine()

	properties.Property("SolveImpliedVol(Price(sigma)) = sigma", prop.ForAll(
		func(S, sigma float64, isCall bool) bool {
			optType := models.Put
			if isCall {
				optType = models.Call
			}
			p := models.OptionParams{
				Spot: S, Strike: 100, TimeToExpiry: 0.5,
				Rate: 0.05, Volatility: sigma, Type: optType,
			}

			price, err := e.Price(p)
			if err != nil || price <= e.intrinsicFloor(p)+1e-6 {
				// Model price collapsed onto the arbitrage floor; the solve
				// is ill-posed there by construction.
				return true
			}

			sol, err := e.SolveImpliedVol(p, price)
			if err != nil || !sol.Converged {
				t.Logf("no convergence: S=%f sigma=%f err=%v", S, sigma, err)
				return false
			}

			// Tolerance is on the price residual, so map it back through
			// vega to bound the sigma error.
			v := e.vega(p)
			sigmaTol := math.Max(0.001, 10*e.Tolerance/v)
			if diff := math.Abs(sol.Volatility - sigma); diff > sigmaTol {
				t.Logf("roundtrip off: S=%f sigma=%f got=%f", S, sigma, sol.Volatility)
				return false
			}
			return true
		},
		gen.Float64Range(80, 125),
		gen.Float64Range(0.1, 1.5),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property 3: Gamma and vega are type-symmetric
//
// A call and a put sharing identical {S, K, T, sigma, r} have the same
// gamma and vega.
func TestPropertyGammaVegaTypeSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	e := NewEngine()

	properties.Property("gamma(call) = gamma(put), vega(call) = vega(put)", prop.ForAll(
		func(S, K, T, sigma float64) bool {
			call, err := e.Greeks(callParams(S, K, T, 0.05, sigma))
			if err != nil {
				return false
			}
			put, err := e.Greeks(putParams(S, K, T, 0.05, sigma))
			if err != nil {
				return false
			}

			return math.Abs(call.Gamma-put.Gamma) < 1e-12 &&
				math.Abs(call.Vega-put.Vega) < 1e-12
		},
		gen.Float64Range(10, 500),
		gen.Float64Range(10, 500),
		gen.Float64Range(0.01, 3),
		gen.Float64Range(0.05, 2),
	))

	properties.TestingRun(t)
}

// Property 4: Delta bounds
//
// Call delta stays in [0, 1], put delta in [-1, 0], and price never drops
// below intrinsic value.
func TestPropertyDeltaAndPriceBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	e := NewEngine()

	properties.Property("delta bounded, price >= intrinsic", prop.ForAll(
		func(S, K, T, sigma float64, isCall bool) bool {
			optType := models.Put
			if isCall {
				optType = models.Call
			}
			p := models.OptionParams{
				Spot: S, Strike: K, TimeToExpiry: T,
				Rate: 0.05, Volatility: sigma, Type: optType,
			}

			delta, err := e.Delta(p)
			if err != nil {
				return false
			}
			if isCall && (delta < 0 || delta > 1) {
				return false
			}
			if !isCall && (delta < -1 || delta > 0) {
				return false
			}

			price, err := e.Price(p)
			if err != nil {
				return false
			}
			// European puts may price slightly below undiscounted intrinsic;
			// the hard floor is the discounted one.
			return price >= e.intrinsicFloor(p)-1e-9
		},
		gen.Float64Range(10, 500),
		gen.Float64Range(10, 500),
		gen.Float64Range(0.01, 3),
		gen.Float64Range(0.05, 2),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

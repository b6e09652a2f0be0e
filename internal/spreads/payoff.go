package spreads

import (
	"math"

	"optcalc/internal/models"
)

// PayoffAt returns the strategy P&L per share at expiry for a given
// underlying price.
func PayoffAt(legs []models.Leg, price float64) float64 {
	var total float64
	for _, leg := range normalizeQuantities(legs) {
		var value float64
		if leg.Type == models.Call {
			value = math.Max(0, price-leg.Strike)
		} else {
			value = math.Max(0, leg.Strike-price)
		}
		total += leg.Side.Sign() * float64(leg.Quantity) * (value - leg.Premium)
	}
	return total
}

// CurvePoint is one sample of the expiry payoff diagram.
type CurvePoint struct {
	Price  float64 `json:"price"`
	Payoff float64 `json:"payoff"`
}

// Curve samples the expiry payoff across [low, high] in n evenly spaced
// steps. Used for rendering payoff diagrams.
func Curve(legs []models.Leg, low, high float64, n int) []CurvePoint {
	if n < 2 || high <= low {
		return nil
	}
	points := make([]CurvePoint, n)
	step := (high - low) / float64(n-1)
	for i := 0; i < n; i++ {
		price := low + float64(i)*step
		points[i] = CurvePoint{Price: price, Payoff: PayoffAt(legs, price)}
	}
	return points
}

// CurveBounds picks a plotting range that covers every strike with padding
// on both sides.
func CurveBounds(legs []models.Leg) (low, high float64) {
	low, high = math.MaxFloat64, 0
	for _, leg := range legs {
		low = math.Min(low, leg.Strike)
		high = math.Max(high, leg.Strike)
	}
	span := high - low
	if span == 0 {
		span = high * 0.2
	}
	return math.Max(0, low-span/2), high + span/2
}

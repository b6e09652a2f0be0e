package pricing

import "optcalc/internal/models"

// baseIV is the anchor for the moneyness heuristic.
const baseIV = 0.35

// EstimateIV gives a rough volatility estimate from moneyness alone, for use
// when neither a market price nor an explicit volatility is available.
// Deep in-the-money contracts trade at lower implied volatility, deep
// out-of-the-money at higher.
func EstimateIV(spot, strike float64, optType models.OptionType) float64 {
	return EstimateIVFrom(baseIV, spot, strike, optType)
}

// EstimateIVFrom applies the moneyness adjustment to a caller-supplied
// at-the-money anchor instead of the built-in one.
func EstimateIVFrom(anchor, spot, strike float64, optType models.OptionType) float64 {
	moneyness := spot / strike

	if optType == models.Call {
		switch {
		case moneyness > 1.1:
			return anchor * 0.8
		case moneyness < 0.9:
			return anchor * 1.3
		}
	} else {
		switch {
		case moneyness < 0.9:
			return anchor * 0.8
		case moneyness > 1.1:
			return anchor * 1.3
		}
	}

	return anchor
}

// Package risk computes risk statistics from historical close prices:
// volatility, parametric value at risk, maximum drawdown, and Sharpe ratio.
package risk

import (
	"math"

	"optcalc/internal/errors"
	"optcalc/internal/models"
)

const (
	// TradingDaysPerYear annualizes daily figures.
	TradingDaysPerYear = 252

	// DefaultMinReturns is the minimum number of daily returns required for a
	// meaningful estimate.
	DefaultMinReturns = 20

	// DefaultRiskFreeRate is the assumed annual risk-free rate for the
	// Sharpe ratio.
	DefaultRiskFreeRate = 0.04

	z95 = 1.645
	z99 = 2.326
)

// Calculator computes risk metrics with tunable inputs. The zero value is
// unusable; build one with NewCalculator or from configuration.
type Calculator struct {
	MinReturns   int
	RiskFreeRate float64
}

// NewCalculator returns a Calculator with the default parameters.
func NewCalculator() *Calculator {
	return &Calculator{
		MinReturns:   DefaultMinReturns,
		RiskFreeRate: DefaultRiskFreeRate,
	}
}

// Compute derives risk metrics from a daily close-price series. The series
// must be ordered oldest first. positionSize, when positive, adds
// dollar-denominated figures scaled to that notional.
func (c *Calculator) Compute(closes []float64, positionSize float64) (*models.RiskMetrics, error) {
	returns, err := dailyReturns(closes)
	if err != nil {
		return nil, err
	}
	if len(returns) < c.MinReturns {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"need at least %d daily returns, have %d", c.MinReturns, len(returns))
	}

	mean := meanOf(returns)
	dailyVol := sampleStdDev(returns, mean)
	annualVol := dailyVol * math.Sqrt(TradingDaysPerYear)

	var95 := mean - z95*dailyVol
	var99 := mean - z99*dailyVol

	maxDD, totalReturn := drawdownAndTotal(returns)

	var sharpe float64
	if annualVol > 0 {
		sharpe = (mean*TradingDaysPerYear - c.RiskFreeRate) / annualVol
	}

	metrics := &models.RiskMetrics{
		DataPoints:       len(returns),
		DailyVolatility:  dailyVol,
		AnnualVolatility: annualVol,
		VaR95Daily:       var95,
		VaR99Daily:       var99,
		MaxDrawdown:      maxDD,
		SharpeRatio:      sharpe,
		MeanDailyReturn:  mean,
		TotalReturn:      totalReturn,
	}

	if positionSize > 0 {
		metrics.Position = &models.RiskPos{
			Size:           positionSize,
			VaR95Dollar:    positionSize * math.Abs(var95),
			VaR99Dollar:    positionSize * math.Abs(var99),
			DrawdownDollar: positionSize * math.Abs(maxDD),
		}
	}

	return metrics, nil
}

// ComputeFromCandles extracts the close series and delegates to Compute.
func (c *Calculator) ComputeFromCandles(candles []models.Candle, positionSize float64) (*models.RiskMetrics, error) {
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}
	return c.Compute(closes, positionSize)
}

// dailyReturns converts a close series into simple percentage returns.
func dailyReturns(closes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "need at least 2 closes")
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			return nil, errors.NewValidationError("closes", prev, "prices must be positive")
		}
		returns = append(returns, closes[i]/prev-1)
	}
	return returns, nil
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev uses the n-1 denominator.
func sampleStdDev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// drawdownAndTotal walks the cumulative return path, tracking the deepest
// peak-to-trough decline. maxDD is non-positive.
func drawdownAndTotal(returns []float64) (maxDD, totalReturn float64) {
	cumulative := 1.0
	peak := 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		dd := (cumulative - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD, cumulative - 1
}

// Package models defines the core data types shared across the application.
package models

import "time"

// OptionType identifies a call or put contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Valid reports whether the option type is a recognized tag.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Side is the position direction of a leg.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Sign returns +1 for long positions and -1 for short positions.
func (s Side) Sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// Valid reports whether the side is a recognized tag.
func (s Side) Valid() bool {
	return s == Long || s == Short
}

// OptionParams holds the inputs for a single Black-Scholes valuation.
// TimeToExpiry is in years; Volatility and Rate are decimal fractions.
type OptionParams struct {
	Spot         float64    `json:"spot"`
	Strike       float64    `json:"strike"`
	TimeToExpiry float64    `json:"time_to_expiry"`
	Type         OptionType `json:"option_type"`
	Volatility   float64    `json:"volatility"`
	Rate         float64    `json:"rate"`
}

// Greeks holds the standard option price sensitivities.
// Theta is per calendar day; Vega and Rho are per 1% move.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// IVSolution is the result of an implied volatility solve.
// Volatility holds the best estimate even when Converged is false.
type IVSolution struct {
	Volatility float64 `json:"implied_volatility"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
}

// Valuation is the flat output record for a single-option calculation.
type Valuation struct {
	Symbol            string     `json:"symbol,omitempty"`
	Spot              float64    `json:"spot"`
	Strike            float64    `json:"strike"`
	DaysToExpiry      int        `json:"days_to_expiry"`
	Type              OptionType `json:"option_type"`
	MarketPrice       *float64   `json:"market_price,omitempty"`
	Price             float64    `json:"price"`
	ImpliedVolatility float64    `json:"implied_volatility"`
	RiskFreeRate      float64    `json:"risk_free_rate"`
	Greeks            Greeks     `json:"greeks"`
	CreatedAt         time.Time  `json:"created_at,omitempty"`
}

// Leg is a single position within a spread strategy.
type Leg struct {
	Type       OptionType `json:"type"`
	Side       Side       `json:"side"`
	Strike     float64    `json:"strike"`
	Premium    float64    `json:"premium"`
	Quantity   int        `json:"quantity"`
	Volatility float64    `json:"volatility,omitempty"` // 0 means unknown
}

// StrategyKind enumerates the supported spread strategies.
type StrategyKind string

const (
	Vertical   StrategyKind = "vertical"
	Straddle   StrategyKind = "straddle"
	Strangle   StrategyKind = "strangle"
	IronCondor StrategyKind = "iron-condor"
)

// Valid reports whether the strategy kind is supported.
func (k StrategyKind) Valid() bool {
	switch k {
	case Vertical, Straddle, Strangle, IronCondor:
		return true
	}
	return false
}

// StrategyAnalysis is the aggregate result of evaluating a spread.
// NetCost is per share: positive means debit paid, negative means credit
// received. MaxProfit and MaxLoss are nil when unbounded.
// ProbabilityOfProfit is nil when no volatility input was available.
type StrategyAnalysis struct {
	Kind                StrategyKind `json:"strategy"`
	Direction           string       `json:"direction"`
	Symbol              string       `json:"symbol,omitempty"`
	Spot                float64      `json:"spot,omitempty"`
	Legs                []Leg        `json:"legs"`
	NetCost             float64      `json:"net_cost"`
	MaxProfit           *float64     `json:"max_profit"`
	MaxLoss             *float64     `json:"max_loss"`
	Breakevens          []float64    `json:"breakevens"`
	ProbabilityOfProfit *float64     `json:"probability_of_profit"`
	CreatedAt           time.Time    `json:"created_at,omitempty"`
}

// Candle represents a single OHLCV bar, used by the risk metrics.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// RiskMetrics holds risk statistics derived from a close-price series.
type RiskMetrics struct {
	DataPoints       int      `json:"data_points"`
	DailyVolatility  float64  `json:"daily_volatility"`
	AnnualVolatility float64  `json:"annual_volatility"`
	VaR95Daily       float64  `json:"var_95_daily"`
	VaR99Daily       float64  `json:"var_99_daily"`
	MaxDrawdown      float64  `json:"max_drawdown"`
	SharpeRatio      float64  `json:"sharpe_ratio"`
	MeanDailyReturn  float64  `json:"mean_daily_return"`
	TotalReturn      float64  `json:"total_return"`
	Position         *RiskPos `json:"position,omitempty"`
}

// RiskPos holds position-sized risk figures.
type RiskPos struct {
	Size           float64 `json:"size"`
	VaR95Dollar    float64 `json:"var_95_dollar"`
	VaR99Dollar    float64 `json:"var_99_dollar"`
	DrawdownDollar float64 `json:"max_drawdown_dollar"`
}

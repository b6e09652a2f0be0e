package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optcalc/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleValuation(symbol string) *models.Valuation {
	mp := 12.50
	return &models.Valuation{
		Symbol:            symbol,
		Spot:              630,
		Strike:            600,
		DaysToExpiry:      30,
		Type:              models.Call,
		MarketPrice:       &mp,
		Price:             40.02,
		ImpliedVolatility: 0.42,
		RiskFreeRate:      0.05,
		Greeks: models.Greeks{
			Delta: 0.75, Gamma: 0.012, Theta: -0.15, Vega: 0.45, Rho: 0.32,
		},
	}
}

func TestSaveAndListValuations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveValuation(ctx, sampleValuation("SPY")))
	require.NoError(t, s.SaveValuation(ctx, sampleValuation("QQQ")))

	all, err := s.ListValuations(ctx, ValuationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	got := all[0]
	assert.Equal(t, 630.0, got.Spot)
	assert.Equal(t, models.Call, got.Type)
	require.NotNil(t, got.MarketPrice)
	assert.Equal(t, 12.50, *got.MarketPrice)
	assert.Equal(t, 0.75, got.Greeks.Delta)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestListValuationsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveValuation(ctx, sampleValuation("SPY")))
	put := sampleValuation("SPY")
	put.Type = models.Put
	require.NoError(t, s.SaveValuation(ctx, put))
	require.NoError(t, s.SaveValuation(ctx, sampleValuation("QQQ")))

	bySymbol, err := s.ListValuations(ctx, ValuationFilter{Symbol: "SPY"})
	require.NoError(t, err)
	assert.Len(t, bySymbol, 2)

	byType, err := s.ListValuations(ctx, ValuationFilter{Symbol: "SPY", Type: models.Put})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, models.Put, byType[0].Type)

	limited, err := s.ListValuations(ctx, ValuationFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSaveAndListStrategyAnalyses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	maxProfit, maxLoss, pop := 7.0, 3.0, 0.42
	analysis := &models.StrategyAnalysis{
		Kind:      models.Vertical,
		Direction: "bullish",
		Symbol:    "SPY",
		Spot:      100,
		Legs: []models.Leg{
			{Type: models.Call, Side: models.Long, Strike: 100, Premium: 5, Quantity: 1},
			{Type: models.Call, Side: models.Short, Strike: 110, Premium: 2, Quantity: 1},
		},
		NetCost:             3.0,
		MaxProfit:           &maxProfit,
		MaxLoss:             &maxLoss,
		Breakevens:          []float64{103},
		ProbabilityOfProfit: &pop,
	}
	require.NoError(t, s.SaveStrategyAnalysis(ctx, analysis))

	// Unbounded profit stores as NULL and round-trips as nil.
	straddle := &models.StrategyAnalysis{
		Kind: models.Straddle,
		Legs: []models.Leg{
			{Type: models.Call, Side: models.Long, Strike: 100, Premium: 4, Quantity: 1},
			{Type: models.Put, Side: models.Long, Strike: 100, Premium: 3, Quantity: 1},
		},
		NetCost:    7.0,
		MaxLoss:    &maxLoss,
		Breakevens: []float64{93, 107},
	}
	require.NoError(t, s.SaveStrategyAnalysis(ctx, straddle))

	all, err := s.ListStrategyAnalyses(ctx, StrategyFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	verticals, err := s.ListStrategyAnalyses(ctx, StrategyFilter{Kind: models.Vertical})
	require.NoError(t, err)
	require.Len(t, verticals, 1)

	got := verticals[0]
	assert.Equal(t, "bullish", got.Direction)
	require.Len(t, got.Legs, 2)
	assert.Equal(t, models.Short, got.Legs[1].Side)
	assert.Equal(t, []float64{103}, got.Breakevens)
	require.NotNil(t, got.MaxProfit)
	assert.Equal(t, 7.0, *got.MaxProfit)
	require.NotNil(t, got.ProbabilityOfProfit)
	assert.Equal(t, 0.42, *got.ProbabilityOfProfit)

	straddles, err := s.ListStrategyAnalyses(ctx, StrategyFilter{Kind: models.Straddle})
	require.NoError(t, err)
	require.Len(t, straddles, 1)
	assert.Nil(t, straddles[0].MaxProfit)
	require.NotNil(t, straddles[0].MaxLoss)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveValuation(ctx, sampleValuation("SPY")))
	require.NoError(t, s.SaveStrategyAnalysis(ctx, &models.StrategyAnalysis{
		Kind:       models.Strangle,
		Legs:       []models.Leg{},
		Breakevens: []float64{},
	}))

	require.NoError(t, s.Clear(ctx))

	vals, err := s.ListValuations(ctx, ValuationFilter{})
	require.NoError(t, err)
	assert.Empty(t, vals)

	strats, err := s.ListStrategyAnalyses(ctx, StrategyFilter{})
	require.NoError(t, err)
	assert.Empty(t, strats)
}

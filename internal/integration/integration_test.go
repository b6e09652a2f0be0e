// Package integration provides end-to-end tests across the calculator's
// pricing, spreads, and persistence layers.
package integration

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"optcalc/internal/models"
	"optcalc/internal/pricing"
	"optcalc/internal/spreads"
	"optcalc/internal/store"
)

// TestValuationWorkflow runs the full single-option flow: solve implied
// volatility from a market price, price and compute Greeks at that
// volatility, and journal the result.
func TestValuationWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	engine := pricing.NewEngine()

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer dataStore.Close()

	params := models.OptionParams{
		Spot:         630,
		Strike:       600,
		TimeToExpiry: 30.0 / 365,
		Type:         models.Call,
		Rate:         0.05,
	}
	marketPrice := 40.00

	sol, err := engine.SolveImpliedVol(params, marketPrice)
	if err != nil {
		t.Fatalf("SolveImpliedVol: %v", err)
	}
	if !sol.Converged {
		t.Fatalf("solver did not converge: %+v", sol)
	}

	params.Volatility = sol.Volatility
	price, err := engine.Price(params)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if math.Abs(price-marketPrice) > 1e-4 {
		t.Errorf("repriced at implied vol = %v, want ~%v", price, marketPrice)
	}

	greeks, err := engine.Greeks(params)
	if err != nil {
		t.Fatalf("Greeks: %v", err)
	}
	if greeks.Delta <= 0.5 || greeks.Delta > 1 {
		t.Errorf("ITM call delta = %v, want in (0.5, 1]", greeks.Delta)
	}

	valuation := &models.Valuation{
		Symbol:            "SPY",
		Spot:              params.Spot,
		Strike:            params.Strike,
		DaysToExpiry:      30,
		Type:              params.Type,
		MarketPrice:       &marketPrice,
		Price:             price,
		ImpliedVolatility: sol.Volatility,
		RiskFreeRate:      params.Rate,
		Greeks:            greeks,
	}
	if err := dataStore.SaveValuation(ctx, valuation); err != nil {
		t.Fatalf("SaveValuation: %v", err)
	}

	saved, err := dataStore.ListValuations(ctx, store.ValuationFilter{Symbol: "SPY"})
	if err != nil {
		t.Fatalf("ListValuations: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("journal has %d valuations, want 1", len(saved))
	}
	if math.Abs(saved[0].ImpliedVolatility-sol.Volatility) > 1e-12 {
		t.Errorf("journaled IV = %v, want %v", saved[0].ImpliedVolatility, sol.Volatility)
	}
}

// TestSpreadWorkflow evaluates a strategy with per-leg volatilities taken
// from the solver and journals the analysis.
func TestSpreadWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	engine := pricing.NewEngine()
	evaluator := spreads.NewEvaluator(engine)

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer dataStore.Close()

	// Price both legs at a known volatility so the premiums are consistent
	// with the model.
	const (
		spot  = 100.0
		vol   = 0.25
		tYrs  = 30.0 / 365
		rate  = 0.05
		longK = 100.0
		shrtK = 110.0
	)

	longPremium, err := engine.Price(models.OptionParams{
		Spot: spot, Strike: longK, TimeToExpiry: tYrs,
		Type: models.Call, Volatility: vol, Rate: rate,
	})
	if err != nil {
		t.Fatalf("pricing long leg: %v", err)
	}
	shortPremium, err := engine.Price(models.OptionParams{
		Spot: spot, Strike: shrtK, TimeToExpiry: tYrs,
		Type: models.Call, Volatility: vol, Rate: rate,
	})
	if err != nil {
		t.Fatalf("pricing short leg: %v", err)
	}

	analysis, err := evaluator.Evaluate(spreads.Input{
		Kind:         models.Vertical,
		Symbol:       "SPY",
		Spot:         spot,
		TimeToExpiry: tYrs,
		Volatility:   vol,
		Legs: []models.Leg{
			{Type: models.Call, Side: models.Long, Strike: longK, Premium: longPremium, Quantity: 1},
			{Type: models.Call, Side: models.Short, Strike: shrtK, Premium: shortPremium, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	debit := longPremium - shortPremium
	if math.Abs(analysis.NetCost-debit) > 1e-12 {
		t.Errorf("net cost = %v, want %v", analysis.NetCost, debit)
	}
	if analysis.Direction != "bullish" {
		t.Errorf("direction = %q, want bullish", analysis.Direction)
	}
	if analysis.ProbabilityOfProfit == nil {
		t.Fatal("expected probability of profit with spot, time, and vol set")
	}
	if p := *analysis.ProbabilityOfProfit; p <= 0 || p >= 1 {
		t.Errorf("probability of profit = %v, want in (0, 1)", p)
	}

	if err := dataStore.SaveStrategyAnalysis(ctx, analysis); err != nil {
		t.Fatalf("SaveStrategyAnalysis: %v", err)
	}

	saved, err := dataStore.ListStrategyAnalyses(ctx, store.StrategyFilter{Kind: models.Vertical})
	if err != nil {
		t.Fatalf("ListStrategyAnalyses: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("journal has %d strategies, want 1", len(saved))
	}
	if len(saved[0].Legs) != 2 {
		t.Errorf("journaled legs = %d, want 2", len(saved[0].Legs))
	}
	if len(saved[0].Breakevens) != 1 {
		t.Fatalf("journaled breakevens = %v, want one entry", saved[0].Breakevens)
	}
	wantBE := longK + debit
	if math.Abs(saved[0].Breakevens[0]-wantBE) > 1e-9 {
		t.Errorf("breakeven = %v, want %v", saved[0].Breakevens[0], wantBE)
	}
}

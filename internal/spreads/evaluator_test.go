package spreads

import (
	"math"
	"testing"

	"optcalc/internal/errors"
	"optcalc/internal/models"
)

func leg(t models.OptionType, s models.Side, strike, premium float64) models.Leg {
	return models.Leg{Type: t, Side: s, Strike: strike, Premium: premium, Quantity: 1}
}

func TestEvaluateBullCallSpread(t *testing.T) {
	// Long 100 call @ 5.00, short 110 call @ 2.00: 3.00 net debit.
	ev := NewEvaluator(nil)
	analysis, err := ev.Evaluate(Input{
		Kind: models.Vertical,
		Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 5.00),
			leg(models.Call, models.Short, 110, 2.00),
		},
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if analysis.Direction != "bullish" {
		t.Errorf("direction = %q, want bullish", analysis.Direction)
	}
	if analysis.NetCost != 3.00 {
		t.Errorf("net cost = %.2f, want 3.00", analysis.NetCost)
	}
	if *analysis.MaxProfit != 7.00 {
		t.Errorf("max profit = %.2f, want 7.00", *analysis.MaxProfit)
	}
	if *analysis.MaxLoss != 3.00 {
		t.Errorf("max loss = %.2f, want 3.00", *analysis.MaxLoss)
	}
	if len(analysis.Breakevens) != 1 || analysis.Breakevens[0] != 103.00 {
		t.Errorf("breakevens = %v, want [103.00]", analysis.Breakevens)
	}
}

func TestEvaluateBearCallSpread(t *testing.T) {
	// Short 100 call @ 5.00, long 110 call @ 2.00: 3.00 net credit.
	ev := NewEvaluator(nil)
	analysis, err := ev.Evaluate(Input{
		Kind: models.Vertical,
		Legs: []models.Leg{
			leg(models.Call, models.Long, 110, 2.00),
			leg(models.Call, models.Short, 100, 5.00),
		},
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if analysis.Direction != "bearish" {
		t.Errorf("direction = %q, want bearish", analysis.Direction)
	}
	if analysis.NetCost != -3.00 {
		t.Errorf("net cost = %.2f, want -3.00", analysis.NetCost)
	}
	if *analysis.MaxProfit != 3.00 {
		t.Errorf("max profit = %.2f, want 3.00", *analysis.MaxProfit)
	}
	if *analysis.MaxLoss != 7.00 {
		t.Errorf("max loss = %.2f, want 7.00", *analysis.MaxLoss)
	}
	if analysis.Breakevens[0] != 103.00 {
		t.Errorf("breakeven = %.2f, want 103.00", analysis.Breakevens[0])
	}
}

func TestEvaluateBearPutSpread(t *testing.T) {
	// Long 110 put @ 6.00, short 100 put @ 2.50: 3.50 net debit.
	ev := NewEvaluator(nil)
	analysis, err := ev.Evaluate(Input{
		Kind: models.Vertical,
		Legs: []models.Leg{
			leg(models.Put, models.Long, 110, 6.00),
			leg(models.Put, models.Short, 100, 2.50),
		},
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if analysis.Direction != "bearish" {
		t.Errorf("direction = %q, want bearish", analysis.Direction)
	}
	if *analysis.MaxProfit != 6.50 {
		t.Errorf("max profit = %.2f, want 6.50", *analysis.MaxProfit)
	}
	if *analysis.MaxLoss != 3.50 {
		t.Errorf("max loss = %.2f, want 3.50", *analysis.MaxLoss)
	}
	if analysis.Breakevens[0] != 106.50 {
		t.Errorf("breakeven = %.2f, want 106.50", analysis.Breakevens[0])
	}
}

func TestEvaluateLongStraddle(t *testing.T) {
	// Long 100 call @ 4.00 + long 100 put @ 3.50: 7.50 total cost.
	ev := NewEvaluator(nil)
	analysis, err := ev.Evaluate(Input{
		Kind: models.Straddle,
		Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 4.00),
			leg(models.Put, models.Long, 100, 3.50),
		},
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if analysis.MaxProfit != nil {
		t.Errorf("long straddle max profit should be unlimited (nil), got %v", *analysis.MaxProfit)
	}
	if *analysis.MaxLoss != 7.50 {
		t.Errorf("max loss = %.2f, want 7.50", *analysis.MaxLoss)
	}
	want := []float64{92.50, 107.50}
	for i, be := range analysis.Breakevens {
		if be != want[i] {
			t.Errorf("breakevens = %v, want %v", analysis.Breakevens, want)
			break
		}
	}
}

func TestEvaluateShortStrangle(t *testing.T) {
	// Short 90 put @ 2.00 + short 110 call @ 2.50: 4.50 credit.
	ev := NewEvaluator(nil)
	analysis, err := ev.Evaluate(Input{
		Kind: models.Strangle,
		Legs: []models.Leg{
			leg(models.Put, models.Short, 90, 2.00),
			leg(models.Call, models.Short, 110, 2.50),
		},
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if analysis.MaxLoss != nil {
		t.Errorf("short strangle max loss should be unlimited (nil), got %v", *analysis.MaxLoss)
	}
	if *analysis.MaxProfit != 4.50 {
		t.Errorf("max profit = %.2f, want 4.50", *analysis.MaxProfit)
	}
	if analysis.Breakevens[0] != 85.50 || analysis.Breakevens[1] != 114.50 {
		t.Errorf("breakevens = %v, want [85.50 114.50]", analysis.Breakevens)
	}
}

func TestEvaluateIronCondor(t *testing.T) {
	// Long put 90 @ 0.80, short put 95 @ 1.90, short call 105 @ 1.90,
	// long call 110 @ 1.00: 2.00 net credit.
	ev := NewEvaluator(nil)
	analysis, err := ev.Evaluate(Input{
		Kind: models.IronCondor,
		Legs: []models.Leg{
			leg(models.Put, models.Long, 90, 0.80),
			leg(models.Put, models.Short, 95, 1.90),
			leg(models.Call, models.Short, 105, 1.90),
			leg(models.Call, models.Long, 110, 1.00),
		},
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if math.Abs(analysis.NetCost-(-2.00)) > 1e-9 {
		t.Errorf("net cost = %.2f, want -2.00 (credit)", analysis.NetCost)
	}
	if math.Abs(*analysis.MaxProfit-2.00) > 1e-9 {
		t.Errorf("max profit = %.2f, want 2.00", *analysis.MaxProfit)
	}
	// Wing width 5.00 minus the 2.00 credit.
	if math.Abs(*analysis.MaxLoss-3.00) > 1e-9 {
		t.Errorf("max loss = %.2f, want 3.00", *analysis.MaxLoss)
	}
	if math.Abs(analysis.Breakevens[0]-93.00) > 1e-9 || math.Abs(analysis.Breakevens[1]-107.00) > 1e-9 {
		t.Errorf("breakevens = %v, want [93.00 107.00]", analysis.Breakevens)
	}
}

func TestEvaluateInvalidStrategies(t *testing.T) {
	ev := NewEvaluator(nil)
	tests := []struct {
		name string
		in   Input
	}{
		{"unknown kind", Input{Kind: "butterfly", Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 1),
		}}},
		{"vertical one leg", Input{Kind: models.Vertical, Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 1),
		}}},
		{"vertical mixed types", Input{Kind: models.Vertical, Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 1),
			leg(models.Put, models.Short, 110, 1),
		}}},
		{"vertical same direction", Input{Kind: models.Vertical, Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 1),
			leg(models.Call, models.Long, 110, 1),
		}}},
		{"vertical same strike", Input{Kind: models.Vertical, Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 1),
			leg(models.Call, models.Short, 100, 1),
		}}},
		{"straddle different strikes", Input{Kind: models.Straddle, Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 1),
			leg(models.Put, models.Long, 105, 1),
		}}},
		{"strangle inverted strikes", Input{Kind: models.Strangle, Legs: []models.Leg{
			leg(models.Put, models.Long, 110, 1),
			leg(models.Call, models.Long, 100, 1),
		}}},
		{"condor three legs", Input{Kind: models.IronCondor, Legs: []models.Leg{
			leg(models.Put, models.Long, 90, 1),
			leg(models.Put, models.Short, 95, 1),
			leg(models.Call, models.Short, 105, 1),
		}}},
		{"condor shorts outside wings", Input{Kind: models.IronCondor, Legs: []models.Leg{
			leg(models.Put, models.Short, 90, 1),
			leg(models.Put, models.Long, 95, 1),
			leg(models.Call, models.Long, 105, 1),
			leg(models.Call, models.Short, 110, 1),
		}}},
		{"negative strike", Input{Kind: models.Vertical, Legs: []models.Leg{
			leg(models.Call, models.Long, -100, 1),
			leg(models.Call, models.Short, 110, 1),
		}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ev.Evaluate(tc.in); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEvaluateUnknownStrategySentinel(t *testing.T) {
	ev := NewEvaluator(nil)
	_, err := ev.Evaluate(Input{Kind: "calendar", Legs: []models.Leg{
		leg(models.Call, models.Long, 100, 1),
	}})
	if !errors.Is(err, errors.ErrUnknownStrategy) {
		t.Errorf("want ErrUnknownStrategy, got %v", err)
	}
}

func TestProbabilityOfProfit(t *testing.T) {
	ev := NewEvaluator(nil)

	legs := []models.Leg{
		leg(models.Call, models.Long, 100, 5.00),
		leg(models.Call, models.Short, 110, 2.00),
	}
	legs[0].Volatility = 0.25

	withVol, err := ev.Evaluate(Input{
		Kind: models.Vertical, Spot: 100, TimeToExpiry: 30.0 / 365, Legs: legs,
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if withVol.ProbabilityOfProfit == nil {
		t.Fatal("probability of profit missing despite volatility input")
	}
	if p := *withVol.ProbabilityOfProfit; p <= 0 || p >= 1 {
		t.Errorf("probability = %.4f, want in (0, 1)", p)
	}
}

func TestProbabilityOfProfitOmittedWithoutVol(t *testing.T) {
	ev := NewEvaluator(nil)
	analysis, err := ev.Evaluate(Input{
		Kind: models.Vertical,
		Spot: 100, TimeToExpiry: 30.0 / 365,
		Legs: []models.Leg{
			leg(models.Call, models.Long, 100, 5.00),
			leg(models.Call, models.Short, 110, 2.00),
		},
	})
	if err != nil {
		t.Fatalf("missing volatility must not fail the evaluation: %v", err)
	}
	if analysis.ProbabilityOfProfit != nil {
		t.Errorf("probability should be omitted without volatility, got %v", *analysis.ProbabilityOfProfit)
	}
	if analysis.MaxProfit == nil || analysis.MaxLoss == nil || len(analysis.Breakevens) == 0 {
		t.Error("cost/profit/loss/breakeven must still be computed")
	}
}

func TestProbabilityOfProfitOverride(t *testing.T) {
	ev := NewEvaluator(nil)
	in := Input{
		Kind: models.IronCondor,
		Spot: 100, TimeToExpiry: 45.0 / 365, Volatility: 0.20,
		Legs: []models.Leg{
			leg(models.Put, models.Long, 90, 0.80),
			leg(models.Put, models.Short, 95, 1.90),
			leg(models.Call, models.Short, 105, 1.90),
			leg(models.Call, models.Long, 110, 1.00),
		},
	}

	analysis, err := ev.Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if analysis.ProbabilityOfProfit == nil {
		t.Fatal("probability missing despite explicit volatility override")
	}

	// A condor centered on spot should be more likely than not to profit
	// with moderate volatility.
	if p := *analysis.ProbabilityOfProfit; p < 0.5 || p > 1 {
		t.Errorf("centered condor probability = %.4f, want >= 0.5", p)
	}
}

func TestPayoffAt(t *testing.T) {
	legs := []models.Leg{
		leg(models.Call, models.Long, 100, 5.00),
		leg(models.Call, models.Short, 110, 2.00),
	}

	tests := []struct {
		price float64
		want  float64
	}{
		{90, -3.00}, // both expire worthless, lose the debit
		{103, 0},    // breakeven
		{110, 7.00}, // max profit at the short strike
		{150, 7.00}, // capped above
	}
	for _, tc := range tests {
		if got := PayoffAt(legs, tc.price); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("PayoffAt(%.0f) = %.2f, want %.2f", tc.price, got, tc.want)
		}
	}
}

func TestCurve(t *testing.T) {
	legs := []models.Leg{
		leg(models.Call, models.Long, 100, 5.00),
		leg(models.Call, models.Short, 110, 2.00),
	}

	points := Curve(legs, 80, 130, 51)
	if len(points) != 51 {
		t.Fatalf("got %d points, want 51", len(points))
	}
	if points[0].Price != 80 || points[50].Price != 130 {
		t.Errorf("curve endpoints = %.2f, %.2f; want 80, 130", points[0].Price, points[50].Price)
	}

	low, high := CurveBounds(legs)
	if low >= 100 || high <= 110 {
		t.Errorf("bounds (%.2f, %.2f) should pad beyond the strikes", low, high)
	}
}

// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"optcalc/internal/models"
)

// DataStore defines the interface for the calculation journal.
type DataStore interface {
	// Valuations
	SaveValuation(ctx context.Context, v *models.Valuation) error
	ListValuations(ctx context.Context, filter ValuationFilter) ([]models.Valuation, error)

	// Strategy analyses
	SaveStrategyAnalysis(ctx context.Context, a *models.StrategyAnalysis) error
	ListStrategyAnalyses(ctx context.Context, filter StrategyFilter) ([]models.StrategyAnalysis, error)

	// Maintenance
	Clear(ctx context.Context) error

	// Lifecycle
	Close() error
}

// ValuationFilter represents filters for querying saved valuations.
type ValuationFilter struct {
	Symbol    string
	Type      models.OptionType
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// StrategyFilter represents filters for querying saved strategy analyses.
type StrategyFilter struct {
	Symbol    string
	Kind      models.StrategyKind
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

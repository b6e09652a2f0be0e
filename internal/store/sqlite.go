package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"optcalc/internal/errors"
	"optcalc/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based journal store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Single-option valuations
	CREATE TABLE IF NOT EXISTS valuations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT,
		spot REAL NOT NULL,
		strike REAL NOT NULL,
		days_to_expiry INTEGER NOT NULL,
		option_type TEXT NOT NULL,
		market_price REAL,
		price REAL NOT NULL,
		implied_volatility REAL NOT NULL,
		risk_free_rate REAL NOT NULL,
		delta REAL NOT NULL,
		gamma REAL NOT NULL,
		theta REAL NOT NULL,
		vega REAL NOT NULL,
		rho REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_valuations_symbol ON valuations(symbol);
	CREATE INDEX IF NOT EXISTS idx_valuations_created ON valuations(created_at);

	-- Spread strategy analyses; legs and breakevens stored as JSON
	CREATE TABLE IF NOT EXISTS strategies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		direction TEXT,
		symbol TEXT,
		spot REAL,
		legs TEXT NOT NULL,
		net_cost REAL NOT NULL,
		max_profit REAL,
		max_loss REAL,
		breakevens TEXT NOT NULL,
		probability_of_profit REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_strategies_kind ON strategies(kind);
	CREATE INDEX IF NOT EXISTS idx_strategies_created ON strategies(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveValuation records a single-option calculation.
func (s *SQLiteStore) SaveValuation(ctx context.Context, v *models.Valuation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO valuations (
			symbol, spot, strike, days_to_expiry, option_type, market_price,
			price, implied_volatility, risk_free_rate,
			delta, gamma, theta, vega, rho
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Symbol, v.Spot, v.Strike, v.DaysToExpiry, string(v.Type), v.MarketPrice,
		v.Price, v.ImpliedVolatility, v.RiskFreeRate,
		v.Greeks.Delta, v.Greeks.Gamma, v.Greeks.Theta, v.Greeks.Vega, v.Greeks.Rho,
	)
	if err != nil {
		return errors.NewStoreError("save valuation", err)
	}
	return nil
}

// ListValuations returns saved valuations, newest first.
func (s *SQLiteStore) ListValuations(ctx context.Context, filter ValuationFilter) ([]models.Valuation, error) {
	query := `
		SELECT symbol, spot, strike, days_to_expiry, option_type, market_price,
			price, implied_volatility, risk_free_rate,
			delta, gamma, theta, vega, rho, created_at
		FROM valuations`

	conds, args := valuationConds(filter)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("list valuations", err)
	}
	defer rows.Close()

	var out []models.Valuation
	for rows.Next() {
		var v models.Valuation
		var symbol sql.NullString
		var marketPrice sql.NullFloat64
		var optType string
		if err := rows.Scan(
			&symbol, &v.Spot, &v.Strike, &v.DaysToExpiry, &optType, &marketPrice,
			&v.Price, &v.ImpliedVolatility, &v.RiskFreeRate,
			&v.Greeks.Delta, &v.Greeks.Gamma, &v.Greeks.Theta, &v.Greeks.Vega, &v.Greeks.Rho,
			&v.CreatedAt,
		); err != nil {
			return nil, errors.NewStoreError("scan valuation", err)
		}
		v.Symbol = symbol.String
		v.Type = models.OptionType(optType)
		if marketPrice.Valid {
			mp := marketPrice.Float64
			v.MarketPrice = &mp
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func valuationConds(filter ValuationFilter) (conds []string, args []interface{}) {
	if filter.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Type != "" {
		conds = append(conds, "option_type = ?")
		args = append(args, string(filter.Type))
	}
	if !filter.StartDate.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.EndDate)
	}
	return conds, args
}

// SaveStrategyAnalysis records a spread evaluation.
func (s *SQLiteStore) SaveStrategyAnalysis(ctx context.Context, a *models.StrategyAnalysis) error {
	legs, err := json.Marshal(a.Legs)
	if err != nil {
		return errors.NewStoreError("marshal legs", err)
	}
	breakevens, err := json.Marshal(a.Breakevens)
	if err != nil {
		return errors.NewStoreError("marshal breakevens", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO strategies (
			kind, direction, symbol, spot, legs, net_cost,
			max_profit, max_loss, breakevens, probability_of_profit
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(a.Kind), a.Direction, a.Symbol, a.Spot, string(legs), a.NetCost,
		a.MaxProfit, a.MaxLoss, string(breakevens), a.ProbabilityOfProfit,
	)
	if err != nil {
		return errors.NewStoreError("save strategy", err)
	}
	return nil
}

// ListStrategyAnalyses returns saved strategy analyses, newest first.
func (s *SQLiteStore) ListStrategyAnalyses(ctx context.Context, filter StrategyFilter) ([]models.StrategyAnalysis, error) {
	query := `
		SELECT kind, direction, symbol, spot, legs, net_cost,
			max_profit, max_loss, breakevens, probability_of_profit, created_at
		FROM strategies`

	var conds []string
	var args []interface{}
	if filter.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if !filter.StartDate.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.EndDate)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("list strategies", err)
	}
	defer rows.Close()

	var out []models.StrategyAnalysis
	for rows.Next() {
		var a models.StrategyAnalysis
		var kind, legsJSON, breakevensJSON string
		var direction, symbol sql.NullString
		var spot, maxProfit, maxLoss, pop sql.NullFloat64
		if err := rows.Scan(
			&kind, &direction, &symbol, &spot, &legsJSON, &a.NetCost,
			&maxProfit, &maxLoss, &breakevensJSON, &pop, &a.CreatedAt,
		); err != nil {
			return nil, errors.NewStoreError("scan strategy", err)
		}

		a.Kind = models.StrategyKind(kind)
		a.Direction = direction.String
		a.Symbol = symbol.String
		a.Spot = spot.Float64
		if maxProfit.Valid {
			v := maxProfit.Float64
			a.MaxProfit = &v
		}
		if maxLoss.Valid {
			v := maxLoss.Float64
			a.MaxLoss = &v
		}
		if pop.Valid {
			v := pop.Float64
			a.ProbabilityOfProfit = &v
		}
		if err := json.Unmarshal([]byte(legsJSON), &a.Legs); err != nil {
			return nil, errors.NewStoreError("unmarshal legs", err)
		}
		if err := json.Unmarshal([]byte(breakevensJSON), &a.Breakevens); err != nil {
			return nil, errors.NewStoreError("unmarshal breakevens", err)
		}

		out = append(out, a)
	}
	return out, rows.Err()
}

// Clear removes all journal entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM valuations"); err != nil {
		return errors.NewStoreError("clear valuations", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM strategies"); err != nil {
		return errors.NewStoreError("clear strategies", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrArbitrageInconsistent is returned when a market price sits at or
	// below the discounted intrinsic floor, so no volatility can explain it.
	ErrArbitrageInconsistent = errors.New("market price below intrinsic value")
	// ErrUnknownStrategy is returned for an unrecognized strategy kind.
	ErrUnknownStrategy = errors.New("unknown strategy kind")
	// ErrUnknownOptionType is returned for an unrecognized option type tag.
	ErrUnknownOptionType = errors.New("unknown option type")
	// ErrInsufficientData is returned when a series is too short to analyze.
	ErrInsufficientData = errors.New("insufficient data for calculation")
	// ErrConfigInvalid is returned for invalid configuration values.
	ErrConfigInvalid = errors.New("invalid configuration")
	// ErrDataNotFound is returned when a journal lookup finds nothing.
	ErrDataNotFound = errors.New("data not found")
)

// ValidationError represents an invalid caller input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NotConvergedError is returned when the implied volatility solver exhausts
// its iteration budget. BestEstimate carries the last sigma reached so the
// caller can distinguish a near miss from garbage.
type NotConvergedError struct {
	BestEstimate float64
	Iterations   int
	Residual     float64
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("solver did not converge after %d iterations (best estimate %.6f, residual %.6g)",
		e.Iterations, e.BestEstimate, e.Residual)
}

// NewNotConvergedError creates a new NotConvergedError.
func NewNotConvergedError(bestEstimate float64, iterations int, residual float64) *NotConvergedError {
	return &NotConvergedError{
		BestEstimate: bestEstimate,
		Iterations:   iterations,
		Residual:     residual,
	}
}

// StrategyError represents an invalid leg combination for a strategy.
type StrategyError struct {
	Kind    string
	Message string
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("invalid %s strategy: %s", e.Kind, e.Message)
}

// NewStrategyError creates a new StrategyError.
func NewStrategyError(kind, message string) *StrategyError {
	return &StrategyError{
		Kind:    kind,
		Message: message,
	}
}

// StoreError represents a journal persistence error.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Err:       err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

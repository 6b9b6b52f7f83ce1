package report

import (
	"errors"
	"fmt"
)

// Causes wrapped by MetricComputationError.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrSchemaMismatch   = errors.New("reference and current schemas differ")
	ErrColumnMissing    = errors.New("column missing from data")
)

// UnknownKindError indicates a report name outside the fixed menu.
type UnknownKindError struct{ Name string }

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown report kind %q", e.Name)
}

// InvalidColumnError indicates the chosen column is not in the table.
type InvalidColumnError struct {
	Kind   Kind
	Column string
}

func (e *InvalidColumnError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s requires a column", e.Kind)
	}
	return fmt.Sprintf("column %q not found for %s", e.Column, e.Kind)
}

// MetricComputationError indicates the engine could not compute the report
// from the data it was given.
type MetricComputationError struct {
	Kind Kind
	Err  error
}

func (e *MetricComputationError) Error() string {
	return fmt.Sprintf("compute %s: %v", e.Kind, e.Err)
}

func (e *MetricComputationError) Unwrap() error { return e.Err }

func computeErr(k Kind, format string, args ...any) error {
	return &MetricComputationError{Kind: k, Err: fmt.Errorf(format, args...)}
}

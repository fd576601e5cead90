package ident

import (
	"errors"
	"fmt"
)

// Domain errors for identification operations.
var (
	// ErrInvalidDimension indicates a shape or size precondition was violated.
	ErrInvalidDimension = errors.New("ident: invalid dimension")

	// ErrInsufficientData indicates too few samples for the requested model order.
	ErrInsufficientData = errors.New("ident: insufficient data for model order")

	// ErrDegenerateEmbedding indicates the embedding collapsed to rank zero.
	ErrDegenerateEmbedding = errors.New("ident: degenerate embedding (rank collapse)")

	// ErrNotConverged indicates an iteration budget was exhausted before the tolerance was met.
	ErrNotConverged = errors.New("ident: iteration budget exhausted before convergence")

	// ErrNonGeneric indicates a total least squares problem without a generic solution.
	ErrNonGeneric = errors.New("ident: total least squares problem is non-generic")
)

// DimensionError wraps ErrInvalidDimension with the operation and sizes involved.
type DimensionError struct {
	Op     string
	Detail string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidDimension.Error(), e.Op, e.Detail)
}

func (e *DimensionError) Unwrap() error {
	return ErrInvalidDimension
}

// Dimension builds a DimensionError with a formatted detail message.
func Dimension(op, format string, args ...any) error {
	return &DimensionError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// InsufficientData wraps ErrInsufficientData with sample and parameter counts.
func InsufficientData(op string, rows, params int) error {
	return fmt.Errorf("%s: %d usable rows for %d parameters: %w", op, rows, params, ErrInsufficientData)
}

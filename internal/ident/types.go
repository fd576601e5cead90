package ident

import (
	"fmt"
	"math"
)

// Status is the outcome of an iterative stage.
type Status int

const (
	Converged Status = iota
	NotConverged
	Degenerate
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case NotConverged:
		return "not_converged"
	case Degenerate:
		return "degenerate"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Err returns the recoverable sentinel matching s, or nil when converged.
// It is informational only: a non-nil value never invalidates a result.
func (s Status) Err() error {
	switch s {
	case NotConverged:
		return ErrNotConverged
	case Degenerate:
		return ErrDegenerateEmbedding
	default:
		return nil
	}
}

// Stop is the stopping criterion injected into fixed-point iterations.
type Stop struct {
	MaxIter int
	Tol     float64
}

func (s Stop) Validate() error {
	if s.MaxIter < 1 {
		return Dimension("stop", "max iterations must be >= 1, got %d", s.MaxIter)
	}
	if s.Tol < 0 || math.IsNaN(s.Tol) {
		return Dimension("stop", "tolerance must be >= 0, got %g", s.Tol)
	}
	return nil
}

// Done reports whether iteration iter (1-based) with the given change ends
// the loop, and with which status.
func (s Stop) Done(iter int, change float64) (bool, Status) {
	if change < s.Tol {
		return true, Converged
	}
	if iter >= s.MaxIter {
		return true, NotConverged
	}
	return false, NotConverged
}

// Report summarises an iterative stage.
type Report struct {
	Status     Status
	Iterations int
	Residual   float64
}

func (r Report) String() string {
	return fmt.Sprintf("%s after %d iterations (residual %.3g)", r.Status, r.Iterations, r.Residual)
}

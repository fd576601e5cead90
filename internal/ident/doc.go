// Package ident provides the primitives shared by every identification stage.
//
// The package defines the error taxonomy and the iteration contract used by
// the decomposer and the robust estimator:
//
//   - [Stop]: injected stopping criterion (iteration budget, tolerance)
//   - [Status]: outcome of an iterative stage (converged, not converged, degenerate)
//   - [Report]: status plus iteration count and final residual
//
// # Fatal and recoverable conditions
//
// Shape and sample-count violations ([ErrInvalidDimension], [ErrInsufficientData])
// are returned as errors. Convergence conditions are never errors; they are
// carried in a [Report] so that a sweep can record them per point:
//
//	res, err := rpca.Decompose(H)
//	if err != nil {
//	    return err // structural problem
//	}
//	if res.Status != ident.Converged {
//	    // best-effort result, decide whether to retry with a larger budget
//	}
package ident

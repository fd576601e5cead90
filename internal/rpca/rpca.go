package rpca

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/logging"
	"github.com/san-kum/sysid/internal/tseries"
)

// Result holds the decomposition H ≈ L + S.
type Result struct {
	L, S *mat.Dense
	ident.Report
	// Rank is the number of singular values kept in the final L update.
	Rank int
}

// Decompose splits H into a low-rank L and a sparse S.
func Decompose(H mat.Matrix, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	m, n := H.Dims()
	if m == 0 || n == 0 {
		return nil, ident.Dimension("decompose", "empty %dx%d matrix", m, n)
	}
	log := cfg.logger.WithValues("rows", m, "cols", n)

	D := mat.DenseCopyOf(H)
	d := D.RawMatrix().Data
	if !tseries.Finite(d) {
		return nil, ident.Dimension("decompose", "%dx%d matrix has non-finite entries", m, n)
	}
	normF := mat.Norm(D, 2)
	if normF == 0 {
		log.Info("embedding has no energy, returning degenerate split")
		return degenerate(D, 0), nil
	}

	lambda := cfg.lambda
	if lambda == 0 {
		lambda = 1 / math.Sqrt(float64(max(m, n)))
	}
	norm2, err := spectralNorm(D)
	if err != nil {
		return nil, err
	}
	mu := cfg.mu
	if mu == 0 {
		mu = 1.25 / norm2
	}
	muBar := mu * 1e7

	// Dual variable scaled so that its spectral and max norms start at most one.
	Y := mat.NewDense(m, n, nil)
	Y.Scale(1/math.Max(norm2, maxAbs(d)/lambda), D)
	y := Y.RawMatrix().Data

	L := mat.NewDense(m, n, nil)
	S := mat.NewDense(m, n, nil)
	work := mat.NewDense(m, n, nil)
	l, s, w := L.RawMatrix().Data, S.RawMatrix().Data, work.RawMatrix().Data

	report := ident.Report{Status: ident.NotConverged}
	rank := 0
	for iter := 1; ; iter++ {
		inv := 1 / mu
		for i := range w {
			w[i] = d[i] - s[i] + inv*y[i]
		}
		if rank, err = svt(L, work, inv); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}

		for i := range s {
			s[i] = d[i] - l[i] + inv*y[i]
		}
		shrink(s, lambda*inv)

		sq := 0.0
		for i := range d {
			z := d[i] - l[i] - s[i]
			y[i] += mu * z
			sq += z * z
		}
		residual := math.Sqrt(sq) / normF
		mu = math.Min(mu*cfg.rho, muBar)

		log.V(logging.TRACE).Info("rpca iteration", "iter", iter, "rank", rank, "residual", residual)

		done, status := cfg.stop.Done(iter, residual)
		report = ident.Report{Status: status, Iterations: iter, Residual: residual}
		if done {
			break
		}
	}

	if rank == 0 {
		log.Info("low-rank component collapsed, returning degenerate split", "iterations", report.Iterations)
		return degenerate(D, report.Iterations), nil
	}
	if report.Status == ident.NotConverged {
		log.Info("decomposition did not converge", "iterations", report.Iterations, "residual", report.Residual)
	}

	return &Result{L: L, S: S, Report: report, Rank: rank}, nil
}

func degenerate(D *mat.Dense, iters int) *Result {
	m, n := D.Dims()
	return &Result{
		L:      mat.NewDense(m, n, nil),
		S:      D,
		Report: ident.Report{Status: ident.Degenerate, Iterations: iters},
	}
}

func maxAbs(x []float64) float64 {
	v := 0.0
	for _, e := range x {
		if a := math.Abs(e); a > v {
			v = a
		}
	}
	return v
}

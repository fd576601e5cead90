package arx

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/logging"
)

var errSVD = errors.New("arx: singular value decomposition failed")

// nonGenericTol bounds the last component of the minimal right singular
// vector below which the TLS solution does not exist.
const nonGenericTol = 1e-12

func solveLS(A *mat.Dense, b *mat.VecDense, opts Options) ([]float64, ident.Report, error) {
	var x mat.VecDense
	if err := x.SolveVec(A, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, ident.Report{}, fmt.Errorf("least squares: %w", err)
		}
		opts.Logger.Info("least squares system is ill-conditioned", "condition", float64(cond))
	}

	var r mat.VecDense
	r.MulVec(A, &x)
	r.SubVec(&r, b)
	theta := mat.Col(nil, 0, &x)
	return theta, ident.Report{Status: ident.Converged, Iterations: 1, Residual: mat.Norm(&r, 2)}, nil
}

func solveTLS(A *mat.Dense, b *mat.VecDense, opts Options) ([]float64, ident.Report, error) {
	theta, sigma, err := weightedTLS(A, b, nil)
	if err != nil {
		return nil, ident.Report{}, err
	}
	return theta, ident.Report{Status: ident.Converged, Iterations: 1, Residual: sigma}, nil
}

// weightedTLS solves the total least squares problem on the rows of [A | b]
// scaled by sqrt(w). A nil w weights all rows equally. It returns θ and the
// smallest singular value of the augmented matrix.
func weightedTLS(A *mat.Dense, b *mat.VecDense, w []float64) ([]float64, float64, error) {
	rows, p := A.Dims()
	C := mat.NewDense(rows, p+1, nil)
	C.Augment(A, b)
	if w != nil {
		for i := 0; i < rows; i++ {
			floats.Scale(math.Sqrt(w[i]), C.RawRowView(i))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(C, mat.SVDThinV) {
		return nil, 0, errSVD
	}
	var v mat.Dense
	svd.VTo(&v)
	sigma := svd.Values(nil)

	last := v.At(p, p)
	if math.Abs(last) < nonGenericTol {
		return nil, 0, ident.ErrNonGeneric
	}
	theta := make([]float64, p)
	for i := range theta {
		theta[i] = -v.At(i, p) / last
	}
	return theta, sigma[p], nil
}

// orthogonalResiduals writes the signed distances of the rows of [A | b]
// to the hyperplane defined by θ into r.
func orthogonalResiduals(r []float64, A *mat.Dense, b *mat.VecDense, theta []float64) {
	norm := math.Sqrt(1 + floats.Dot(theta, theta))
	for i := range r {
		r[i] = (floats.Dot(A.RawRowView(i), theta) - b.AtVec(i)) / norm
	}
}

// solveRTLS runs iteratively reweighted TLS, down-weighting rows with large
// orthogonal residuals relative to their robust scale. It starts from the
// least squares solution, reweights with Huber until θ settles and then
// switches to opts.Weight for the rest of the budget.
func solveRTLS(A *mat.Dense, b *mat.VecDense, opts Options) ([]float64, ident.Report, error) {
	rows, _ := A.Dims()
	weight := opts.Weight
	if weight == nil {
		weight = Bisquare(BisquareC)
	}
	stages := []WeightFunc{Huber(HuberK), weight}

	theta, _, err := solveLS(A, b, opts)
	if err != nil {
		return nil, ident.Report{}, err
	}

	r := make([]float64, rows)
	w := make([]float64, rows)
	diff := make([]float64, len(theta))
	report := ident.Report{Status: ident.NotConverged}

	stage := 0
	for iter := 1; ; iter++ {
		orthogonalResiduals(r, A, b, theta)
		scale := madScale(r)
		if scale == 0 {
			// More than half of the rows fit exactly.
			report = ident.Report{Status: ident.Converged, Iterations: iter}
			break
		}
		for i, ri := range r {
			w[i] = stages[stage](ri / scale)
		}

		next, _, err := weightedTLS(A, b, w)
		if err != nil {
			return nil, ident.Report{}, fmt.Errorf("rtls iteration %d: %w", iter, err)
		}

		floats.SubTo(diff, next, theta)
		change := floats.Norm(diff, 2)
		if n := floats.Norm(next, 2); n > 0 {
			change /= n
		}
		theta = next

		opts.Logger.V(logging.TRACE).Info("rtls iteration", "iter", iter, "stage", stage, "change", change, "scale", scale)

		done, status := opts.Stop.Done(iter, change)
		report = ident.Report{Status: status, Iterations: iter, Residual: change}
		if !done {
			continue
		}
		if status == ident.Converged && stage < len(stages)-1 && iter < opts.Stop.MaxIter {
			stage++
			continue
		}
		if status == ident.Converged && stage < len(stages)-1 {
			report.Status = ident.NotConverged
		}
		break
	}

	if report.Status == ident.NotConverged {
		opts.Logger.Info("robust TLS did not converge", "iterations", report.Iterations, "change", report.Residual)
	}
	return theta, report, nil
}

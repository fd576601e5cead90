package arx

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/tseries"
)

// Regression assembles the linear system A·θ ≈ b for an ARX(na, nb)
// model. Row r corresponds to sample k = max(na, nb) + r with regressor
//
//	φ_k = [-y[k-1] .. -y[k-na], u[k-1] .. u[k-nb]]
//
// and target y[k]. With nb = 0 the input is ignored and may be nil.
func Regression(u, y []float64, na, nb int) (*mat.Dense, *mat.VecDense, error) {
	if na < 1 || nb < 0 {
		return nil, nil, ident.Dimension("regression", "orders must satisfy na >= 1, nb >= 0, got na=%d nb=%d", na, nb)
	}
	if nb > 0 && len(u) != len(y) {
		return nil, nil, ident.Dimension("regression", "input length %d != output length %d", len(u), len(y))
	}

	if !tseries.Finite(y) || (nb > 0 && !tseries.Finite(u)) {
		return nil, nil, ident.Dimension("regression", "non-finite samples")
	}

	start := max(na, nb)
	rows := len(y) - start
	params := na + nb
	if rows < params+1 {
		return nil, nil, ident.InsufficientData("regression", max(rows, 0), params)
	}

	A := mat.NewDense(rows, params, nil)
	b := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		k := start + r
		row := A.RawRowView(r)
		for i := 1; i <= na; i++ {
			row[i-1] = -y[k-i]
		}
		for j := 1; j <= nb; j++ {
			row[na+j-1] = u[k-j]
		}
		b.SetVec(r, y[k])
	}
	return A, b, nil
}

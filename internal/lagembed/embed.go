// Package lagembed builds lag (Hankel) embeddings of scalar series and
// inverts them by anti-diagonal averaging.
package lagembed

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sysid/internal/ident"
)

// Rows returns the number of rows of the embedding of a length-N series
// with embedding dimension n.
func Rows(N, n int) int { return N - n + 1 }

// Embed returns the (N-n+1)×n matrix H with H[i,j] = x[i+j].
func Embed(x []float64, n int) (*mat.Dense, error) {
	N := len(x)
	if n < 1 || n >= N {
		return nil, ident.Dimension("embed", "embedding dimension %d must satisfy 1 <= n < N=%d", n, N)
	}
	m := Rows(N, n)
	data := make([]float64, m*n)
	for i := 0; i < m; i++ {
		copy(data[i*n:(i+1)*n], x[i:i+n])
	}
	return mat.NewDense(m, n, data), nil
}

// Deembed reconstructs a series of length m+n-1 from an m×n matrix by
// averaging each anti-diagonal.
func Deembed(L mat.Matrix) ([]float64, error) {
	m, n := L.Dims()
	if m == 0 || n == 0 {
		return nil, ident.Dimension("deembed", "empty %dx%d matrix", m, n)
	}
	N := m + n - 1
	out := make([]float64, N)
	counts := make([]int, N)

	if raw, ok := L.(mat.RawMatrixer); ok {
		r := raw.RawMatrix()
		for i := 0; i < m; i++ {
			row := r.Data[i*r.Stride : i*r.Stride+n]
			for j, v := range row {
				out[i+j] += v
				counts[i+j]++
			}
		}
	} else {
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				out[i+j] += L.At(i, j)
				counts[i+j]++
			}
		}
	}

	for k := range out {
		out[k] /= float64(counts[k])
	}
	return out, nil
}

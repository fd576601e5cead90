package rpca

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errFactorize = errors.New("rpca: eigendecomposition of gram matrix failed")

// spectrum returns the singular values (ascending) and right singular
// vectors of a tall matrix x via its n×n Gram matrix.
func spectrum(x mat.Matrix, vectors bool) ([]float64, *mat.Dense, error) {
	var g mat.SymDense
	g.SymOuterK(1, x.T())

	var eig mat.EigenSym
	if !eig.Factorize(&g, vectors) {
		return nil, nil, errFactorize
	}
	vals := eig.Values(nil)
	for i, v := range vals {
		vals[i] = math.Sqrt(math.Max(v, 0))
	}
	if !vectors {
		return vals, nil, nil
	}
	var v mat.Dense
	eig.VectorsTo(&v)
	return vals, &v, nil
}

// spectralNorm returns the largest singular value of x.
func spectralNorm(x mat.Matrix) (float64, error) {
	m, n := x.Dims()
	if m < n {
		x = x.T()
	}
	vals, _, err := spectrum(x, false)
	if err != nil {
		return 0, err
	}
	return vals[len(vals)-1], nil
}

// svt writes the singular value thresholding of x at tau into dst and
// returns the number of singular values above tau.
func svt(dst *mat.Dense, x *mat.Dense, tau float64) (int, error) {
	m, n := x.Dims()
	if m < n {
		xt := mat.DenseCopyOf(x.T())
		var lt mat.Dense
		rank, err := svtTall(&lt, xt, tau)
		if err != nil {
			return 0, err
		}
		if dst.IsEmpty() {
			dst.ReuseAs(m, n)
		}
		dst.Copy(lt.T())
		return rank, nil
	}
	return svtTall(dst, x, tau)
}

func svtTall(dst *mat.Dense, x *mat.Dense, tau float64) (int, error) {
	m, n := x.Dims()
	sigma, v, err := spectrum(x, true)
	if err != nil {
		return 0, err
	}

	keep := make([]int, 0, n)
	for i := n - 1; i >= 0; i-- {
		if sigma[i] > tau {
			keep = append(keep, i)
		}
	}
	if dst.IsEmpty() {
		dst.ReuseAs(m, n)
	}
	if len(keep) == 0 {
		dst.Zero()
		return 0, nil
	}

	r := len(keep)
	vk := mat.NewDense(n, r, nil)
	for c, idx := range keep {
		for i := 0; i < n; i++ {
			vk.Set(i, c, v.At(i, idx))
		}
	}

	// L = X·V·diag((σ-τ)/σ)·Vᵀ, since U·Σ = X·V.
	var xv mat.Dense
	xv.Mul(x, vk)
	for c, idx := range keep {
		s := sigma[idx]
		col := xv.ColView(c).(*mat.VecDense)
		col.ScaleVec((s-tau)/s, col)
	}
	dst.Mul(&xv, vk.T())
	return r, nil
}

// shrink applies entrywise soft-thresholding at t in place.
func shrink(data []float64, t float64) {
	for i, v := range data {
		switch {
		case v > t:
			data[i] = v - t
		case v < -t:
			data[i] = v + t
		default:
			data[i] = 0
		}
	}
}

// NumericalRank counts singular values of a above rel times the largest.
func NumericalRank(a mat.Matrix, rel float64) int {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0
	}
	vals := svd.Values(nil)
	if len(vals) == 0 || vals[0] == 0 {
		return 0
	}
	rank := 0
	for _, s := range vals {
		if s > rel*vals[0] {
			rank++
		}
	}
	return rank
}

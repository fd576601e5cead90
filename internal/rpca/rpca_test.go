package rpca

import (
	"errors"
	"math"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/lagembed"
	"github.com/san-kum/sysid/internal/tseries"
)

var fiveTones = []float64{2000, 8000, 10000, 15000, 25000}

// lowRankPlusSparse returns a rank-r m×n matrix and a copy corrupted by
// large spikes on roughly frac of the entries.
func lowRankPlusSparse(seed int64, m, n, r int, frac float64) (*mat.Dense, *mat.Dense) {
	rng := tseries.NewRand(seed)
	a := mat.NewDense(m, r, tseries.WhiteNoise(rng, m*r, 1))
	b := mat.NewDense(r, n, tseries.WhiteNoise(rng, r*n, 1))

	var low mat.Dense
	low.Mul(a, b)

	H := mat.DenseCopyOf(&low)
	spikes := tseries.Impulsive(rng, m*n, frac, 10)
	raw := H.RawMatrix().Data
	for i, v := range spikes {
		raw[i] += v
	}
	return &low, H
}

func relErr(a, b mat.Matrix) float64 {
	var d mat.Dense
	d.Sub(a, b)
	return mat.Norm(&d, 2) / mat.Norm(b, 2)
}

func TestDecompose_Additivity(t *testing.T) {
	_, H := lowRankPlusSparse(1, 80, 50, 3, 0.05)

	res, err := Decompose(H, WithLogger(testr.New(t)))
	require.NoError(t, err)
	require.Equal(t, ident.Converged, res.Status)

	var sum mat.Dense
	sum.Add(res.L, res.S)
	assert.LessOrEqual(t, relErr(&sum, H), DefaultStop.Tol)
	assert.LessOrEqual(t, res.Residual, DefaultStop.Tol)
}

func TestDecompose_RecoversLowRank(t *testing.T) {
	low, H := lowRankPlusSparse(2, 80, 50, 3, 0.05)

	res, err := Decompose(H)
	require.NoError(t, err)

	assert.Less(t, relErr(res.L, low), 0.05)
	assert.Equal(t, 3, NumericalRank(res.L, 1e-3))
}

func TestDecompose_NotConverged(t *testing.T) {
	_, H := lowRankPlusSparse(3, 40, 30, 2, 0.05)

	res, err := Decompose(H, WithStop(ident.Stop{MaxIter: 2, Tol: 1e-12}))
	require.NoError(t, err)

	assert.Equal(t, ident.NotConverged, res.Status)
	assert.Equal(t, 2, res.Iterations)
	assert.NotNil(t, res.L)
	assert.NotNil(t, res.S)
	assert.ErrorIs(t, res.Status.Err(), ident.ErrNotConverged)
}

func TestDecompose_Degenerate(t *testing.T) {
	H := mat.NewDense(5, 3, nil)

	res, err := Decompose(H)
	require.NoError(t, err)

	assert.Equal(t, ident.Degenerate, res.Status)
	assert.Equal(t, 0.0, mat.Norm(res.L, 2))
	assert.True(t, mat.Equal(res.S, H))
}

// A single spike makes the initial dual variable small in spectral norm, so
// a tiny penalty thresholds every singular value away in the first update.
func TestDecompose_RankCollapse(t *testing.T) {
	H := mat.NewDense(20, 10, nil)
	H.Set(4, 7, 1)

	res, err := Decompose(H, Mu(1e-3), WithStop(ident.Stop{MaxIter: 1, Tol: 0}), WithLogger(testr.New(t)))
	require.NoError(t, err)

	assert.Equal(t, ident.Degenerate, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0, res.Rank)
	assert.Equal(t, 0.0, mat.Norm(res.L, 2))
	assert.True(t, mat.Equal(res.S, H))
	assert.ErrorIs(t, res.Status.Err(), ident.ErrDegenerateEmbedding)
}

func TestDecompose_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		H := mat.NewDense(4, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
		H.Set(2, 1, v)

		_, err := Decompose(H)
		assert.ErrorIs(t, err, ident.ErrInvalidDimension, "%g", v)
	}
}

func TestDecompose_WideMatrix(t *testing.T) {
	low, H := lowRankPlusSparse(4, 30, 70, 2, 0.03)

	res, err := Decompose(H)
	require.NoError(t, err)
	require.Equal(t, ident.Converged, res.Status)

	rows, cols := res.L.Dims()
	assert.Equal(t, 30, rows)
	assert.Equal(t, 70, cols)
	assert.Less(t, relErr(res.L, low), 0.05)
}

func TestDecompose_InvalidOptions(t *testing.T) {
	H := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 10})

	tests := []struct {
		name string
		opt  Option
	}{
		{"negative lambda", Lambda(-1)},
		{"zero mu", Mu(0)},
		{"rho not above one", Rho(1)},
		{"empty budget", WithStop(ident.Stop{MaxIter: 0, Tol: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompose(H, tt.opt)
			assert.True(t, errors.Is(err, ident.ErrInvalidDimension), "got %v", err)
		})
	}
}

func TestDecompose_LowRankOfTones(t *testing.T) {
	rng := tseries.NewRand(5)
	clean := tseries.Sinusoids(fiveTones, 100000, 1000, 1)
	noisy, err := tseries.Corrupt(clean, tseries.HeavyTailed(rng, clean.Len(), 1.5), 0.01)
	require.NoError(t, err)

	H, err := lagembed.Embed(noisy.Values, 100)
	require.NoError(t, err)

	res, err := Decompose(H, WithStop(FilterStop))
	require.NoError(t, err)

	rank := NumericalRank(res.L, 1e-2)
	assert.GreaterOrEqual(t, rank, 8)
	assert.LessOrEqual(t, rank, 12)
}

func TestNumericalRank(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		2, 4, 6,
		1, 0, 1,
	})
	assert.Equal(t, 2, NumericalRank(a, 1e-10))
	assert.Equal(t, 0, NumericalRank(mat.NewDense(2, 2, nil), 1e-10))
}

func TestShrink(t *testing.T) {
	x := []float64{3, -3, 0.5, -0.5, 1}
	shrink(x, 1)
	assert.Equal(t, []float64{2, -2, 0, 0, 0}, x)
}

func TestSVT_MatchesSVD(t *testing.T) {
	rng := tseries.NewRand(6)
	x := mat.NewDense(12, 5, tseries.WhiteNoise(rng, 60, 1))

	var svd mat.SVD
	require.True(t, svd.Factorize(x, mat.SVDThin))
	vals := svd.Values(nil)
	tau := vals[2]

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	shrunk := make([]float64, len(vals))
	for i, s := range vals {
		shrunk[i] = math.Max(s-tau, 0)
	}
	var us, want mat.Dense
	us.Mul(&u, mat.NewDiagDense(len(shrunk), shrunk))
	want.Mul(&us, v.T())

	var got mat.Dense
	rank, err := svt(&got, x, tau)
	require.NoError(t, err)

	assert.Equal(t, 2, rank)
	assert.Less(t, relErr(&got, &want), 1e-8)

	var gotWide mat.Dense
	rank, err = svt(&gotWide, mat.DenseCopyOf(x.T()), tau)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)
	assert.Less(t, relErr(&gotWide, want.T()), 1e-8)
}

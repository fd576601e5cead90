package sweep

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/lagembed"
	"github.com/san-kum/sysid/internal/rpca"
	"github.com/san-kum/sysid/internal/tseries"
)

// Slope fits log(ys) = a + b·log(xs) and returns the exponent b.
func Slope(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, ident.Dimension("slope", "need two or more matching points, got %d and %d", len(xs), len(ys))
	}
	lx := make([]float64, len(xs))
	ly := make([]float64, len(ys))
	for i := range xs {
		if xs[i] <= 0 || ys[i] <= 0 {
			return 0, ident.Dimension("slope", "non-positive sample (%g, %g)", xs[i], ys[i])
		}
		lx[i] = math.Log(xs[i])
		ly[i] = math.Log(ys[i])
	}
	_, b := stat.LinearRegression(lx, ly, nil, false)
	return b, nil
}

// Timing is the best observed wall time of a decomposition.
type Timing struct {
	Dim     int
	Elapsed time.Duration
	Report  ident.Report
}

// TimeDecomposition times the low-rank/sparse decomposition of the lag
// embedding of x for each dimension in dims, keeping the fastest of reps
// runs. Runs are sequential so that timings do not compete for cores.
func TimeDecomposition(ctx context.Context, x []float64, dims []int, reps int, stop ident.Stop) ([]Timing, error) {
	if reps < 1 {
		reps = 1
	}
	out := make([]Timing, 0, len(dims))
	for _, n := range dims {
		H, err := lagembed.Embed(x, n)
		if err != nil {
			return nil, err
		}
		best := Timing{Dim: n, Elapsed: time.Duration(math.MaxInt64)}
		for i := 0; i < reps; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := time.Now()
			res, err := rpca.Decompose(H, rpca.WithStop(stop))
			if err != nil {
				return nil, err
			}
			if d := time.Since(start); d < best.Elapsed {
				best.Elapsed = d
				best.Report = res.Report
			}
		}
		out = append(out, best)
	}
	return out, nil
}

// GrowthExponent fits a power law to timings against embedding dimension.
func GrowthExponent(timings []Timing) (float64, error) {
	xs := make([]float64, len(timings))
	ys := make([]float64, len(timings))
	for i, t := range timings {
		xs[i] = float64(t.Dim)
		ys[i] = t.Elapsed.Seconds()
	}
	return Slope(xs, ys)
}

// BenchSignal is the five-tone, heavy-tailed test series used by the
// growth benchmark.
func BenchSignal(n int, seed int64) ([]float64, error) {
	clean := tseries.Sinusoids([]float64{2000, 8000, 10000, 15000, 25000}, 100000, n, 1)
	noisy, err := tseries.Corrupt(clean, tseries.HeavyTailed(tseries.NewRand(seed), n, 1.5), 0.01)
	if err != nil {
		return nil, err
	}
	return noisy.Values, nil
}

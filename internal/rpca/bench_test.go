package rpca

import (
	"fmt"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/lagembed"
	"github.com/san-kum/sysid/internal/tseries"
)

var fixedBudget = ident.Stop{MaxIter: 5, Tol: 0}

func embedTones(b testing.TB, N, n int) *mat.Dense {
	x := tseries.Sinusoids(fiveTones, 100000, N, 1)
	H, err := lagembed.Embed(x.Values, n)
	if err != nil {
		b.Fatal(err)
	}
	return H
}

func BenchmarkDecompose(b *testing.B) {
	for _, n := range []int{25, 50, 100, 200} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			H := embedTones(b, 4000, n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Decompose(H, WithStop(fixedBudget)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestDecompose_CostGrowth(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	dims := []int{16, 32, 64, 128}
	logN := make([]float64, len(dims))
	logT := make([]float64, len(dims))

	for i, n := range dims {
		H := embedTones(t, 4000, n)
		best := time.Duration(math.MaxInt64)
		for rep := 0; rep < 3; rep++ {
			start := time.Now()
			if _, err := Decompose(H, WithStop(fixedBudget)); err != nil {
				t.Fatal(err)
			}
			if d := time.Since(start); d < best {
				best = d
			}
		}
		logN[i] = math.Log(float64(n))
		logT[i] = math.Log(best.Seconds())
		t.Logf("n=%d: %v", n, best)
	}

	_, slope := stat.LinearRegression(logN, logT, nil, false)
	t.Logf("log-log slope %.2f", slope)
	if slope < 1 || slope > 2 {
		t.Errorf("cost growth exponent %.2f outside [1, 2]", slope)
	}
}

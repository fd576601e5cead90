package arx

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WeightFunc maps a standardized residual to a row weight in [0, 1].
type WeightFunc func(u float64) float64

// Huber returns the Huber weight function with threshold k.
func Huber(k float64) WeightFunc {
	return func(u float64) float64 {
		a := math.Abs(u)
		if a <= k {
			return 1
		}
		return k / a
	}
}

// Bisquare returns Tukey's bisquare weight function with cutoff c.
func Bisquare(c float64) WeightFunc {
	return func(u float64) float64 {
		if math.Abs(u) >= c {
			return 0
		}
		t := u / c
		return (1 - t*t) * (1 - t*t)
	}
}

// Tuning constants giving 95% efficiency under Gaussian noise.
const (
	HuberK    = 1.345
	BisquareC = 4.685
)

// ParseWeight resolves a weight function by name.
func ParseWeight(name string) (WeightFunc, error) {
	switch name {
	case "huber":
		return Huber(HuberK), nil
	case "", "bisquare":
		return Bisquare(BisquareC), nil
	default:
		return nil, fmt.Errorf("unknown weight function %q (want huber or bisquare)", name)
	}
}

// madScale is the median absolute deviation of r, rescaled to estimate the
// standard deviation of Gaussian residuals.
func madScale(r []float64) float64 {
	s := make([]float64, len(r))
	copy(s, r)
	sort.Float64s(s)
	med := stat.Quantile(0.5, stat.Empirical, s, nil)

	for i, v := range r {
		s[i] = math.Abs(v - med)
	}
	sort.Float64s(s)
	return stat.Quantile(0.5, stat.Empirical, s, nil) / 0.6745
}

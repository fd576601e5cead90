package tseries

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

// Series is a uniformly sampled real-valued signal.
type Series struct {
	Values []float64
	Ts     float64
}

// New copies values so that later changes by the caller do not leak in.
func New(values []float64, ts float64) Series {
	v := make([]float64, len(values))
	copy(v, values)
	return Series{Values: v, Ts: ts}
}

func (s Series) Len() int { return len(s.Values) }

// IsValid reports whether every sample is finite.
func (s Series) IsValid() bool { return Finite(s.Values) }

func (s Series) Std() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.StdDev(s.Values, nil)
}

// Finite reports whether x holds no NaN or infinite value.
func Finite[T constraints.Float](x []T) bool {
	for _, v := range x {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// RMS is the root mean square of x, 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// RMSDiff is the rms of a-b over the common prefix.
func RMSDiff(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

package freqresp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}

// Logspace returns n values evenly spaced on a log scale from a to b
// inclusive. Both bounds must be positive.
func Logspace(a, b float64, n int) []float64 {
	if n < 1 || a <= 0 || b <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	return floats.LogSpan(make([]float64, n), a, b)
}

// NyquistGrid returns n angular frequencies from π/(n·ts) up to the
// Nyquist frequency π/ts.
func NyquistGrid(ts float64, n int) []float64 {
	if ts <= 0 || n < 1 {
		return nil
	}
	nyq := math.Pi / ts
	return Linspace(nyq/float64(n), nyq, n)
}

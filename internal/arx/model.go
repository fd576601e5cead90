// Package arx estimates autoregressive (AR) and autoregressive with
// exogenous input (ARX) models from sampled data.
//
// A model relates input u and output y through the difference equation
//
//	A(z) y[k] = B(z) u[k]
//
// with A = 1 + a1 z⁻¹ + ... + a_na z⁻na and B given in powers of z⁻¹. A
// pure AR model has the implicit numerator B = 1.
//
// Coefficients are fitted by ordinary least squares, total least squares
// or a robust iteratively reweighted total least squares that tolerates
// heavy-tailed measurement noise.
package arx

import (
	"fmt"
	"strings"
)

// Model is a discrete transfer function B(z)/A(z) with sample time Ts.
type Model struct {
	A  []float64
	B  []float64
	Ts float64
}

// NewAR builds 1/A(z) from the denominator coefficients a1..a_na.
func NewAR(a []float64, ts float64) *Model {
	return &Model{A: withLeadingOne(a), B: []float64{1}, Ts: ts}
}

// NewARX builds B(z)/A(z) with a one-sample input delay, so that b1..b_nb
// multiply u[k-1]..u[k-nb].
func NewARX(a, b []float64, ts float64) *Model {
	num := make([]float64, len(b)+1)
	copy(num[1:], b)
	return &Model{A: withLeadingOne(a), B: num, Ts: ts}
}

func withLeadingOne(a []float64) []float64 {
	den := make([]float64, len(a)+1)
	den[0] = 1
	copy(den[1:], a)
	return den
}

// Order returns the number of free denominator and numerator coefficients.
func (m *Model) Order() (na, nb int) {
	na = len(m.A) - 1
	if len(m.B) == 1 && m.B[0] == 1 {
		return na, 0
	}
	return na, len(m.B) - 1
}

// Theta returns the regression parameter vector [a1..a_na, b1..b_nb].
func (m *Model) Theta() []float64 {
	na, nb := m.Order()
	theta := make([]float64, 0, na+nb)
	theta = append(theta, m.A[1:]...)
	if nb > 0 {
		theta = append(theta, m.B[1:]...)
	}
	return theta
}

// Simulate runs the difference equation from rest over the input u.
func (m *Model) Simulate(u []float64) []float64 {
	y := make([]float64, len(u))
	for k := range u {
		acc := 0.0
		for j, b := range m.B {
			if k-j < 0 {
				break
			}
			acc += b * u[k-j]
		}
		for i := 1; i < len(m.A); i++ {
			if k-i < 0 {
				break
			}
			acc -= m.A[i] * y[k-i]
		}
		y[k] = acc / m.A[0]
	}
	return y
}

func (m *Model) String() string {
	return fmt.Sprintf("B=%s A=%s Ts=%g", poly(m.B), poly(m.A), m.Ts)
}

func poly(c []float64) string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

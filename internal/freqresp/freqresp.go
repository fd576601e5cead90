// Package freqresp evaluates the frequency response of estimated models and
// provides nonparametric spectral estimates to check them against.
package freqresp

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/sysid/internal/arx"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/tseries"
)

// Response is a frequency response sampled at angular frequencies W
// (rad per time unit). Phase is in radians and may be nil for
// magnitude-only estimates.
type Response struct {
	W     []float64
	Mag   []float64
	Phase []float64
}

func (r *Response) Len() int { return len(r.W) }

// MagnitudeDB returns 20·log10 of the magnitude.
func (r *Response) MagnitudeDB() []float64 {
	db := make([]float64, len(r.Mag))
	for i, m := range r.Mag {
		db[i] = 20 * math.Log10(m)
	}
	return db
}

// Evaluate substitutes z = e^{jωT} into B(z)/A(z) at every frequency of w.
func Evaluate(m *arx.Model, w []float64) (*Response, error) {
	if len(w) == 0 {
		return nil, ident.Dimension("evaluate", "empty frequency grid")
	}

	resp := &Response{
		W:     append([]float64(nil), w...),
		Mag:   make([]float64, len(w)),
		Phase: make([]float64, len(w)),
	}
	for i, omega := range w {
		zinv := cmplx.Exp(complex(0, -omega*m.Ts))
		h := polyval(m.B, zinv) / polyval(m.A, zinv)
		resp.Mag[i] = cmplx.Abs(h)
		resp.Phase[i] = cmplx.Phase(h)
	}
	return resp, nil
}

// polyval evaluates c[0] + c[1]·x + c[2]·x² + ... by Horner's rule.
func polyval(c []float64, x complex128) complex128 {
	var acc complex128
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*x + complex(c[i], 0)
	}
	return acc
}

// MagnitudeRMSError is the rms difference of the magnitudes of two
// responses sampled on the same grid.
func MagnitudeRMSError(truth, est *Response) (float64, error) {
	if truth.Len() == 0 || truth.Len() != est.Len() {
		return 0, ident.Dimension("magnitude error", "grid sizes %d and %d", truth.Len(), est.Len())
	}
	return tseries.RMSDiff(truth.Mag, est.Mag), nil
}

package freqresp

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sysid/internal/arx"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/tseries"
)

func TestEvaluate_FirstOrder(t *testing.T) {
	// H(z) = z⁻¹ / (1 - 0.5 z⁻¹)
	m := arx.NewARX([]float64{-0.5}, []float64{1}, 0.1)

	resp, err := Evaluate(m, []float64{0, math.Pi / 0.1})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, resp.Mag[0], 1e-12)
	assert.InDelta(t, 0.0, resp.Phase[0], 1e-12)
	assert.InDelta(t, 2.0/3, resp.Mag[1], 1e-12)
	assert.InDelta(t, math.Pi, math.Abs(resp.Phase[1]), 1e-9)
}

func TestEvaluate_AR(t *testing.T) {
	m := arx.NewAR([]float64{-0.9}, 1)
	resp, err := Evaluate(m, []float64{0})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, resp.Mag[0], 1e-9)
	assert.InDelta(t, 20.0, resp.MagnitudeDB()[0], 1e-9)
}

func TestEvaluate_EmptyGrid(t *testing.T) {
	_, err := Evaluate(arx.NewAR([]float64{0.1}, 1), nil)
	assert.ErrorIs(t, err, ident.ErrInvalidDimension)
}

func TestGrids(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.InDeltaSlice(t, []float64{1, 10, 100}, Logspace(1, 100, 3), 1e-9)
	assert.Nil(t, Logspace(0, 1, 3))

	g := NyquistGrid(0.01, 4)
	require.Len(t, g, 4)
	assert.InDelta(t, math.Pi/0.01, g[3], 1e-9)
	assert.Greater(t, g[0], 0.0)
}

func TestMagnitudeRMSError(t *testing.T) {
	a := &Response{W: []float64{1, 2}, Mag: []float64{1, 1}}
	b := &Response{W: []float64{1, 2}, Mag: []float64{2, 0}}

	e, err := MagnitudeRMSError(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, e, 1e-12)

	_, err = MagnitudeRMSError(a, &Response{W: []float64{1}, Mag: []float64{1}})
	assert.ErrorIs(t, err, ident.ErrInvalidDimension)
}

func TestWelch_WhiteNoiseIsFlat(t *testing.T) {
	rng := tseries.NewRand(1)
	x := tseries.WhiteNoise(rng, 16384, 1)

	pxx, freqs, err := Welch(x, 2, 256)
	require.NoError(t, err)
	require.Len(t, pxx, 129)
	assert.InDelta(t, 1.0, freqs[len(freqs)-1], 1e-12)

	// Two-sided variance 1 spread over fs = 2 gives a one-sided density of 1.
	inner := append([]float64(nil), pxx[1:len(pxx)-1]...)
	sort.Float64s(inner)
	assert.InDelta(t, 1.0, inner[len(inner)/2], 0.15)
}

func TestWelch_InvalidSegment(t *testing.T) {
	_, _, err := Welch(make([]float64, 100), 1, 101)
	assert.ErrorIs(t, err, ident.ErrInvalidDimension)
	_, _, err = Welch(make([]float64, 100), 1, 33)
	assert.ErrorIs(t, err, ident.ErrInvalidDimension)
}

func TestWelchGain_MatchesModel(t *testing.T) {
	m := arx.NewARX([]float64{-1.5, 0.7}, []float64{1, 0.5}, 1)
	rng := tseries.NewRand(2)
	u := tseries.WhiteNoise(rng, 16384, 1)
	y := m.Simulate(u)

	gain, err := WelchGain(u, y, 1, 256)
	require.NoError(t, err)

	model, err := Evaluate(m, gain.W)
	require.NoError(t, err)

	rel := make([]float64, 0, gain.Len())
	for i := 1; i < gain.Len()-1; i++ {
		rel = append(rel, math.Abs(gain.Mag[i]-model.Mag[i])/model.Mag[i])
	}
	sort.Float64s(rel)
	assert.Less(t, rel[len(rel)/2], 0.1)
}

func TestETFE_Noiseless(t *testing.T) {
	m := arx.NewARX([]float64{-0.5}, []float64{1}, 1)
	u := make([]float64, 512)
	u[0] = 1
	y := m.Simulate(u)

	resp, err := ETFE(u, y, 1)
	require.NoError(t, err)

	model, err := Evaluate(m, resp.W)
	require.NoError(t, err)
	assert.InDeltaSlice(t, model.Mag, resp.Mag, 1e-6)
}

func TestPeriodogram_Tone(t *testing.T) {
	x := tseries.Sinusoids([]float64{8}, 64, 64, 1)
	p := Periodogram(x.Values)
	require.Len(t, p, 33)

	peak := 0
	for k := range p {
		if p[k] > p[peak] {
			peak = k
		}
	}
	assert.Equal(t, 8, peak)
	assert.InDelta(t, 16.0, p[8], 1e-9)
}

func TestDominantFrequencies(t *testing.T) {
	x := tseries.Sinusoids([]float64{4, 12}, 64, 128, 1)
	for i, v := range tseries.Sinusoids([]float64{12}, 64, 128, 1).Values {
		x.Values[i] += v
	}

	freqs := DominantFrequencies(x.Values, 64, 3)
	require.Len(t, freqs, 2)
	assert.InDelta(t, 12.0, freqs[0], 1e-9)
	assert.InDelta(t, 4.0, freqs[1], 1e-9)

	assert.Len(t, DominantFrequencies(x.Values, 64, 1), 1)
	assert.Empty(t, DominantFrequencies(make([]float64, 16), 1, 3))
}

package freqresp

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sysid/internal/ident"
)

// Welch estimates the one-sided power spectral density of x sampled at fs
// with Hann-windowed segments of nfft samples overlapping by half.
func Welch(x []float64, fs float64, nfft int) (pxx, freqs []float64, err error) {
	if nfft < 2 || nfft%2 != 0 || nfft > len(x) {
		return nil, nil, ident.Dimension("welch", "segment length %d must be even and within 2..%d", nfft, len(x))
	}
	pxx, freqs = spectral.Pwelch(x, fs, &spectral.PwelchOptions{
		NFFT:     nfft,
		Window:   window.Hann,
		Noverlap: nfft / 2,
	})
	return pxx, freqs, nil
}

// WelchGain estimates |H| of the system from u to y as sqrt(Pyy/Puu). The
// result carries no phase.
func WelchGain(u, y []float64, fs float64, nfft int) (*Response, error) {
	if len(u) != len(y) {
		return nil, ident.Dimension("welch gain", "input length %d != output length %d", len(u), len(y))
	}
	puu, freqs, err := Welch(u, fs, nfft)
	if err != nil {
		return nil, err
	}
	pyy, _, err := Welch(y, fs, nfft)
	if err != nil {
		return nil, err
	}

	resp := &Response{W: make([]float64, len(freqs)), Mag: make([]float64, len(freqs))}
	for i, f := range freqs {
		resp.W[i] = 2 * math.Pi * f
		if puu[i] > 0 {
			resp.Mag[i] = math.Sqrt(pyy[i] / puu[i])
		}
	}
	return resp, nil
}

// ETFE is the empirical transfer function estimate Y(ω)/U(ω) over the
// nonnegative DFT bins of the full records.
func ETFE(u, y []float64, ts float64) (*Response, error) {
	if len(u) != len(y) || len(u) < 2 {
		return nil, ident.Dimension("etfe", "records of length %d and %d", len(u), len(y))
	}
	U := fft.FFTReal(u)
	Y := fft.FFTReal(y)

	n := len(u)
	bins := n/2 + 1
	resp := &Response{
		W:     make([]float64, 0, bins),
		Mag:   make([]float64, 0, bins),
		Phase: make([]float64, 0, bins),
	}
	for k := 0; k < bins; k++ {
		if U[k] == 0 {
			continue
		}
		h := Y[k] / U[k]
		resp.W = append(resp.W, 2*math.Pi*float64(k)/(float64(n)*ts))
		resp.Mag = append(resp.Mag, cmplx.Abs(h))
		resp.Phase = append(resp.Phase, cmplx.Phase(h))
	}
	return resp, nil
}

// Periodogram returns |X[k]|²/N for the nonnegative frequency bins of x.
func Periodogram(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	X := fft.FFTReal(x)
	n := float64(len(x))
	p := make([]float64, len(x)/2+1)
	for k := range p {
		a := cmplx.Abs(X[k])
		p[k] = a * a / n
	}
	return p
}

const peakFloor = 1e-9

// DominantFrequencies returns, strongest first, the frequencies (Hz) of at
// most k local maxima of the periodogram of x sampled at fs. The DC bin and
// maxima below peakFloor of the strongest bin are never reported.
func DominantFrequencies(x []float64, fs float64, k int) []float64 {
	p := Periodogram(x)
	if len(p) < 2 {
		return nil
	}
	floor := peakFloor * floats.Max(p[1:])
	var peaks []int
	for i := 1; i < len(p); i++ {
		if p[i] <= floor || p[i] < p[i-1] || (i+1 < len(p) && p[i] <= p[i+1]) {
			continue
		}
		peaks = append(peaks, i)
	}
	sort.SliceStable(peaks, func(a, b int) bool { return p[peaks[a]] > p[peaks[b]] })
	if len(peaks) > k {
		peaks = peaks[:k]
	}
	freqs := make([]float64, len(peaks))
	for i, bin := range peaks {
		freqs[i] = float64(bin) * fs / float64(len(x))
	}
	return freqs
}

package tseries

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/sysid/internal/ident"
)

// NewRand returns a reproducible random source for the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Sinusoids sums sinusoids of amplitude amp at freqs (Hz), sampled at fs.
func Sinusoids(freqs []float64, fs float64, n int, amp float64) Series {
	x := make([]float64, n)
	ts := 1 / fs
	for _, f := range freqs {
		w := 2 * math.Pi * f
		for i := range x {
			x[i] += amp * math.Sin(w*float64(i)*ts)
		}
	}
	return Series{Values: x, Ts: ts}
}

// WhiteNoise draws n Gaussian samples with the given standard deviation.
func WhiteNoise(rng *rand.Rand, n int, std float64) []float64 {
	d := distuv.Normal{Mu: 0, Sigma: std, Src: rng}
	x := make([]float64, n)
	for i := range x {
		x[i] = d.Rand()
	}
	return x
}

// HeavyTailed draws n Student-t samples with nu degrees of freedom. For
// nu <= 2 the variance is infinite and the samples are dominated by a few
// large impulses.
func HeavyTailed(rng *rand.Rand, n int, nu float64) []float64 {
	d := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu, Src: rng}
	x := make([]float64, n)
	for i := range x {
		x[i] = d.Rand()
	}
	return x
}

// Impulsive draws Bernoulli-Gaussian spikes: each sample is N(0, scale²)
// with probability prob and zero otherwise.
func Impulsive(rng *rand.Rand, n int, prob, scale float64) []float64 {
	d := distuv.Normal{Mu: 0, Sigma: scale, Src: rng}
	x := make([]float64, n)
	for i := range x {
		if rng.Float64() < prob {
			x[i] = d.Rand()
		}
	}
	return x
}

// Corrupt adds noise to clean after scaling it so that its standard
// deviation is ratio times that of clean.
func Corrupt(clean Series, noise []float64, ratio float64) (Series, error) {
	if len(noise) != clean.Len() {
		return Series{}, ident.Dimension("corrupt", "noise length %d != series length %d", len(noise), clean.Len())
	}
	if !clean.IsValid() || !Finite(noise) {
		return Series{}, ident.Dimension("corrupt", "non-finite samples")
	}
	out := make([]float64, clean.Len())
	copy(out, noise)

	if sd := stat.StdDev(noise, nil); sd > 0 {
		floats.Scale(ratio*clean.Std()/sd, out)
	}
	floats.Add(out, clean.Values)
	return Series{Values: out, Ts: clean.Ts}, nil
}

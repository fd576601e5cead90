package experiment

import (
	"context"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/metrics"
)

func tonesConfig() Config {
	return Config{
		Scenario:   "tones",
		Length:     1000,
		Fs:         100000,
		Freqs:      []float64{2000, 8000, 10000, 15000, 25000},
		Amplitude:  1,
		Noise:      0.01,
		NoiseNu:    1.5,
		Embedding:  60,
		FilterStop: ident.Stop{MaxIter: 500, Tol: 1e-3},
		Seed:       7,
	}
}

func arxConfig() Config {
	return Config{
		Scenario:   "arx",
		Estimator:  "rtls",
		Weight:     "bisquare",
		TrueA:      []float64{-1.5, 0.7},
		TrueB:      []float64{1, 0.5},
		Na:         2,
		Nb:         2,
		Length:     1000,
		Fs:         100,
		Noise:      0.05,
		NoiseNu:    1.5,
		RTLSStop:   ident.Stop{MaxIter: 400, Tol: 2e-6},
		GridPoints: 64,
		Seed:       3,
		Param:      0.05,
	}
}

func TestTonesScenario(t *testing.T) {
	rec := metrics.NewRecorder()
	exp, err := NewRegistry().Build(tonesConfig(), Env{Logger: testr.New(t), Recorder: rec})
	require.NoError(t, err)

	out, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.Reports, "filter")
	assert.Greater(t, out.Metrics["improvement"], 1.0)
	assert.Less(t, out.Metrics["rms_after"], out.Metrics["rms_before"])
	assert.Len(t, out.Series["filtered"], 1000)
	assert.Positive(t, out.Elapsed)
}

func TestARXScenario(t *testing.T) {
	exp, err := NewRegistry().Build(arxConfig(), Env{Logger: testr.New(t)})
	require.NoError(t, err)

	out, err := exp.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, out.Fit)
	assert.Equal(t, 0.05, out.Param)
	assert.Contains(t, out.Metrics, "response_rms")
	assert.Less(t, out.Metrics["param_error"], 0.2)
	assert.NotContains(t, out.Reports, "filter")
}

// Student-t output noise over two decades: the magnitude response error of
// the robust estimate must grow more slowly than that of least squares.
func TestARXScenario_HeavyTailedNoise(t *testing.T) {
	levels := []float64{0.001, 0.01, 0.1}
	errs := map[string][]float64{}

	for _, est := range []string{"ls", "rtls"} {
		for _, noise := range levels {
			cfg := arxConfig()
			cfg.Estimator = est
			cfg.Length = 2000
			cfg.Noise = noise
			cfg.Param = noise

			exp, err := NewRegistry().Build(cfg, Env{})
			require.NoError(t, err)
			out, err := exp.Run(context.Background())
			require.NoError(t, err)
			errs[est] = append(errs[est], out.Metrics["response_rms"])
		}
	}
	t.Logf("response rms: ls %v rtls %v", errs["ls"], errs["rtls"])

	last := len(levels) - 1
	assert.Less(t, errs["rtls"][last], errs["ls"][last])
	assert.Less(t, errs["rtls"][last]-errs["rtls"][0], errs["ls"][last]-errs["ls"][0])
}

func TestARXScenario_UnknownEstimator(t *testing.T) {
	cfg := arxConfig()
	cfg.Estimator = "ridge"
	_, err := NewRegistry().Build(cfg, Env{})
	assert.Error(t, err)
}

func TestRun_InsufficientData(t *testing.T) {
	cfg := arxConfig()
	cfg.Length = 4
	cfg.Na = 5

	exp, err := NewRegistry().Build(cfg, Env{})
	require.NoError(t, err)
	_, err = exp.Run(context.Background())
	assert.ErrorIs(t, err, ident.ErrInsufficientData)
}

func TestRun_Canceled(t *testing.T) {
	exp, err := NewRegistry().Build(tonesConfig(), Env{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = exp.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_NotSetup(t *testing.T) {
	_, err := New(tonesConfig()).Run(context.Background())
	assert.Error(t, err)
}

func TestOutcomeStatus(t *testing.T) {
	out := newOutcome(0)
	assert.Equal(t, ident.Converged, out.Status())

	out.Reports["filter"] = ident.Report{Status: ident.NotConverged}
	out.Reports["estimate"] = ident.Report{Status: ident.Converged}
	assert.Equal(t, ident.NotConverged, out.Status())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"arx", "tones"}, r.ListScenarios())
	assert.Equal(t, []string{"ls", "tls", "rtls"}, r.ListEstimators())

	_, err := r.GetScenario("pendulum")
	assert.Error(t, err)
	_, err = r.GetWeight("bisquare")
	assert.NoError(t, err)
}

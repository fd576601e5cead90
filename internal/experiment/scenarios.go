package experiment

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sysid/internal/arx"
	"github.com/san-kum/sysid/internal/freqresp"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/metrics"
	"github.com/san-kum/sysid/internal/rpca"
	"github.com/san-kum/sysid/internal/tseries"
)

// Tones corrupts a sum of sinusoids with heavy-tailed noise and measures
// how much of it the low-rank filter removes.
type Tones struct{}

func (Tones) Name() string { return "tones" }

func (Tones) Run(ctx context.Context, cfg Config, env Env) (*Outcome, error) {
	rng := tseries.NewRand(cfg.Seed)
	clean := tseries.Sinusoids(cfg.Freqs, cfg.Fs, cfg.Length, cfg.Amplitude)
	noisy, err := tseries.Corrupt(clean, tseries.HeavyTailed(rng, clean.Len(), cfg.NoiseNu), cfg.Noise)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered, report, err := lowRankFilter(noisy.Values, cfg, env)
	if err != nil {
		return nil, err
	}

	out := newOutcome(cfg.Param)
	out.Reports["filter"] = report
	out.Series["clean"] = clean.Values
	out.Series["noisy"] = noisy.Values
	out.Series["filtered"] = filtered

	before, after := metrics.NewRMSError(), metrics.NewRMSError()
	before.Observe(clean.Values, noisy.Values)
	after.Observe(clean.Values, filtered)
	ratio := metrics.NewImprovementRatio()
	ratio.Observe(clean.Values, noisy.Values)
	ratio.Observe(clean.Values, filtered)
	maxErr := metrics.NewMaxAbsError()
	maxErr.Observe(clean.Values, filtered)

	out.Metrics["rms_before"] = before.Value()
	out.Metrics["rms_after"] = after.Value()
	out.Metrics[ratio.Name()] = ratio.Value()
	out.Metrics[maxErr.Name()] = maxErr.Value()
	return out, nil
}

// ARX drives a known ARX system with white noise, corrupts its output
// with heavy-tailed noise and compares the estimated model with the truth.
type ARX struct{}

func (ARX) Name() string { return "arx" }

func (ARX) Run(ctx context.Context, cfg Config, env Env) (*Outcome, error) {
	kind, err := arx.ParseKind(cfg.Estimator)
	if err != nil {
		return nil, err
	}
	weight, err := arx.ParseWeight(cfg.Weight)
	if err != nil {
		return nil, err
	}

	ts := cfg.Ts()
	truth := arx.NewARX(cfg.TrueA, cfg.TrueB, ts)
	rng := tseries.NewRand(cfg.Seed)
	u := tseries.WhiteNoise(rng, cfg.Length, 1)
	clean := tseries.New(truth.Simulate(u), ts)
	noisy, err := tseries.Corrupt(clean, tseries.HeavyTailed(rng, clean.Len(), cfg.NoiseNu), cfg.Noise)
	if err != nil {
		return nil, err
	}

	out := newOutcome(cfg.Param)
	out.Series["u"] = u
	out.Series["y"] = noisy.Values

	y := noisy.Values
	if cfg.Embedding > 0 {
		filtered, report, err := lowRankFilter(y, cfg, env)
		if err != nil {
			return nil, err
		}
		out.Reports["filter"] = report
		out.Series["filtered"] = filtered
		y = filtered
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fit, err := arx.Estimate(u, y, ts, cfg.Na, cfg.Nb, arx.Options{
		Kind:   kind,
		Weight: weight,
		Stop:   cfg.RTLSStop,
		Logger: env.Logger,
	})
	if err != nil {
		return nil, err
	}
	env.Recorder.ObserveReport("estimate", fit.Report)
	out.Reports["estimate"] = fit.Report
	out.Fit = fit

	grid := freqresp.NyquistGrid(ts, cfg.GridPoints)
	want, err := freqresp.Evaluate(truth, grid)
	if err != nil {
		return nil, err
	}
	got, err := freqresp.Evaluate(fit.Model, grid)
	if err != nil {
		return nil, err
	}
	respErr, err := freqresp.MagnitudeRMSError(want, got)
	if err != nil {
		return nil, err
	}
	out.Metrics["response_rms"] = respErr

	if na, nb := truth.Order(); na == cfg.Na && nb == cfg.Nb {
		out.Metrics["param_error"] = relativeError(fit.Theta, truth.Theta())
	}
	return out, nil
}

func lowRankFilter(x []float64, cfg Config, env Env) ([]float64, ident.Report, error) {
	filtered, report, err := rpca.LowRankFilter(x, cfg.Embedding,
		rpca.WithStop(cfg.FilterStop),
		rpca.WithLogger(env.Logger),
	)
	if err != nil {
		return nil, ident.Report{}, err
	}
	env.Recorder.ObserveReport("filter", report)
	return filtered, report, nil
}

func relativeError(got, want []float64) float64 {
	diff := make([]float64, len(want))
	floats.SubTo(diff, got, want)
	n := floats.Norm(want, 2)
	if n == 0 {
		return floats.Norm(diff, 2)
	}
	return floats.Norm(diff, 2) / n
}

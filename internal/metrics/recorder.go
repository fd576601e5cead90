package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/sysid/internal/ident"
)

// Recorder collects stage outcomes on a private registry so that runs can
// be exported as a node-exporter textfile. A nil Recorder discards
// everything.
type Recorder struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	sweepError *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sysid_stage_runs_total",
				Help: "Completed runs of an iterative stage by outcome status",
			},
			[]string{"stage", "status"},
		),
		iterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sysid_stage_iterations",
				Help:    "Iterations used by an iterative stage",
				Buckets: prometheus.ExponentialBuckets(1, 2, 11),
			},
			[]string{"stage"},
		),
		sweepError: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sysid_sweep_error",
				Help: "Primary error metric of a sweep point",
			},
			[]string{"sweep", "param"},
		),
	}
	r.registry.MustRegister(r.runs, r.iterations, r.sweepError)
	return r
}

func (r *Recorder) ObserveReport(stage string, rep ident.Report) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(stage, rep.Status.String()).Inc()
	r.iterations.WithLabelValues(stage).Observe(float64(rep.Iterations))
}

func (r *Recorder) SetSweepError(sweep string, param, value float64) {
	if r == nil {
		return
	}
	r.sweepError.WithLabelValues(sweep, strconv.FormatFloat(param, 'g', -1, 64)).Set(value)
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes every collected metric to path in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

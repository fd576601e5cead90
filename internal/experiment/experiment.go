package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/san-kum/sysid/internal/arx"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/metrics"
)

// Config is the fully resolved description of one experiment run.
type Config struct {
	Scenario  string
	Estimator string
	Weight    string

	// True ARX system for the arx scenario, without the leading 1 of A
	// and the leading delay of B.
	TrueA []float64
	TrueB []float64
	Na    int
	Nb    int

	Length    int
	Fs        float64
	Freqs     []float64
	Amplitude float64

	// Noise is the ratio of noise to signal standard deviation; NoiseNu
	// is the Student-t shape of the noise.
	Noise   float64
	NoiseNu float64

	// Embedding is the lag embedding dimension of the low-rank filter;
	// zero disables filtering where the scenario allows it.
	Embedding  int
	FilterStop ident.Stop
	RTLSStop   ident.Stop

	GridPoints int
	Seed       int64

	// Param is the sweep parameter value this configuration was built for.
	Param float64
}

func (c Config) Ts() float64 {
	if c.Fs <= 0 {
		return 1
	}
	return 1 / c.Fs
}

// Outcome holds the metrics and per-stage reports of one run.
type Outcome struct {
	Param   float64
	Metrics map[string]float64
	Reports map[string]ident.Report
	Series  map[string][]float64
	Fit     *arx.Fit
	Elapsed time.Duration
}

func newOutcome(param float64) *Outcome {
	return &Outcome{
		Param:   param,
		Metrics: make(map[string]float64),
		Reports: make(map[string]ident.Report),
		Series:  make(map[string][]float64),
	}
}

// Status is the least favourable status across the stage reports.
func (o *Outcome) Status() ident.Status {
	worst := ident.Converged
	for _, r := range o.Reports {
		if r.Status > worst {
			worst = r.Status
		}
	}
	return worst
}

// Scenario generates data for a configuration and runs the pipeline on it.
type Scenario interface {
	Name() string
	Run(ctx context.Context, cfg Config, env Env) (*Outcome, error)
}

// Env carries the side channels a scenario may report into.
type Env struct {
	Logger   logr.Logger
	Recorder *metrics.Recorder
}

type Experiment struct {
	cfg      Config
	scenario Scenario
	env      Env
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(scenario Scenario, env Env) error {
	if scenario == nil {
		return fmt.Errorf("experiment: nil scenario")
	}
	e.scenario = scenario
	e.env = env
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.scenario == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := e.scenario.Run(ctx, e.cfg, e.env)
	if err != nil {
		return nil, fmt.Errorf("%s scenario: %w", e.scenario.Name(), err)
	}
	out.Param = e.cfg.Param
	out.Elapsed = time.Since(start)
	return out, nil
}

func (e *Experiment) Config() Config { return e.cfg }

// Package optim selects experiment parameters, such as model order or
// embedding dimension, by exhaustive search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/go-logr/logr"

	"github.com/san-kum/sysid/internal/experiment"
)

// ErrNoCandidate is returned when no grid point produced the metric.
var ErrNoCandidate = errors.New("optim: no grid point produced a result")

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     logr.Logger
	trials     []Trial
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameter names for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

func (g *GridSearch) SetLogger(l logr.Logger) { g.logger = l }

// Trials returns every grid point evaluated by the last Search.
func (g *GridSearch) Trials() []Trial { return g.trials }

// Search minimizes metric over the grid, varying the last parameter
// fastest. Points whose experiment cannot be built or run, or that do not
// report the metric, are recorded as failed trials and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*experiment.Experiment, error),
	metric string,
) (map[string]float64, float64, error) {
	g.trials = g.trials[:0]
	best := -1

	idx := make([]int, len(g.paramNames))
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		trial, err := g.evaluate(ctx, g.point(idx), build, metric)
		if err != nil {
			return nil, 0, err
		}
		g.trials = append(g.trials, trial)
		if trial.Err == nil && (best < 0 || trial.Value < g.trials[best].Value) {
			best = len(g.trials) - 1
		}

		if !g.next(idx) {
			break
		}
	}

	if best < 0 {
		return nil, 0, ErrNoCandidate
	}
	return maps.Clone(g.trials[best].Params), g.trials[best].Value, nil
}

func (g *GridSearch) point(idx []int) map[string]float64 {
	p := make(map[string]float64, len(idx))
	for d, i := range idx {
		p[g.paramNames[d]] = g.ranges[d][i]
	}
	return p
}

// next advances idx like an odometer and reports false once it wraps.
func (g *GridSearch) next(idx []int) bool {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < len(g.ranges[d]) {
			return true
		}
		idx[d] = 0
	}
	return false
}

// evaluate runs one grid point. Only cancellation is returned as an error;
// every other failure is kept on the trial.
func (g *GridSearch) evaluate(
	ctx context.Context,
	params map[string]float64,
	build func(map[string]float64) (*experiment.Experiment, error),
	metric string,
) (Trial, error) {
	trial := Trial{Params: params, Value: math.NaN()}

	exp, err := build(params)
	if err != nil {
		trial.Err = err
		g.logger.Info("skipping grid point", "params", params, "error", err.Error())
		return trial, nil
	}

	out, err := exp.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return trial, ctx.Err()
		}
		trial.Err = err
		g.logger.Info("skipping grid point", "params", params, "error", err.Error())
		return trial, nil
	}

	v, ok := out.Metrics[metric]
	if !ok || math.IsNaN(v) {
		trial.Err = fmt.Errorf("metric %q not reported", metric)
		return trial, nil
	}
	trial.Value = v
	return trial, nil
}

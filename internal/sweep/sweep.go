// Package sweep runs one experiment per parameter value on a bounded pool
// of workers and collects the outcomes keyed by parameter.
package sweep

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/sysid/internal/experiment"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/logging"
	"github.com/san-kum/sysid/internal/metrics"
)

// Point is the outcome of a single sweep parameter value.
type Point struct {
	Index   int
	Param   float64
	Status  ident.Status
	Outcome *experiment.Outcome
}

// Value returns the named metric of the point and whether it exists.
func (p Point) Value(metric string) (float64, bool) {
	if p.Outcome == nil {
		return 0, false
	}
	v, ok := p.Outcome.Metrics[metric]
	return v, ok
}

type Result struct {
	Name    string
	Points  []Point
	Elapsed time.Duration
}

func (r *Result) ByParam() map[float64]Point {
	m := make(map[float64]Point, len(r.Points))
	for _, p := range r.Points {
		m[p.Param] = p
	}
	return m
}

// Series returns the parameters and metric values of the points that
// report the metric, in parameter order.
func (r *Result) Series(metric string) (xs, ys []float64) {
	for _, p := range r.Points {
		if v, ok := p.Value(metric); ok {
			xs = append(xs, p.Param)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

// Counts tallies the points by status.
func (r *Result) Counts() map[ident.Status]int {
	c := make(map[ident.Status]int)
	for _, p := range r.Points {
		c[p.Status]++
	}
	return c
}

// Runner fans a sweep out over Workers goroutines. Build is called once per
// parameter value and must return an independent experiment.
type Runner struct {
	Build    func(param float64) (*experiment.Experiment, error)
	Workers  int
	Metric   string
	Logger   logr.Logger
	Recorder *metrics.Recorder

	// OnPoint, if set, is called from the worker goroutines as points
	// complete and must be safe for concurrent use.
	OnPoint func(Point)
}

// Run evaluates every parameter value. Non-convergence of a point is
// recorded in its status; a structural error of any point cancels the
// remaining work and is returned.
func (r *Runner) Run(ctx context.Context, name string, params []float64) (*Result, error) {
	if r.Build == nil {
		return nil, fmt.Errorf("sweep %s: no experiment builder", name)
	}
	if len(params) == 0 {
		return nil, ident.Dimension("sweep", "no parameter values")
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	points := make([]Point, len(params))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, param := range params {
		g.Go(func() error {
			exp, err := r.Build(param)
			if err != nil {
				return fmt.Errorf("sweep %s at %g: %w", name, param, err)
			}
			out, err := exp.Run(gctx)
			if err != nil {
				return fmt.Errorf("sweep %s at %g: %w", name, param, err)
			}

			p := Point{Index: i, Param: param, Status: out.Status(), Outcome: out}
			points[i] = p

			if v, ok := p.Value(r.Metric); ok {
				r.Recorder.SetSweepError(name, param, v)
			}
			r.Logger.V(logging.DEBUG).Info("sweep point done", "sweep", name, "param", param,
				"status", p.Status.String(), "elapsed", out.Elapsed)
			if r.OnPoint != nil {
				r.OnPoint(p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(points, func(a, b int) bool { return points[a].Param < points[b].Param })
	return &Result{Name: name, Points: points, Elapsed: time.Since(start)}, nil
}

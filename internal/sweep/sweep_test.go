package sweep_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sysid/internal/experiment"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/metrics"
	"github.com/san-kum/sysid/internal/sweep"
)

var errBoom = errors.New("boom")

// squareScenario reports param² and fails to converge for params above 2.
type squareScenario struct {
	running *int32
	peak    *int32
}

func (squareScenario) Name() string { return "square" }

func (s squareScenario) Run(ctx context.Context, cfg experiment.Config, env experiment.Env) (*experiment.Outcome, error) {
	if s.running != nil {
		n := atomic.AddInt32(s.running, 1)
		for {
			p := atomic.LoadInt32(s.peak)
			if n <= p || atomic.CompareAndSwapInt32(s.peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(s.running, -1)
	}
	if cfg.Param < 0 {
		return nil, errBoom
	}
	status := ident.Converged
	if cfg.Param > 2 {
		status = ident.NotConverged
	}
	return &experiment.Outcome{
		Metrics: map[string]float64{"square": cfg.Param * cfg.Param},
		Reports: map[string]ident.Report{"fake": {Status: status}},
	}, nil
}

func builder(sc experiment.Scenario) func(float64) (*experiment.Experiment, error) {
	return func(param float64) (*experiment.Experiment, error) {
		exp := experiment.New(experiment.Config{Param: param})
		if err := exp.Setup(sc, experiment.Env{}); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

var _ = Describe("Runner", func() {
	var (
		ctx    context.Context
		runner *sweep.Runner
	)

	BeforeEach(func() {
		ctx = context.Background()
		runner = &sweep.Runner{
			Build:   builder(squareScenario{}),
			Workers: 3,
			Metric:  "square",
		}
	})

	It("keys every outcome by its parameter", func() {
		res, err := runner.Run(ctx, "square", []float64{3, 1, 2, 0.5})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Points).To(HaveLen(4))

		xs, ys := res.Series("square")
		Expect(xs).To(Equal([]float64{0.5, 1, 2, 3}))
		Expect(ys).To(Equal([]float64{0.25, 1, 4, 9}))

		byParam := res.ByParam()
		Expect(byParam).To(HaveKey(2.0))
		Expect(byParam[2].Index).To(Equal(2))
	})

	It("records non-convergence per point without aborting", func() {
		res, err := runner.Run(ctx, "square", []float64{1, 2, 3, 4})
		Expect(err).NotTo(HaveOccurred())

		counts := res.Counts()
		Expect(counts[ident.Converged]).To(Equal(2))
		Expect(counts[ident.NotConverged]).To(Equal(2))
	})

	It("aborts on a structural error", func() {
		_, err := runner.Run(ctx, "square", []float64{1, -1, 2})
		Expect(err).To(MatchError(errBoom))
	})

	It("rejects an empty sweep", func() {
		_, err := runner.Run(ctx, "square", nil)
		Expect(errors.Is(err, ident.ErrInvalidDimension)).To(BeTrue())
	})

	It("never exceeds the worker limit", func() {
		var running, peak int32
		runner.Build = builder(squareScenario{running: &running, peak: &peak})
		runner.Workers = 2

		_, err := runner.Run(ctx, "square", []float64{1, 2, 3, 4, 5, 6, 7, 8})
		Expect(err).NotTo(HaveOccurred())
		Expect(atomic.LoadInt32(&peak)).To(BeNumerically("<=", 2))
	})

	It("reports points as they complete", func() {
		var mu sync.Mutex
		var seen []float64
		runner.OnPoint = func(p sweep.Point) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, p.Param)
		}

		_, err := runner.Run(ctx, "square", []float64{1, 2, 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(ConsistOf(1.0, 2.0, 3.0))
	})

	It("publishes the sweep metric to the recorder", func() {
		runner.Recorder = metrics.NewRecorder()
		_, err := runner.Run(ctx, "square", []float64{1, 2})
		Expect(err).NotTo(HaveOccurred())

		families, err := runner.Recorder.Registry().Gather()
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}
		Expect(names).To(ContainElement("sysid_sweep_error"))
	})
})

var _ = Describe("Slope", func() {
	It("recovers a power law exponent", func() {
		xs := []float64{10, 20, 40, 80}
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = 3 * x * x
		}
		b, err := sweep.Slope(xs, ys)
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(BeNumerically("~", 2, 1e-9))
	})

	It("rejects non-positive samples", func() {
		_, err := sweep.Slope([]float64{1, 2}, []float64{0, 1})
		Expect(errors.Is(err, ident.ErrInvalidDimension)).To(BeTrue())
	})
})

var _ = Describe("TimeDecomposition", func() {
	It("times each embedding dimension", func() {
		x, err := sweep.BenchSignal(600, 1)
		Expect(err).NotTo(HaveOccurred())

		timings, err := sweep.TimeDecomposition(context.Background(), x, []int{10, 20, 40}, 1,
			ident.Stop{MaxIter: 3, Tol: 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(timings).To(HaveLen(3))
		for _, tm := range timings {
			Expect(tm.Elapsed).To(BeNumerically(">", 0))
			Expect(tm.Report.Iterations).To(Equal(3))
		}

		_, err = sweep.GrowthExponent(timings)
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails for an embedding longer than the series", func() {
		_, err := sweep.TimeDecomposition(context.Background(), make([]float64, 10), []int{10}, 1,
			ident.Stop{MaxIter: 1, Tol: 0})
		Expect(errors.Is(err, ident.ErrInvalidDimension)).To(BeTrue())
	})
})

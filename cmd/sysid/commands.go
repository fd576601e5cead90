package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/sysid/internal/arx"
	"github.com/san-kum/sysid/internal/config"
	"github.com/san-kum/sysid/internal/experiment"
	"github.com/san-kum/sysid/internal/freqresp"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/lagembed"
	"github.com/san-kum/sysid/internal/optim"
	"github.com/san-kum/sysid/internal/rpca"
	"github.com/san-kum/sysid/internal/storage"
	"github.com/san-kum/sysid/internal/sweep"
	"github.com/san-kum/sysid/internal/tui"
)

const (
	plotWidth = 80
	rankTol   = 1e-3
	maxPeaks  = 4
)

func runFilter(cmd *cobra.Command, args []string) error {
	if inputFile != "" {
		return filterFile(cmd)
	}

	cfg, err := loadScenarioConfig(cmd, "tones")
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}

	exp, err := experiment.NewRegistry().Build(cfg.Experiment(), env)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("filtering %d samples, embedding %d\n", cfg.Signal.Length, cfg.Filter.Embedding)
	out, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("filter: %s\n", out.Reports["filter"])
	printMetrics(out.Metrics)
	fmt.Printf("elapsed: %v\n", out.Elapsed.Round(time.Millisecond))

	window := min(200, len(out.Series["filtered"]))
	if window == 0 {
		return fmt.Errorf("scenario %s produced no filtered series", cfg.Scenario)
	}
	if err := describeFiltered(out.Series["noisy"], out.Series["filtered"], cfg.Filter.Embedding, cfg.Signal.Fs); err != nil {
		return err
	}
	fmt.Println(asciigraph.PlotMany(
		[][]float64{out.Series["noisy"][:window], out.Series["clean"][:window], out.Series["filtered"][:window]},
		asciigraph.Height(12),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green),
		asciigraph.SeriesLegends("noisy", "clean", "filtered"),
		asciigraph.Caption(fmt.Sprintf("first %d samples", window)),
	))

	if outputFile != "" {
		if err := storage.WriteSeriesCSV(outputFile, []string{"clean", "noisy", "filtered"},
			out.Series["clean"], out.Series["noisy"], out.Series["filtered"]); err != nil {
			return err
		}
		fmt.Printf("series written to %s\n", outputFile)
	}
	return flushMetrics(env)
}

func filterFile(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, "tones")
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}

	header, cols, err := storage.ReadSeriesCSV(inputFile)
	if err != nil {
		return err
	}
	x, err := storage.Column(header, cols, column)
	if err != nil {
		return err
	}

	start := time.Now()
	filtered, report, err := rpca.LowRankFilter(x, cfg.Filter.Embedding,
		rpca.WithStop(cfg.FilterStop()),
		rpca.WithLogger(env.Logger),
	)
	if err != nil {
		return err
	}
	env.Recorder.ObserveReport("filter", report)

	fmt.Printf("filter: %s\n", report)
	fmt.Printf("elapsed: %v\n", since(start))
	if err := describeFiltered(x, filtered, cfg.Filter.Embedding, 1/ts); err != nil {
		return err
	}

	window := min(200, len(x))
	fmt.Println(asciigraph.PlotMany(
		[][]float64{x[:window], filtered[:window]},
		asciigraph.Height(12),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends(column, "filtered"),
	))

	if outputFile != "" {
		if err := storage.WriteSeriesCSV(outputFile, []string{column, column + "_filtered"}, x, filtered); err != nil {
			return err
		}
		fmt.Printf("series written to %s\n", outputFile)
	}
	return flushMetrics(env)
}

// describeFiltered prints the numerical rank of the lag embedding before
// and after filtering and the strongest spectral lines that remain.
func describeFiltered(noisy, filtered []float64, n int, fs float64) error {
	before, err := lagembed.Embed(noisy, n)
	if err != nil {
		return err
	}
	after, err := lagembed.Embed(filtered, n)
	if err != nil {
		return err
	}
	fmt.Printf("rank:    %d -> %d\n", rpca.NumericalRank(before, rankTol), rpca.NumericalRank(after, rankTol))

	peaks := freqresp.DominantFrequencies(filtered, fs, maxPeaks)
	parts := make([]string, len(peaks))
	for i, f := range peaks {
		parts[i] = fmt.Sprintf("%.4g", f)
	}
	fmt.Printf("peaks:   %s Hz\n\n", strings.Join(parts, ", "))
	return nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if inputFile != "" {
		return estimateFile(cmd)
	}

	cfg, err := loadScenarioConfig(cmd, "arx")
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}

	exp, err := experiment.NewRegistry().Build(cfg.Experiment(), env)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	out, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	if out.Fit == nil {
		return fmt.Errorf("scenario %s produced no model", cfg.Scenario)
	}

	ts := 1 / cfg.Signal.Fs
	truth := arx.NewARX(cfg.System.A, cfg.System.B, ts)
	fmt.Printf("true model:      %s\n", truth)
	fmt.Printf("estimated model: %s\n", out.Fit.Model)
	if r, ok := out.Reports["filter"]; ok {
		fmt.Printf("filter:   %s\n", r)
	}
	fmt.Printf("estimate: %s (%s)\n", out.Fit.Report, out.Fit.Kind)
	printMetrics(out.Metrics)
	fmt.Println()

	if err := plotResponses(ts, cfg.Response.Points, []*arx.Model{truth, out.Fit.Model}, []string{"true", "estimated"}); err != nil {
		return err
	}
	return flushMetrics(env)
}

func estimateFile(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, "arx")
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}
	opts, err := estimatorOptions(cfg, env)
	if err != nil {
		return err
	}

	header, cols, err := storage.ReadSeriesCSV(inputFile)
	if err != nil {
		return err
	}
	y, err := storage.Column(header, cols, column)
	if err != nil {
		return err
	}
	var u []float64
	order := cfg.System.Nb
	if inputCol == "" {
		order = 0
	} else if u, err = storage.Column(header, cols, inputCol); err != nil {
		return err
	}

	if cmd.Flags().Changed("embedding") {
		filtered, report, err := rpca.LowRankFilter(y, cfg.Filter.Embedding,
			rpca.WithStop(cfg.FilterStop()),
			rpca.WithLogger(env.Logger),
		)
		if err != nil {
			return err
		}
		env.Recorder.ObserveReport("filter", report)
		fmt.Printf("filter:   %s\n", report)
		y = filtered
	}

	fit, err := arx.Estimate(u, y, ts, cfg.System.Na, order, opts)
	if err != nil {
		return err
	}
	env.Recorder.ObserveReport("estimate", fit.Report)

	fmt.Printf("estimate: %s (%s)\n", fit.Report, fit.Kind)
	fmt.Printf("model:    %s\n", fit.Model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tVALUE")
	for i, v := range fit.Theta {
		name := fmt.Sprintf("a%d", i+1)
		if i >= cfg.System.Na {
			name = fmt.Sprintf("b%d", i-cfg.System.Na+1)
		}
		fmt.Fprintf(w, "%s\t%.6g\n", name, v)
	}
	w.Flush()
	fmt.Println()

	if err := plotResponses(ts, cfg.Response.Points, []*arx.Model{fit.Model}, []string{"estimated"}); err != nil {
		return err
	}
	return flushMetrics(env)
}

func estimatorOptions(cfg *config.Config, env experiment.Env) (arx.Options, error) {
	kind, err := arx.ParseKind(cfg.Estimator)
	if err != nil {
		return arx.Options{}, err
	}
	wf, err := arx.ParseWeight(cfg.Weight)
	if err != nil {
		return arx.Options{}, err
	}
	return arx.Options{Kind: kind, Weight: wf, Stop: cfg.RTLSStop(), Logger: env.Logger}, nil
}

func runResponse(cmd *cobra.Command, args []string) error {
	if len(coefA) == 0 {
		return fmt.Errorf("at least one denominator coefficient is required")
	}
	if gridPoints < 2 {
		return fmt.Errorf("need at least 2 grid points, got %d", gridPoints)
	}
	if ts <= 0 {
		return fmt.Errorf("sample time must be positive, got %g", ts)
	}

	var m *arx.Model
	if len(coefB) == 0 {
		m = arx.NewAR(coefA, ts)
	} else {
		m = arx.NewARX(coefA, coefB, ts)
	}
	fmt.Printf("model: %s\n\n", m)

	grid := freqresp.NyquistGrid(ts, gridPoints)
	if logGrid {
		grid = freqresp.Logspace(grid[0], grid[len(grid)-1], gridPoints)
	}
	resp, err := freqresp.Evaluate(m, grid)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OMEGA\tMAG (dB)\tPHASE (rad)")
	db := resp.MagnitudeDB()
	step := max(1, resp.Len()/16)
	for i := 0; i < resp.Len(); i += step {
		fmt.Fprintf(w, "%.4g\t%.2f\t%.3f\n", resp.W[i], db[i], resp.Phase[i])
	}
	w.Flush()
	fmt.Println()

	if inputFile == "" {
		fmt.Println(asciigraph.Plot(finite(db),
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(gridCaption()),
		))
		return nil
	}

	header, cols, err := storage.ReadSeriesCSV(inputFile)
	if err != nil {
		return err
	}
	u, err := storage.Column(header, cols, "u")
	if err != nil {
		return err
	}
	y, err := storage.Column(header, cols, "y")
	if err != nil {
		return err
	}
	welch, err := freqresp.WelchGain(u, y, 1/ts, nfft)
	if err != nil {
		return err
	}
	model, err := freqresp.Evaluate(m, welch.W[1:])
	if err != nil {
		return err
	}
	est := &freqresp.Response{W: welch.W[1:], Mag: welch.Mag[1:]}
	rms, err := freqresp.MagnitudeRMSError(model, est)
	if err != nil {
		return err
	}

	etfe, err := freqresp.ETFE(u, y, ts)
	if err != nil {
		return err
	}
	etfeRMS, err := etfeError(m, etfe)
	if err != nil {
		return err
	}

	fmt.Printf("magnitude rms difference to Welch estimate: %.4g\n", rms)
	fmt.Printf("magnitude rms difference to ETFE:           %.4g\n\n", etfeRMS)
	fmt.Println(asciigraph.PlotMany(
		[][]float64{finite(model.MagnitudeDB()), finite(est.MagnitudeDB())},
		asciigraph.Height(10),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Yellow),
		asciigraph.SeriesLegends("model", "welch"),
		asciigraph.Caption("magnitude (dB)"),
	))
	return nil
}

// etfeError compares m with an empirical transfer function estimate away
// from DC.
func etfeError(m *arx.Model, etfe *freqresp.Response) (float64, error) {
	est := &freqresp.Response{}
	for i, w := range etfe.W {
		if w > 0 {
			est.W = append(est.W, w)
			est.Mag = append(est.Mag, etfe.Mag[i])
		}
	}
	model, err := freqresp.Evaluate(m, est.W)
	if err != nil {
		return 0, err
	}
	return freqresp.MagnitudeRMSError(model, est)
}

func gridCaption() string {
	if logGrid {
		return "magnitude (dB), log frequency grid"
	}
	return "magnitude (dB) up to Nyquist"
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "tones")
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}
	if len(cfg.Sweep.Values) == 0 {
		return fmt.Errorf("no sweep values")
	}
	apply, err := sweepSetter(cfg.Sweep.Param)
	if err != nil {
		return err
	}

	metric := metricName
	if metric == "" {
		metric = defaultMetric(cfg.Scenario)
	}

	reg := experiment.NewRegistry()
	base := cfg.Experiment()
	runner := sweep.Runner{
		Build: func(param float64) (*experiment.Experiment, error) {
			ec := base
			ec.Freqs = append([]float64(nil), base.Freqs...)
			ec.Param = param
			apply(&ec, param)
			return reg.Build(ec, env)
		},
		Workers:  cfg.Sweep.Workers,
		Metric:   metric,
		Logger:   env.Logger,
		Recorder: env.Recorder,
	}

	ctx, cancel := signalContext()
	defer cancel()

	name := fmt.Sprintf("%s_%s", cfg.Scenario, cfg.Sweep.Param)
	var res *sweep.Result
	if live {
		res, err = tui.RunSweep(ctx, runner, name, cfg.Sweep.Values)
	} else {
		fmt.Printf("sweeping %s over %d values with %d workers\n", cfg.Sweep.Param, len(cfg.Sweep.Values), cfg.Sweep.Workers)
		res, err = runner.Run(ctx, name, cfg.Sweep.Values)
	}
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveSweep(storage.RunMetadata{
		Name:      name,
		Param:     cfg.Sweep.Param,
		Scenario:  cfg.Scenario,
		Estimator: cfg.Estimator,
		Seed:      cfg.Seed,
		Settings: map[string]string{
			"length":    fmt.Sprint(cfg.Signal.Length),
			"embedding": fmt.Sprint(cfg.Filter.Embedding),
			"noise":     fmt.Sprint(cfg.Noise.Ratio),
			"metric":    metric,
		},
	}, res)
	if err != nil {
		return err
	}

	printPoints(storage.Records(res), metric)
	fmt.Printf("\nrun saved: %s (%v)\n", runID, res.Elapsed.Round(time.Millisecond))

	if xs, ys := res.Series(metric); len(ys) > 1 {
		plotMetric(xs, ys, metric, cfg.Sweep.Param)
	}
	return flushMetrics(env)
}

// sweepSetter returns the function that writes a swept value into an
// experiment configuration.
func sweepSetter(param string) (func(*experiment.Config, float64), error) {
	switch param {
	case "noise":
		return func(c *experiment.Config, v float64) { c.Noise = v }, nil
	case "nu":
		return func(c *experiment.Config, v float64) { c.NoiseNu = v }, nil
	case "embedding":
		return func(c *experiment.Config, v float64) { c.Embedding = int(v) }, nil
	case "length":
		return func(c *experiment.Config, v float64) { c.Length = int(v) }, nil
	case "seed":
		return func(c *experiment.Config, v float64) { c.Seed = int64(v) }, nil
	default:
		return nil, fmt.Errorf("unknown sweep parameter: %s (available: noise, nu, embedding, length, seed)", param)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "arx")
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	if len(searchNa) > 0 {
		names, ranges = append(names, "na"), append(ranges, searchNa)
	}
	if len(searchNb) > 0 {
		names, ranges = append(names, "nb"), append(ranges, searchNb)
	}
	if len(searchEmbedding) > 0 {
		names, ranges = append(names, "embedding"), append(ranges, searchEmbedding)
	}
	if len(names) == 0 {
		return fmt.Errorf("nothing to search: set --na-grid, --nb-grid or --embedding-grid")
	}

	metric := metricName
	if metric == "" {
		metric = "response_rms"
		if cfg.Scenario == "tones" {
			metric = "rms_after"
		}
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	gs.SetLogger(env.Logger)

	reg := experiment.NewRegistry()
	base := cfg.Experiment()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		ec := base
		ec.Freqs = append([]float64(nil), base.Freqs...)
		if v, ok := params["na"]; ok {
			ec.Na = int(v)
		}
		if v, ok := params["nb"]; ok {
			ec.Nb = int(v)
		}
		if v, ok := params["embedding"]; ok {
			ec.Embedding = int(v)
		}
		return reg.Build(ec, env)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching %s over %v minimizing %s\n", cfg.Scenario, names, metric)
	best, value, err := gs.Search(ctx, build, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
	for _, t := range gs.Trials() {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, fmt.Sprintf("%g", t.Params[n]))
		}
		if t.Err != nil {
			row = append(row, "error: "+t.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.4g", t.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()

	fmt.Printf("\nbest: %v (%s = %.4g)\n", best, metric, value)
	return flushMetrics(env)
}

func runBench(cmd *cobra.Command, args []string) error {
	if len(benchDims) < 2 {
		return fmt.Errorf("need at least 2 dimensions to fit growth")
	}
	x, err := sweep.BenchSignal(benchLength, seed)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("timing %d decomposition iterations on %d samples\n", benchIters, benchLength)
	timings, err := sweep.TimeDecomposition(ctx, x, benchDims, benchReps, ident.Stop{MaxIter: benchIters, Tol: 0})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIM\tELAPSED\tPER ITER\tSTATUS")
	for _, t := range timings {
		per := t.Elapsed / time.Duration(max(1, t.Report.Iterations))
		fmt.Fprintf(w, "%d\t%v\t%v\t%s\n", t.Dim, t.Elapsed.Round(time.Microsecond), per.Round(time.Microsecond), t.Report.Status)
	}
	w.Flush()

	slope, err := sweep.GrowthExponent(timings)
	if err != nil {
		return err
	}
	fmt.Printf("\ngrowth exponent: %.2f\n", slope)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	if components {
		listComponents()
		return nil
	}
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tPARAM\tPOINTS\tSTATUS\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID, run.Scenario, run.Param, run.Points, statusSummary(run.Statuses),
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	return nil
}

func listComponents() {
	reg := experiment.NewRegistry()
	fmt.Printf("scenarios:  %s\n", strings.Join(reg.ListScenarios(), ", "))
	fmt.Printf("estimators: %s\n", strings.Join(reg.ListEstimators(), ", "))
	fmt.Printf("weights:    %s\n", strings.Join(reg.ListWeights(), ", "))
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	points, err := st.LoadPoints(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:       %s\n", meta.ID)
	fmt.Printf("scenario:  %s\n", meta.Scenario)
	if meta.Estimator != "" {
		fmt.Printf("estimator: %s\n", meta.Estimator)
	}
	fmt.Printf("swept:     %s (%d points)\n", meta.Param, meta.Points)
	fmt.Printf("status:    %s\n", statusSummary(meta.Statuses))
	fmt.Printf("elapsed:   %.2fs\n\n", meta.Elapsed)

	metric := metricName
	if metric == "" {
		metric = meta.Settings["metric"]
	}
	printPoints(points, metric)

	var xs, ys []float64
	for _, p := range points {
		if v, ok := p.Metrics[metric]; ok {
			xs = append(xs, p.Param)
			ys = append(ys, v)
		}
	}
	if len(ys) > 1 {
		plotMetric(xs, ys, metric, meta.Param)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outputFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outputFile)
	return nil
}

func printMetrics(m map[string]float64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-14s %.6g\n", k+":", m[k])
	}
}

func printPoints(points []storage.PointRecord, metric string) {
	names := map[string]bool{}
	for _, p := range points {
		for k := range p.Metrics {
			names[k] = true
		}
	}
	cols := make([]string, 0, len(names))
	for k := range names {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PARAM\tSTATUS\t%s\n", strings.ToUpper(strings.Join(cols, "\t")))
	for _, p := range points {
		row := []string{fmt.Sprintf("%g", p.Param), p.Status}
		for _, c := range cols {
			v, ok := p.Metrics[c]
			switch {
			case !ok:
				row = append(row, "-")
			case c == metric:
				row = append(row, fmt.Sprintf("*%.4g", v))
			default:
				row = append(row, fmt.Sprintf("%.4g", v))
			}
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func plotMetric(xs, ys []float64, metric, param string) {
	fmt.Println()
	fmt.Println(asciigraph.Plot(finite(ys),
		asciigraph.Height(10),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("%s vs %s (%g .. %g)", metric, param, xs[0], xs[len(xs)-1])),
	))
}

func plotResponses(ts float64, points int, models []*arx.Model, legends []string) error {
	grid := freqresp.NyquistGrid(ts, points)
	series := make([][]float64, 0, len(models))
	for _, m := range models {
		resp, err := freqresp.Evaluate(m, grid)
		if err != nil {
			return err
		}
		series = append(series, finite(resp.MagnitudeDB()))
	}
	fmt.Println(asciigraph.PlotMany(series,
		asciigraph.Height(10),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("magnitude (dB) up to Nyquist"),
	))
	return nil
}

func statusSummary(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

// finite replaces infinities, which asciigraph cannot scale, with NaN.
func finite(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/san-kum/sysid/internal/config"
	"github.com/san-kum/sysid/internal/experiment"
	"github.com/san-kum/sysid/internal/logging"
	"github.com/san-kum/sysid/internal/metrics"
)

var (
	dataDir     string
	configFile  string
	preset      string
	verbosity   int
	development bool
	metricsFile string

	scenario   string
	seed       int64
	length     int
	noise      float64
	noiseNu    float64
	embedding  int
	filterTol  float64
	filterIter int
	estimator  string
	weight     string
	na         int
	nb         int
	rtlsTol    float64
	rtlsIter   int

	inputFile  string
	outputFile string
	column     string
	inputCol   string
	ts         float64

	sweepParam  string
	sweepValues []float64
	workers     int
	live        bool
	metricName  string

	coefA      []float64
	coefB      []float64
	gridPoints int
	logGrid    bool
	nfft       int

	searchNa        []float64
	searchNb        []float64
	searchEmbedding []float64

	benchLength int
	benchDims  []int
	benchReps  int
	benchIters int

	components bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers the sysid commands on a fresh root command.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sysid",
		Short:         "robust low-rank filtering and AR/ARX identification",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sysid", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbose", "v", 0, "log verbosity (1 debug, 2 trace)")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "development logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus textfile metrics to path")

	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "remove impulsive noise with the lag-embedding low-rank filter",
		RunE:  runFilter,
	}
	addSignalFlags(filterCmd)
	addFilterFlags(filterCmd)
	filterCmd.Flags().StringVar(&inputFile, "input", "", "filter a column of this CSV instead of a synthetic signal")
	filterCmd.Flags().StringVar(&column, "column", "y", "column to filter")
	filterCmd.Flags().StringVar(&outputFile, "output", "", "write original and filtered series to CSV")
	filterCmd.Flags().Float64Var(&ts, "ts", 1, "sample time of CSV data")

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "estimate an AR/ARX model with ls, tls or rtls",
		RunE:  runEstimate,
	}
	addSignalFlags(estimateCmd)
	addFilterFlags(estimateCmd)
	addEstimatorFlags(estimateCmd)
	estimateCmd.Flags().StringVar(&inputFile, "input", "", "estimate from this CSV instead of a synthetic system")
	estimateCmd.Flags().StringVar(&inputCol, "u", "u", "input column (empty for AR)")
	estimateCmd.Flags().StringVar(&column, "y", "y", "output column")
	estimateCmd.Flags().Float64Var(&ts, "ts", 1, "sample time of CSV data")

	responseCmd := &cobra.Command{
		Use:   "response",
		Short: "evaluate the frequency response of a model",
		RunE:  runResponse,
	}
	responseCmd.Flags().Float64SliceVar(&coefA, "a", []float64{-1.5, 0.7}, "denominator coefficients a1..a_na")
	responseCmd.Flags().Float64SliceVar(&coefB, "b", nil, "numerator coefficients b1..b_nb (empty for AR)")
	responseCmd.Flags().Float64Var(&ts, "ts", 1, "sample time")
	responseCmd.Flags().IntVar(&gridPoints, "points", 64, "frequency grid points")
	responseCmd.Flags().BoolVar(&logGrid, "log", false, "space the grid logarithmically")
	responseCmd.Flags().StringVar(&inputFile, "input", "", "compare with Welch and ETFE estimates from this u/y CSV")
	responseCmd.Flags().IntVar(&nfft, "nfft", 256, "Welch segment length")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a scenario over noise levels or embedding dimensions",
		RunE:  runSweep,
	}
	addSignalFlags(sweepCmd)
	addFilterFlags(sweepCmd)
	addEstimatorFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "noise", "swept parameter (noise or embedding)")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "parameter values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default from config)")
	sweepCmd.Flags().BoolVar(&live, "live", false, "show live progress")
	sweepCmd.Flags().StringVar(&metricName, "metric", "", "metric to report (default per scenario)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search over model order and embedding dimension",
		RunE:  runSearch,
	}
	addSignalFlags(searchCmd)
	addFilterFlags(searchCmd)
	addEstimatorFlags(searchCmd)
	searchCmd.Flags().Float64SliceVar(&searchNa, "na-grid", nil, "denominator orders to try")
	searchCmd.Flags().Float64SliceVar(&searchNb, "nb-grid", nil, "numerator orders to try")
	searchCmd.Flags().Float64SliceVar(&searchEmbedding, "embedding-grid", nil, "embedding dimensions to try")
	searchCmd.Flags().StringVar(&metricName, "metric", "", "metric to minimize (default per scenario)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure decomposition cost against embedding dimension",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchLength, "length", 4000, "series length")
	benchCmd.Flags().IntSliceVar(&benchDims, "dims", []int{25, 50, 100, 200}, "embedding dimensions")
	benchCmd.Flags().IntVar(&benchReps, "reps", 3, "repetitions per dimension")
	benchCmd.Flags().IntVar(&benchIters, "iters", 5, "fixed decomposition iterations")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored sweeps",
		RunE:  listRuns,
	}
	listCmd.Flags().BoolVar(&components, "components", false, "list scenarios, estimators and weights instead")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&metricName, "metric", "", "metric to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored sweep as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outputFile, "output", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(filterCmd, estimateCmd, responseCmd, sweepCmd, searchCmd, benchCmd, listCmd, showCmd, exportCmd, presetsCmd)
	return rootCmd
}

func addSignalFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario (tones or arx)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&length, "length", config.DefaultLength, "series length")
	cmd.Flags().Float64Var(&noise, "noise", config.DefaultNoise, "noise to signal std ratio")
	cmd.Flags().Float64Var(&noiseNu, "nu", config.DefaultNoiseNu, "Student-t shape of the noise")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&embedding, "embedding", "n", config.DefaultEmbedding, "lag embedding dimension")
	cmd.Flags().Float64Var(&filterTol, "filter-tol", config.DefaultFilterTol, "decomposition tolerance")
	cmd.Flags().IntVar(&filterIter, "filter-iters", config.DefaultFilterIter, "decomposition iteration budget")
}

func addEstimatorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&estimator, "estimator", "rtls", "estimator (ls, tls, rtls)")
	cmd.Flags().StringVar(&weight, "weight", "bisquare", "final robust weight (bisquare, huber)")
	cmd.Flags().IntVar(&na, "na", 2, "denominator order")
	cmd.Flags().IntVar(&nb, "nb", 2, "numerator order (0 for AR)")
	cmd.Flags().Float64Var(&rtlsTol, "rtls-tol", config.DefaultRTLSTol, "rtls tolerance")
	cmd.Flags().IntVar(&rtlsIter, "rtls-iters", config.DefaultRTLSIter, "rtls iteration budget")
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order of precedence.
func loadConfig(cmd *cobra.Command, defaultScenario string) (*config.Config, error) {
	name := defaultScenario
	if cmd.Flags().Changed("scenario") {
		name = scenario
	}
	cfg := config.ScenarioDefaults(name)

	if preset != "" {
		p := config.GetPreset(cfg.Scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scenario))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cmd.Flags().Changed("scenario") {
			cfg.Scenario = scenario
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("length") {
		cfg.Signal.Length = length
	}
	if flags.Changed("noise") {
		cfg.Noise.Ratio = noise
	}
	if flags.Changed("nu") {
		cfg.Noise.Nu = noiseNu
	}
	if flags.Changed("embedding") {
		cfg.Filter.Embedding = embedding
	}
	if flags.Changed("filter-tol") {
		cfg.Filter.Tol = filterTol
	}
	if flags.Changed("filter-iters") {
		cfg.Filter.MaxIter = filterIter
	}
	if flags.Changed("estimator") {
		cfg.Estimator = estimator
	}
	if flags.Changed("weight") {
		cfg.Weight = weight
	}
	if flags.Changed("na") {
		cfg.System.Na = na
	}
	if flags.Changed("nb") {
		cfg.System.Nb = nb
	}
	if flags.Changed("rtls-tol") {
		cfg.RTLS.Tol = rtlsTol
	}
	if flags.Changed("rtls-iters") {
		cfg.RTLS.MaxIter = rtlsIter
	}
	if flags.Changed("workers") {
		cfg.Sweep.Workers = workers
	}
	if flags.Changed("values") {
		cfg.Sweep.Values = sweepValues
	}
	if flags.Changed("param") {
		cfg.Sweep.Param = sweepParam
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadScenarioConfig is loadConfig for commands bound to one scenario.
func loadScenarioConfig(cmd *cobra.Command, want string) (*config.Config, error) {
	cfg, err := loadConfig(cmd, want)
	if err != nil {
		return nil, err
	}
	if cfg.Scenario != want {
		return nil, fmt.Errorf("%s runs the %s scenario, not %s", cmd.Name(), want, cfg.Scenario)
	}
	return cfg, nil
}

func newLogger() (logr.Logger, error) {
	return logging.New(logging.Options{Development: development, Verbosity: verbosity})
}

// newEnv builds the logger and, when --metrics-file is set, a recorder.
func newEnv() (experiment.Env, error) {
	log, err := newLogger()
	if err != nil {
		return experiment.Env{}, err
	}
	env := experiment.Env{Logger: log}
	if metricsFile != "" {
		env.Recorder = metrics.NewRecorder()
	}
	return env, nil
}

func flushMetrics(env experiment.Env) error {
	if metricsFile == "" {
		return nil
	}
	return env.Recorder.WriteTextfile(metricsFile)
}

// signalContext is canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func defaultMetric(scenario string) string {
	if scenario == "arx" {
		return "param_error"
	}
	return "improvement"
}

func since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}

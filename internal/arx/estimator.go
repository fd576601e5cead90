package arx

import (
	"fmt"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/logging"
)

// Kind selects the regression solver.
type Kind int

const (
	LS Kind = iota
	TLS
	RTLS
)

var kindNames = map[Kind]string{
	LS:   "ls",
	TLS:  "tls",
	RTLS: "rtls",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a solver by its lower-case name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown estimator %q (want ls, tls or rtls)", name)
}

// Kinds lists every solver in declaration order.
func Kinds() []Kind {
	return []Kind{LS, TLS, RTLS}
}

// Options configures an estimation run. Stop and Weight only affect RTLS.
type Options struct {
	Kind   Kind
	Weight WeightFunc
	Stop   ident.Stop
	Logger logr.Logger
}

// DefaultStop is the RTLS iteration contract.
var DefaultStop = ident.Stop{MaxIter: 400, Tol: 2e-6}

func DefaultOptions() Options {
	return Options{
		Kind:   RTLS,
		Weight: Bisquare(BisquareC),
		Stop:   DefaultStop,
	}
}

// Solve returns the parameter vector θ minimizing the solver's criterion
// for A·θ ≈ b.
func (k Kind) Solve(A *mat.Dense, b *mat.VecDense, opts Options) ([]float64, ident.Report, error) {
	switch k {
	case LS:
		return solveLS(A, b, opts)
	case TLS:
		return solveTLS(A, b, opts)
	case RTLS:
		if err := opts.Stop.Validate(); err != nil {
			return nil, ident.Report{}, err
		}
		return solveRTLS(A, b, opts)
	default:
		return nil, ident.Report{}, fmt.Errorf("solve: unknown estimator %v", k)
	}
}

// Fit is an estimated model together with the solver outcome.
type Fit struct {
	Model *Model
	Theta []float64
	Kind  Kind
	ident.Report
}

// Estimate fits an ARX(na, nb) model to input u and output y sampled at ts.
// With nb = 0 it fits a pure AR model and u is ignored.
func Estimate(u, y []float64, ts float64, na, nb int, opts Options) (*Fit, error) {
	A, b, err := Regression(u, y, na, nb)
	if err != nil {
		return nil, err
	}

	log := opts.Logger.WithValues("estimator", opts.Kind.String(), "na", na, "nb", nb)
	opts.Logger = log

	theta, report, err := opts.Kind.Solve(A, b, opts)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", opts.Kind, err)
	}

	var m *Model
	if nb == 0 {
		m = NewAR(theta, ts)
	} else {
		m = NewARX(theta[:na], theta[na:], ts)
	}
	log.V(logging.DEBUG).Info("model estimated", "model", m.String(), "status", report.Status.String())
	return &Fit{Model: m, Theta: theta, Kind: opts.Kind, Report: report}, nil
}

// EstimateAR fits an AR(na) model to y.
func EstimateAR(y []float64, ts float64, na int, opts Options) (*Fit, error) {
	return Estimate(nil, y, ts, na, 0, opts)
}

package rpca

import (
	"github.com/go-logr/logr"

	"github.com/san-kum/sysid/internal/ident"
)

// Config holds the decomposition parameters. Zero values of lambda and mu
// select the data-dependent defaults.
type Config struct {
	lambda float64
	mu     float64
	rho    float64
	stop   ident.Stop
	logger logr.Logger
}

type Option func(*Config) error

// DefaultStop is the iteration contract of a bare Decompose call.
var DefaultStop = ident.Stop{MaxIter: 1000, Tol: 1e-7}

func defaultConfig() *Config {
	return &Config{
		rho:  1.5,
		stop: DefaultStop,
	}
}

// Lambda sets the weight of the sparse term. The default is 1/sqrt(max(m, n)).
func Lambda(v float64) Option {
	return func(c *Config) error {
		if v <= 0 {
			return ident.Dimension("rpca lambda", "must be positive, got %g", v)
		}
		c.lambda = v
		return nil
	}
}

// Mu sets the initial penalty. The default is 1.25/‖H‖₂.
func Mu(v float64) Option {
	return func(c *Config) error {
		if v <= 0 {
			return ident.Dimension("rpca mu", "must be positive, got %g", v)
		}
		c.mu = v
		return nil
	}
}

// Rho sets the growth factor of the penalty between iterations.
func Rho(v float64) Option {
	return func(c *Config) error {
		if v <= 1 {
			return ident.Dimension("rpca rho", "must be > 1, got %g", v)
		}
		c.rho = v
		return nil
	}
}

func WithStop(s ident.Stop) Option {
	return func(c *Config) error {
		if err := s.Validate(); err != nil {
			return err
		}
		c.stop = s
		return nil
	}
}

func WithLogger(l logr.Logger) Option {
	return func(c *Config) error {
		c.logger = l
		return nil
	}
}

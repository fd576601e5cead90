// Package logging builds the logr.Logger used across the toolkit.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr's V().
const (
	DEBUG = 1
	TRACE = 2
)

// Options controls logger construction.
type Options struct {
	Development bool
	Verbosity   int
}

// New builds a logr.Logger backed by zap. Verbosity v enables logr levels
// up to v, which zap represents as level -v.
func New(opts Options) (logr.Logger, error) {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-1 * opts.Verbosity))
	cfg.DisableStacktrace = !opts.Development

	z, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(z), nil
}

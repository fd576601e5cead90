package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sysid/internal/experiment"
	"github.com/san-kum/sysid/internal/ident"
)

const (
	DefaultLength     = 10000
	DefaultFs         = 100000.0
	DefaultNoise      = 0.01
	DefaultNoiseNu    = 1.5
	DefaultEmbedding  = 200
	DefaultFilterTol  = 1e-3
	DefaultFilterIter = 500
	DefaultRTLSTol    = 2e-6
	DefaultRTLSIter   = 400
	DefaultGridPoints = 256
)

var DefaultFreqs = []float64{2000, 8000, 10000, 15000, 25000}

type Config struct {
	Scenario  string         `yaml:"scenario"`
	Estimator string         `yaml:"estimator"`
	Weight    string         `yaml:"weight"`
	Seed      int64          `yaml:"seed"`
	Signal    SignalConfig   `yaml:"signal"`
	Noise     NoiseConfig    `yaml:"noise"`
	Filter    FilterConfig   `yaml:"filter"`
	System    SystemConfig   `yaml:"system"`
	RTLS      StopConfig     `yaml:"rtls"`
	Response  ResponseConfig `yaml:"response"`
	Sweep     SweepConfig    `yaml:"sweep"`
	DataDir   string         `yaml:"data_dir"`
}

type SignalConfig struct {
	Length    int       `yaml:"length"`
	Fs        float64   `yaml:"fs"`
	Freqs     []float64 `yaml:"freqs"`
	Amplitude float64   `yaml:"amplitude"`
}

type NoiseConfig struct {
	Ratio float64 `yaml:"ratio"`
	Nu    float64 `yaml:"nu"`
}

type FilterConfig struct {
	Embedding int     `yaml:"embedding"`
	Tol       float64 `yaml:"tol"`
	MaxIter   int     `yaml:"max_iter"`
}

// SystemConfig is the true ARX system of the arx scenario and the model
// order fitted to it.
type SystemConfig struct {
	A  []float64 `yaml:"a"`
	B  []float64 `yaml:"b"`
	Na int       `yaml:"na"`
	Nb int       `yaml:"nb"`
}

type StopConfig struct {
	Tol     float64 `yaml:"tol"`
	MaxIter int     `yaml:"max_iter"`
}

type ResponseConfig struct {
	Points int `yaml:"points"`
}

type SweepConfig struct {
	Param   string    `yaml:"param"`
	Values  []float64 `yaml:"values"`
	Workers int       `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:  "tones",
		Estimator: "rtls",
		Weight:    "bisquare",
		Seed:      1,
		Signal: SignalConfig{
			Length:    DefaultLength,
			Fs:        DefaultFs,
			Freqs:     append([]float64(nil), DefaultFreqs...),
			Amplitude: 1,
		},
		Noise: NoiseConfig{Ratio: DefaultNoise, Nu: DefaultNoiseNu},
		Filter: FilterConfig{
			Embedding: DefaultEmbedding,
			Tol:       DefaultFilterTol,
			MaxIter:   DefaultFilterIter,
		},
		System: SystemConfig{
			A:  []float64{-1.5, 0.7},
			B:  []float64{1, 0.5},
			Na: 2,
			Nb: 2,
		},
		RTLS:     StopConfig{Tol: DefaultRTLSTol, MaxIter: DefaultRTLSIter},
		Response: ResponseConfig{Points: DefaultGridPoints},
		Sweep: SweepConfig{
			Param:   "noise",
			Values:  []float64{0.001, 0.003, 0.01, 0.03, 0.1},
			Workers: 4,
		},
		DataDir: "data",
	}
}

// ScenarioDefaults is DefaultConfig adjusted for a scenario. The arx
// scenario does not filter unless an embedding is set: its output is driven
// by white noise and has no low-rank structure.
func ScenarioDefaults(scenario string) *Config {
	cfg := DefaultConfig()
	if scenario == "" {
		return cfg
	}
	cfg.Scenario = scenario
	if scenario == "arx" {
		cfg.Filter.Embedding = 0
	}
	return cfg
}

// Load overlays the yaml file at path on the defaults of the scenario it
// names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var head struct {
		Scenario string `yaml:"scenario"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg := ScenarioDefaults(head.Scenario)
	if err := overlay(cfg, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// overlay decodes a yaml document on top of cfg. Sequences in the
// document replace the defaults.
func overlay(cfg *Config, data []byte) error {
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the structural preconditions of every stage.
func (c *Config) Validate() error {
	switch c.Scenario {
	case "tones", "arx":
	default:
		return fmt.Errorf("config: unknown scenario %q", c.Scenario)
	}
	if c.Signal.Length < 2 {
		return ident.Dimension("config", "signal length %d", c.Signal.Length)
	}
	if c.Signal.Fs <= 0 {
		return ident.Dimension("config", "sample rate %g", c.Signal.Fs)
	}
	if c.Noise.Ratio < 0 || c.Noise.Nu <= 0 {
		return fmt.Errorf("config: noise ratio %g and shape %g must be non-negative and positive", c.Noise.Ratio, c.Noise.Nu)
	}
	if c.Filter.Embedding < 0 || c.Filter.Embedding >= c.Signal.Length {
		return ident.Dimension("config", "embedding %d must be below length %d", c.Filter.Embedding, c.Signal.Length)
	}
	if c.Scenario == "tones" && c.Filter.Embedding == 0 {
		return ident.Dimension("config", "tones scenario needs an embedding dimension")
	}
	if err := c.FilterStop().Validate(); err != nil {
		return err
	}
	if err := c.RTLSStop().Validate(); err != nil {
		return err
	}
	if c.Scenario == "arx" {
		if c.System.Na < 1 || c.System.Nb < 0 {
			return ident.Dimension("config", "model order na=%d nb=%d", c.System.Na, c.System.Nb)
		}
		if len(c.System.A) == 0 {
			return ident.Dimension("config", "true system has no denominator coefficients")
		}
	}
	return nil
}

func (c *Config) FilterStop() ident.Stop {
	return ident.Stop{MaxIter: c.Filter.MaxIter, Tol: c.Filter.Tol}
}

func (c *Config) RTLSStop() ident.Stop {
	return ident.Stop{MaxIter: c.RTLS.MaxIter, Tol: c.RTLS.Tol}
}

// Experiment converts the file-level configuration into an experiment
// configuration.
func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Scenario:   c.Scenario,
		Estimator:  c.Estimator,
		Weight:     c.Weight,
		TrueA:      append([]float64(nil), c.System.A...),
		TrueB:      append([]float64(nil), c.System.B...),
		Na:         c.System.Na,
		Nb:         c.System.Nb,
		Length:     c.Signal.Length,
		Fs:         c.Signal.Fs,
		Freqs:      append([]float64(nil), c.Signal.Freqs...),
		Amplitude:  c.Signal.Amplitude,
		Noise:      c.Noise.Ratio,
		NoiseNu:    c.Noise.Nu,
		Embedding:  c.Filter.Embedding,
		FilterStop: c.FilterStop(),
		RTLSStop:   c.RTLSStop(),
		GridPoints: c.Response.Points,
		Seed:       c.Seed,
	}
}

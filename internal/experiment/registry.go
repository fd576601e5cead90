package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/sysid/internal/arx"
)

type Registry struct {
	scenarios map[string]func() Scenario
}

func NewRegistry() *Registry {
	r := &Registry{
		scenarios: make(map[string]func() Scenario),
	}

	r.scenarios["tones"] = func() Scenario { return Tones{} }
	r.scenarios["arx"] = func() Scenario { return ARX{} }

	return r
}

func (r *Registry) GetScenario(name string) (Scenario, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetEstimator(name string) (arx.Kind, error) {
	return arx.ParseKind(name)
}

func (r *Registry) GetWeight(name string) (arx.WeightFunc, error) {
	return arx.ParseWeight(name)
}

// Build resolves the scenario named by cfg and returns a ready experiment.
func (r *Registry) Build(cfg Config, env Env) (*Experiment, error) {
	sc, err := r.GetScenario(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if cfg.Scenario == "arx" {
		if _, err := r.GetEstimator(cfg.Estimator); err != nil {
			return nil, err
		}
		if _, err := r.GetWeight(cfg.Weight); err != nil {
			return nil, err
		}
	}
	e := New(cfg)
	if err := e.Setup(sc, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListEstimators() []string {
	names := make([]string, 0, 3)
	for _, k := range arx.Kinds() {
		names = append(names, k.String())
	}
	return names
}

func (r *Registry) ListWeights() []string {
	return []string{"bisquare", "huber"}
}

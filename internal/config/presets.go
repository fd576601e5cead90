package config

import "sort"

// Presets are yaml overlays on ScenarioDefaults, grouped by scenario.
var Presets = map[string]map[string]string{
	"tones": {
		"paper": `
scenario: tones
signal: {length: 10000, fs: 100000}
noise: {ratio: 0.01, nu: 1.5}
filter: {embedding: 200}
`,
		"quick": `
scenario: tones
signal: {length: 2000}
filter: {embedding: 100}
`,
		"impulsive": `
scenario: tones
signal: {length: 4000}
noise: {ratio: 0.05, nu: 1.1}
filter: {embedding: 120}
`,
	},
	"arx": {
		"robust": `
scenario: arx
estimator: rtls
signal: {length: 4000, fs: 1000}
noise: {ratio: 0.05, nu: 1.5}
filter: {embedding: 0}
`,
		"baseline": `
scenario: arx
estimator: ls
signal: {length: 4000, fs: 1000}
noise: {ratio: 0.05, nu: 1.5}
filter: {embedding: 0}
`,
		"resonant": `
scenario: arx
estimator: rtls
weight: bisquare
signal: {length: 8000, fs: 1000}
system: {a: [-1.8, 0.95], b: [0.5], na: 2, nb: 1}
filter: {embedding: 0}
`,
	},
}

// GetPreset returns the scenario defaults with the named preset applied, or nil if
// the preset does not exist.
func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	doc, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	cfg := ScenarioDefaults(scenario)
	if err := overlay(cfg, []byte(doc)); err != nil {
		return nil
	}
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"fmt"
	"slices"
	"sort"
)

// A Preset adjusts a default configuration for one flavour of a scenario.
type Preset func(*Config)

var Presets = map[string]map[string]Preset{
	"hurricane": {
		"breeze": func(c *Config) {
			c.Integrator.Inflow = Vec{20, 0}
			c.Aero.Wind = Vec{20, 0}
		},
		"gale": func(c *Config) {
			c.Integrator.Inflow = Vec{120, 0}
			c.Aero.Wind = Vec{150, 0}
			c.Tick.WindThreshold = 0.3
		},
		"beat": func(c *Config) {
			c.Tick.SailAngle = 0.8
			c.Tick.SheetExtension = 0.9
		},
	},
	"dry_dock": {
		"still": func(c *Config) {
			c.Integrator.Inflow = Vec{0, 0}
			c.Aero.Wind = Vec{0, 0}
		},
		"drop": func(c *Config) {
			c.Tick.Gravity = -250
			c.Frames = 300
		},
	},
	"water_only": {
		"dam_break": func(c *Config) {
			c.Integrator.OpenFlow = false
			c.Tick.Gravity = -200
		},
		"viscous": func(c *Config) {
			c.Fluid.Viscosity = 20
			c.Fluid.XSPHEpsilon = 0.8
		},
	},
	"pressure_washer": {
		"jet": func(c *Config) {
			c.Integrator.Inflow = Vec{200, 0}
		},
		"blast": func(c *Config) {
			c.Integrator.Inflow = Vec{350, 0}
			c.Integrator.MaxSpeed = 600
			c.Substeps = 8
		},
	},
}

// GetPreset returns the defaults with the named preset applied and the
// scenario set accordingly.
func GetPreset(scenario, preset string) (*Config, error) {
	apply, ok := Presets[scenario][preset]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %s/%s", ErrInvalidConfig, scenario, preset)
	}
	cfg := DefaultConfig()
	cfg.Scenario = scenario
	apply(cfg)
	return cfg, nil
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

// PresetScenarios lists the scenarios that have presets.
func PresetScenarios() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

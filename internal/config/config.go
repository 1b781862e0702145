// Package config loads the YAML run configuration and turns it into the
// solver's tick parameters and physics model.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/physics"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig indicates a configuration that cannot produce a run.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Vec is a 2D vector written as a two-element YAML sequence.
type Vec [2]float32

func (v Vec) Vec2() dynamo.Vec2 { return dynamo.V(v[0], v[1]) }

type Config struct {
	Scenario     string              `yaml:"scenario"`
	Backend      string              `yaml:"backend"`
	Workers      int                 `yaml:"workers"`
	Frames       int                 `yaml:"frames"`
	Substeps     int                 `yaml:"substeps"`
	Tick         TickConfig          `yaml:"tick"`
	Fluid        FluidConfig         `yaml:"fluid"`
	Bonds        BondConfig          `yaml:"bonds"`
	Integrator   IntegratorConfig    `yaml:"integrator"`
	Aero         AeroConfig          `yaml:"aero"`
	Domain       DomainConfig        `yaml:"domain"`
	Interactions []InteractionConfig `yaml:"interactions"`
	Scene        SceneConfig         `yaml:"scene"`
	Control      ControlConfig       `yaml:"control"`
	Telemetry    TelemetryConfig     `yaml:"telemetry"`
}

// TickConfig seeds the per-tick parameter snapshot.
type TickConfig struct {
	Dt                 float32 `yaml:"dt"`
	Gravity            float32 `yaml:"gravity"`
	SmoothingRadius    float32 `yaml:"smoothing_radius"`
	TargetDensityWater float32 `yaml:"target_density_water"`
	TargetDensityAir   float32 `yaml:"target_density_air"`
	WindThreshold      float32 `yaml:"wind_threshold"` // water density ratio that starts crest deflection
	RudderAngle        float32 `yaml:"rudder_angle"`
	SailAngle          float32 `yaml:"sail_angle"`
	SheetExtension     float32 `yaml:"sheet_extension"`
}

type FluidConfig struct {
	PressureStiffness float32 `yaml:"pressure_stiffness"`
	Gamma             float32 `yaml:"gamma"`
	PressureCap       float32 `yaml:"pressure_cap"`
	Viscosity         float32 `yaml:"viscosity"`
	CloseRepulsion    float32 `yaml:"close_repulsion"`
	CloseFraction     float32 `yaml:"close_fraction"`
	XSPHEpsilon       float32 `yaml:"xsph_epsilon"`
	VelocityDamping   float32 `yaml:"velocity_damping"`
	ZTolerance        float32 `yaml:"z_tolerance"`
	DensityFloor      float32 `yaml:"density_floor"`
	MinDistance       float32 `yaml:"min_distance"`
}

type BondConfig struct {
	Damping  float32 `yaml:"damping"`
	MaxForce float32 `yaml:"max_force"`
}

type IntegratorConfig struct {
	StaticMass        float32 `yaml:"static_mass"`
	MaxSpeed          float32 `yaml:"max_speed"`
	BoundaryThreshold float32 `yaml:"boundary_threshold"`
	BoundaryStrength  float32 `yaml:"boundary_strength"`
	OpenFlow          bool    `yaml:"open_flow"`
	Inflow            Vec     `yaml:"inflow"`
}

type AeroConfig struct {
	Wind  Vec     `yaml:"wind"`
	Drive float32 `yaml:"drive"`
	Drag  float32 `yaml:"drag"`
}

// DomainConfig declares the simulation bounds. Grid cells are CellScale
// smoothing radii wide.
type DomainConfig struct {
	MinX      float32 `yaml:"min_x"`
	MaxX      float32 `yaml:"max_x"`
	MinY      float32 `yaml:"min_y"`
	MaxY      float32 `yaml:"max_y"`
	CellScale float32 `yaml:"cell_scale"`
}

// InteractionConfig overrides one entry of the soft-sphere table.
type InteractionConfig struct {
	A        string  `yaml:"a"`
	B        string  `yaml:"b"`
	Strength float32 `yaml:"strength"`
	Radius   float32 `yaml:"radius"`
	Ramp     string  `yaml:"ramp"`
}

// SceneConfig tunes scenario construction.
type SceneConfig struct {
	Spacing float32 `yaml:"spacing"`
	Jitter  float32 `yaml:"jitter"` // fraction of spacing
	Seed    int64   `yaml:"seed"`
}

// ControlConfig bounds the interactive rudder and sail inputs.
type ControlConfig struct {
	Step      float32         `yaml:"step"`
	Limit     float32         `yaml:"limit"`
	Autopilot AutopilotConfig `yaml:"autopilot"`
}

// AutopilotConfig tunes the course-holding PID loop. Course is in radians,
// measured from +x.
type AutopilotConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Course   float32 `yaml:"course"`
	Kp       float32 `yaml:"kp"`
	Ki       float32 `yaml:"ki"`
	Kd       float32 `yaml:"kd"`
	MinSpeed float32 `yaml:"min_speed"`
}

type TelemetryConfig struct {
	Every int    `yaml:"every"` // ticks between records
	Dir   string `yaml:"dir"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() *Config {
	cfg, err := parse(nil)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults: %v", err))
	}
	return cfg
}

// Load reads path over the embedded defaults; keys absent from the file keep
// their default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	return cfg.WriteYAML(path)
}

func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone deep-copies the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Interactions = slices.Clone(c.Interactions)
	return &cp
}

// TickParams returns the initial per-tick snapshot.
func (c *Config) TickParams() dynamo.TickParams {
	t := c.Tick
	return dynamo.TickParams{
		Dt:                 t.Dt,
		Gravity:            t.Gravity,
		SmoothingRadius:    t.SmoothingRadius,
		TargetDensityWater: t.TargetDensityWater,
		TargetDensityAir:   t.TargetDensityAir,
		WindThreshold:      t.WindThreshold,
		RudderAngle:        t.RudderAngle,
		SailAngle:          t.SailAngle,
		SheetExtension:     t.SheetExtension,
	}
}

func (c *Config) Bounds() dynamo.Bounds {
	d := c.Domain
	return dynamo.Bounds{MinX: d.MinX, MaxX: d.MaxX, MinY: d.MinY, MaxY: d.MaxY}
}

func (c *Config) GridCellSize() float32 {
	return c.Domain.CellScale * c.Tick.SmoothingRadius
}

// Model builds the physics model. Interaction entries override the default
// table; pairs not listed keep their default profile.
func (c *Config) Model() (*physics.Model, error) {
	f := c.Fluid
	m := &physics.Model{
		Fluid: physics.FluidParams{
			PressureStiffness: f.PressureStiffness,
			Gamma:             f.Gamma,
			PressureCap:       f.PressureCap,
			Viscosity:         f.Viscosity,
			CloseRepulsion:    f.CloseRepulsion,
			CloseFraction:     f.CloseFraction,
			XSPHEpsilon:       f.XSPHEpsilon,
			VelocityDamping:   f.VelocityDamping,
			ZTolerance:        f.ZTolerance,
			DensityFloor:      f.DensityFloor,
			MinDistance:       f.MinDistance,
		},
		Table: physics.DefaultTable(),
		Bonds: physics.BondParams{
			Damping:  c.Bonds.Damping,
			MaxForce: c.Bonds.MaxForce,
		},
		Integrator: physics.IntegratorParams{
			StaticMass:        c.Integrator.StaticMass,
			MaxSpeed:          c.Integrator.MaxSpeed,
			BoundaryThreshold: c.Integrator.BoundaryThreshold,
			BoundaryStrength:  c.Integrator.BoundaryStrength,
			OpenFlow:          c.Integrator.OpenFlow,
			Inflow:            c.Integrator.Inflow.Vec2(),
		},
		Aero: physics.AeroParams{
			Wind:  c.Aero.Wind.Vec2(),
			Drive: c.Aero.Drive,
			Drag:  c.Aero.Drag,
		},
		Bounds: c.Bounds(),
	}

	for i, ic := range c.Interactions {
		a, okA := dynamo.ParseMaterial(ic.A)
		b, okB := dynamo.ParseMaterial(ic.B)
		if !okA || !okB {
			return nil, fmt.Errorf("%w: interaction %d: unknown material pair %s/%s", ErrInvalidConfig, i, ic.A, ic.B)
		}
		ramp, ok := physics.ParseRamp(ic.Ramp)
		if !ok {
			return nil, fmt.Errorf("%w: interaction %d: unknown ramp %q", ErrInvalidConfig, i, ic.Ramp)
		}
		m.Table.Set(a, b, physics.Profile{Strength: ic.Strength, Radius: ic.Radius, Ramp: ramp})
	}

	return m, nil
}

// Validate checks the run settings, the tick parameters and the physics
// tuning.
func (c *Config) Validate() error {
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidConfig, c.Frames)
	}
	if c.Substeps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", ErrInvalidConfig, c.Substeps)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if !slices.Contains(compute.Names(), c.Backend) {
		return fmt.Errorf("%w: unknown backend %q (available: %v)", ErrInvalidConfig, c.Backend, compute.Names())
	}
	if c.Domain.CellScale < 1 {
		return fmt.Errorf("%w: cell_scale must be at least 1, got %g", ErrInvalidConfig, c.Domain.CellScale)
	}
	if !(c.Scene.Spacing > 0) {
		return fmt.Errorf("%w: scene spacing must be positive", ErrInvalidConfig)
	}
	if c.Scene.Jitter < 0 || c.Scene.Jitter >= 0.5 {
		return fmt.Errorf("%w: scene jitter must be in [0, 0.5)", ErrInvalidConfig)
	}
	if !(c.Control.Step > 0) || !(c.Control.Limit > 0) {
		return fmt.Errorf("%w: control step and limit must be positive", ErrInvalidConfig)
	}
	if ap := c.Control.Autopilot; ap.Kp < 0 || ap.Ki < 0 || ap.Kd < 0 || ap.MinSpeed < 0 {
		return fmt.Errorf("%w: autopilot gains must not be negative", ErrInvalidConfig)
	}
	if c.Telemetry.Every <= 0 {
		return fmt.Errorf("%w: telemetry every must be positive", ErrInvalidConfig)
	}
	if err := c.TickParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	m, err := c.Model()
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if r := m.Table.MaxRadius(); r > c.GridCellSize() {
		return fmt.Errorf("%w: interaction radius %g exceeds grid cell %g", ErrInvalidConfig, r, c.GridCellSize())
	}
	return nil
}

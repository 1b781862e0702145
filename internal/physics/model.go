package physics

import (
	"errors"
	"fmt"

	"github.com/san-kum/sailsim/internal/dynamo"
)

var (
	// ErrUnstableTuning indicates parameters outside the range the solver is
	// known to stay stable in.
	ErrUnstableTuning = errors.New("physics: parameters outside stable range")
)

// FluidParams tune the SPH force terms.
type FluidParams struct {
	PressureStiffness float32
	Gamma             float32
	PressureCap       float32
	Viscosity         float32
	CloseRepulsion    float32
	CloseFraction     float32 // of the smoothing radius
	XSPHEpsilon       float32
	VelocityDamping   float32 // per tick, < 1
	ZTolerance        float32
	DensityFloor      float32
	MinDistance       float32
}

// BondParams tune the spring-damper network.
type BondParams struct {
	Damping  float32
	MaxForce float32
}

// IntegratorParams tune the per-particle update.
type IntegratorParams struct {
	StaticMass        float32
	MaxSpeed          float32
	BoundaryThreshold float32
	BoundaryStrength  float32
	OpenFlow          bool // x edges are inflow/outflow, not walls
	Inflow            dynamo.Vec2
}

// AeroParams drive sail particles.
type AeroParams struct {
	Wind  dynamo.Vec2
	Drive float32
	Drag  float32
}

// Model is the static configuration of every physics stage. Per-tick
// values come from dynamo.TickParams.
type Model struct {
	Fluid      FluidParams
	Table      Table
	Bonds      BondParams
	Integrator IntegratorParams
	Aero       AeroParams
	Bounds     dynamo.Bounds
}

func DefaultModel() *Model {
	return &Model{
		Fluid: FluidParams{
			PressureStiffness: 100,
			Gamma:             7,
			PressureCap:       2000,
			Viscosity:         2,
			CloseRepulsion:    50,
			CloseFraction:     0.3,
			XSPHEpsilon:       0.5,
			VelocityDamping:   0.999,
			ZTolerance:        0.5,
			DensityFloor:      1e-3,
			MinDistance:       1e-3,
		},
		Table: DefaultTable(),
		Bonds: BondParams{
			Damping:  50,
			MaxForce: 1e6,
		},
		Integrator: IntegratorParams{
			StaticMass:        50_000,
			MaxSpeed:          400,
			BoundaryThreshold: 20,
			BoundaryStrength:  2000,
			OpenFlow:          true,
			Inflow:            dynamo.V(50, 0),
		},
		Aero: AeroParams{
			Wind:  dynamo.V(50, 0),
			Drive: 2,
			Drag:  0.001,
		},
		Bounds: dynamo.Bounds{MinX: -640, MaxX: 640, MinY: -360, MaxY: 360},
	}
}

// Validate checks the global knobs and the interaction table.
func (m *Model) Validate() error {
	f := m.Fluid
	checks := []struct {
		ok  bool
		msg string
	}{
		{f.Viscosity > 0 && f.Viscosity < 100, "viscosity must be in (0, 100)"},
		{f.PressureStiffness > 0 && f.PressureStiffness < 10_000, "pressure stiffness must be in (0, 10000)"},
		{f.Gamma >= 1, "gamma must be at least 1"},
		{f.VelocityDamping >= 0.99 && f.VelocityDamping <= 1, "velocity damping must be in [0.99, 1]"},
		{f.PressureCap > 0 && f.PressureCap <= 10_000, "pressure cap must be in (0, 10000]"},
		{f.XSPHEpsilon >= 0 && f.XSPHEpsilon <= 1, "xsph epsilon must be in [0, 1]"},
		{f.CloseFraction > 0 && f.CloseFraction < 1, "close fraction must be in (0, 1)"},
		{f.CloseRepulsion >= 0, "close repulsion must not be negative"},
		{f.ZTolerance > 0, "z tolerance must be positive"},
		{f.DensityFloor > 0, "density floor must be positive"},
		{f.MinDistance > 0, "minimum distance must be positive"},
		{m.Bonds.MaxForce > 0 && m.Bonds.MaxForce <= maxBondForce, "bond max force out of range"},
		{m.Bonds.Damping >= 0, "bond damping must not be negative"},
		{m.Integrator.StaticMass > 0, "static mass must be positive"},
		{m.Integrator.MaxSpeed > 0, "max speed must be positive"},
		{m.Integrator.BoundaryThreshold >= 0, "boundary threshold must not be negative"},
		{m.Bounds.Width() > 0 && m.Bounds.Height() > 0, "bounds must not be empty"},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", ErrUnstableTuning, c.msg)
		}
	}
	return m.Table.Validate()
}

// Immovable reports whether p is pinned by its mass alone.
func (m *Model) Immovable(p *dynamo.Particle) bool {
	return p.Mass > m.Integrator.StaticMass && !p.Layer.Has(dynamo.LayerKinematic)
}

package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/grid"
)

type scene struct {
	model   *Model
	store   *dynamo.Store
	grid    *grid.Grid
	backend compute.Backend
	acc     *compute.Accumulator
	params  dynamo.TickParams
}

func newScene(t *testing.T, ps []dynamo.Particle, bonds []dynamo.Bond, kin []dynamo.Kinematic) *scene {
	t.Helper()
	m := DefaultModel()
	tp := dynamo.DefaultTickParams()

	st, err := dynamo.NewStore(ps, bonds, kin)
	require.NoError(t, err)

	g, err := grid.New(m.Bounds, 2*tp.SmoothingRadius)
	require.NoError(t, err)

	b := compute.NewCPUBackend(4)
	t.Cleanup(b.Close)

	return &scene{
		model:   m,
		store:   st,
		grid:    g,
		backend: b,
		acc:     compute.NewAccumulator(len(ps)),
		params:  tp,
	}
}

// density runs grid, density and pressure.
func (s *scene) density() {
	s.grid.Build(s.backend, s.store.Particles)
	s.model.ComputeDensity(s.backend, s.store.Particles, s.grid, s.params)
	s.model.ComputePressure(s.backend, s.store.Particles, s.params)
}

// forces runs everything up to the velocity commit.
func (s *scene) forces() {
	s.density()
	next := make([]dynamo.Vec2, s.store.Len())
	s.model.ComputeForces(s.backend, s.store.Particles, s.grid, s.params, next)
	s.model.CommitVelocities(s.backend, s.store.Particles, next)
}

func water(x, y float32) dynamo.Particle {
	return dynamo.Particle{Pos: dynamo.V(x, y), Mass: 1, Layer: dynamo.LayerWater}
}

func air(x, y float32) dynamo.Particle {
	return dynamo.Particle{Pos: dynamo.V(x, y), Mass: 0.1, Layer: dynamo.LayerAir}
}

func solid(layer dynamo.Layer, x, y, mass float32) dynamo.Particle {
	return dynamo.Particle{Pos: dynamo.V(x, y), Mass: mass, Layer: layer}
}

package physics

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/sailsim/internal/dynamo"
)

func TestDensityFloor(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	cloud := make([]dynamo.Particle, 2000)
	for i := range cloud {
		layer := []dynamo.Layer{dynamo.LayerWater, dynamo.LayerAir, dynamo.LayerHull, dynamo.LayerSail}[i%4]
		cloud[i] = dynamo.Particle{
			Pos:     dynamo.V(rng.Float32()*1400-700, rng.Float32()*800-400),
			Mass:    rng.Float32() * 3,
			ZHeight: float32(rng.IntN(3)),
			Layer:   layer,
		}
	}

	tests := []struct {
		name string
		ps   []dynamo.Particle
	}{
		{"single", []dynamo.Particle{water(0, 0)}},
		{"far apart", []dynamo.Particle{water(0, 0), water(50, 0)}},
		{"different heights", []dynamo.Particle{water(0, 0), {Pos: dynamo.V(1, 0), Mass: 1, ZHeight: 1, Layer: dynamo.LayerWater}}},
		{"different solids", []dynamo.Particle{solid(dynamo.LayerHull, 0, 0, 5), solid(dynamo.LayerSail, 1, 0, 5)}},
		{"massless", []dynamo.Particle{{Layer: dynamo.LayerAir}, {Pos: dynamo.V(1, 1), Layer: dynamo.LayerAir}}},
		{"random cloud", cloud},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, tt.ps, nil, nil)
			s.density()
			floor := s.model.Fluid.DensityFloor
			for i, p := range s.store.Particles {
				assert.GreaterOrEqual(t, p.Density, floor, "particle %d", i)
				assert.GreaterOrEqual(t, p.Pressure, float32(0), "particle %d", i)
				assert.LessOrEqual(t, p.Pressure, s.model.Fluid.PressureCap, "particle %d", i)
			}
		})
	}
}

func TestDensityIsolatedEqualsFloor(t *testing.T) {
	s := newScene(t, []dynamo.Particle{water(0, 0), water(10.5, 0)}, nil, nil)
	s.density()
	for _, p := range s.store.Particles {
		assert.Equal(t, s.model.Fluid.DensityFloor, p.Density)
		assert.Zero(t, p.Pressure)
	}
}

func TestDensityPairSum(t *testing.T) {
	a, b := water(0, 0), water(3, 4)
	a.Mass, b.Mass = 2, 5
	s := newScene(t, []dynamo.Particle{a, b}, nil, nil)
	s.density()

	k := NewKernel(s.params.SmoothingRadius)
	w := k.W(25)
	assert.InDelta(t, 5*w, s.store.Particles[0].Density, 1e-9)
	assert.InDelta(t, 2*w, s.store.Particles[1].Density, 1e-9)
}

func TestDensityGhostWeighting(t *testing.T) {
	w := water(0, 0)
	w.Mass = 2
	hull := solid(dynamo.LayerHull, 2, 0, 100_000)
	s := newScene(t, []dynamo.Particle{w, hull}, nil, nil)
	s.density()

	k := NewKernel(s.params.SmoothingRadius)
	assert.InDelta(t, 2*k.W(4), s.store.Particles[0].Density, 1e-9, "water sees the hull with its own mass")
	assert.InDelta(t, 100_000*k.W(4), s.store.Particles[1].Density, 1e-3)
}

func TestDensityAcrossCells(t *testing.T) {
	// neighbours straddle a cell boundary at x = -620 (cell size 20 from -640)
	s := newScene(t, []dynamo.Particle{water(-621, 0), water(-619, 0)}, nil, nil)
	s.density()
	assert.NotEqual(t, s.store.Particles[0].CellID, s.store.Particles[1].CellID)
	assert.Greater(t, s.store.Particles[0].Density, s.model.Fluid.DensityFloor)
}

func TestPressureEquationOfState(t *testing.T) {
	m := DefaultModel()
	tests := []struct {
		name        string
		rho, target float32
		want        float32
	}{
		{"at rest", 1, 1, 0},
		{"rarefied", 0.5, 1, 0},
		{"compressed", 1.05, 1, 100 * (float32(1.4071004) - 1)},
		{"capped", 10, 1, 2000},
		{"no target", 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Pressure(tt.rho, tt.target), 1e-3)
		})
	}
}

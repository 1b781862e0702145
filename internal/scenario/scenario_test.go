package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/physics"
)

func testParams() Params {
	return NewParams(config.DefaultConfig())
}

func TestCalibrateMass(t *testing.T) {
	const h, spacing, target = 10, 5, 1
	m := CalibrateMass(h, spacing, target)

	// the lattice density with the calibrated mass reads the target
	k := physics.NewKernel(h)
	var rho float32
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			rho += m * k.W(dynamo.V(float32(dx)*spacing, float32(dy)*spacing).Len2())
		}
	}
	assert.InDelta(t, target, rho, 1e-4)

	assert.InDelta(t, 0.1*m, CalibrateMass(h, spacing, 0.1), 1e-4, "mass scales with target")
	assert.Equal(t, float32(2), CalibrateMass(h, 50, 2), "sparse lattice falls back to target")
}

func TestLatticeBonds(t *testing.T) {
	b := &builder{p: testParams(), scene: &Scene{}}
	l := b.block(dynamo.V(0, 0), 3, 4, 2, dynamo.Particle{Mass: 1, Layer: dynamo.LayerSail})
	ps := b.scene.Particles
	require.Len(t, ps, 12)
	assert.Equal(t, dynamo.V(4, 6), ps[l.At(2, 3)].Pos)

	tests := []struct {
		name string
		spec BondSpec
		want int
	}{
		{"grid", BondSpec{Stiffness: 1, Breaking: 1}, 2*4 + 3*3},
		{"diagonals", BondSpec{Stiffness: 1, Breaking: 1, Diagonals: true}, 2*4 + 3*3 + 2*2*3},
		{"skip", BondSpec{Stiffness: 1, Breaking: 1, SkipStiffness: 5}, 2*4 + 3*3 + 3*2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bonds := l.Bonds(ps, tt.spec)
			assert.Len(t, bonds, tt.want)
			for _, bd := range bonds {
				d := ps[bd.B].Pos.Sub(ps[bd.A].Pos).Len()
				assert.InDelta(t, d, bd.RestLength, 1e-5, "bonds start at rest")
				assert.True(t, bd.IsActive())
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"dry_dock", "hurricane", "pressure_washer", "squall", "water_only"}, r.List())
	assert.NotEmpty(t, r.Describe("hurricane"))

	_, err := r.Build("regatta", testParams())
	assert.True(t, errors.Is(err, ErrUnknownScenario))

	p := testParams()
	p.Spacing = 0
	_, err = r.Build("water_only", p)
	assert.Error(t, err)
}

func TestScenesAreValid(t *testing.T) {
	r := NewRegistry()
	p := testParams()

	for _, name := range r.List() {
		t.Run(name, func(t *testing.T) {
			scene, err := r.Build(name, p)
			require.NoError(t, err)
			assert.Equal(t, name, scene.Name)

			st, err := scene.Store()
			require.NoError(t, err)
			assert.Greater(t, st.Len(), 100)

			for i := range st.Particles {
				pt := &st.Particles[i]
				assert.True(t, p.Bounds.Contains(pt.Pos), "particle %d at %v outside domain", i, pt.Pos)
				if pt.Layer.IsFluid() {
					assert.True(t, pt.Layer.Has(dynamo.LayerRecycled), "fluid %d not recycled", i)
				}
			}
			for k := range st.Bonds {
				assert.LessOrEqual(t, physics.Strain(st, k, dynamo.DefaultTickParams()), float32(1e-5))
			}
		})
	}
}

func TestScenesAreDeterministic(t *testing.T) {
	r := NewRegistry()
	a, err := r.Build("dry_dock", testParams())
	require.NoError(t, err)
	b, err := r.Build("dry_dock", testParams())
	require.NoError(t, err)
	assert.Equal(t, a.Particles, b.Particles)

	p := testParams()
	p.Seed = 99
	c, err := r.Build("dry_dock", p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Particles, c.Particles)
}

func TestHurricaneLayout(t *testing.T) {
	p := testParams()
	scene, err := NewRegistry().Build("hurricane", p)
	require.NoError(t, err)
	st, err := scene.Store()
	require.NoError(t, err)

	assert.Equal(t, 100+4, st.CountMaterial(dynamo.Hull))
	assert.Equal(t, 9+20, st.CountMaterial(dynamo.Mast))
	assert.Equal(t, 20, st.CountMaterial(dynamo.Sail))
	assert.Greater(t, st.CountMaterial(dynamo.Air), 1000)
	assert.Greater(t, st.CountMaterial(dynamo.Water), 1000)

	m := physics.DefaultModel()
	m.Integrator.StaticMass = p.StaticMass
	for i := range st.Particles {
		pt := &st.Particles[i]
		switch pt.Material() {
		case dynamo.Sail, dynamo.Air:
			assert.Equal(t, float32(windZ), pt.ZHeight)
		case dynamo.Mast:
			assert.Equal(t, float32(mastZ), pt.ZHeight)
			assert.False(t, m.Immovable(pt))
		case dynamo.Hull:
			assert.Equal(t, float32(seaZ), pt.ZHeight)
		}
	}

	require.Len(t, st.Kinematics, 4)
	for _, kin := range st.Kinematics {
		pt := &st.Particles[kin.Particle]
		assert.True(t, pt.Layer.Has(dynamo.LayerKinematic))
		assert.False(t, m.Immovable(pt), "kinematic rudder is not static")
		assert.Equal(t, kin.Target(0), pt.Pos)
		assert.Equal(t, dynamo.ChannelRudder, kin.Channel)
	}

	types := map[dynamo.BondType]int{}
	for _, b := range st.Bonds {
		types[b.Type]++
	}
	assert.Equal(t, 7, types[dynamo.BondFuse])
	assert.Equal(t, 2, types[dynamo.BondSheet])
	assert.Positive(t, types[dynamo.BondSail])
	assert.Positive(t, types[dynamo.BondHull])
}

func TestSceneStoreIsACopy(t *testing.T) {
	scene, err := NewRegistry().Build("pressure_washer", testParams())
	require.NoError(t, err)
	st, err := scene.Store()
	require.NoError(t, err)

	st.Particles[0].Pos = dynamo.V(1e3, 1e3)
	assert.NotEqual(t, st.Particles[0].Pos, scene.Particles[0].Pos)
}

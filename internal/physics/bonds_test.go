package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
)

func bondedPair(t *testing.T, dist, rest, breaking float32, typ dynamo.BondType) *scene {
	t.Helper()
	ps := []dynamo.Particle{
		solid(dynamo.LayerHull, 0, 0, 10),
		solid(dynamo.LayerHull, dist, 0, 10),
	}
	bonds := []dynamo.Bond{dynamo.NewBond(0, 1, rest, 1000, breaking, typ)}
	return newScene(t, ps, bonds, nil)
}

func TestBondFractureIsPermanent(t *testing.T) {
	s := bondedPair(t, 20, 10, 0.5, dynamo.BondHull)

	broken := s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
	assert.Equal(t, 1, broken)
	assert.False(t, s.store.Bonds[0].IsActive())
	for i := 0; i < 2; i++ {
		fx, fy := s.acc.Drain(i)
		assert.Zero(t, fx)
		assert.Zero(t, fy)
	}

	// back at rest length, then compressed: still broken, still no force
	for _, x := range []float32{10, 5, 14.9, 30} {
		s.store.Particles[1].Pos.X = x
		s.store.Particles[1].Vel = dynamo.V(-100, 0)
		assert.Zero(t, s.model.SolveBonds(s.backend, s.store, s.acc, s.params))
		assert.False(t, s.store.Bonds[0].IsActive())
		fx, fy := s.acc.Drain(0)
		assert.Zero(t, fx)
		assert.Zero(t, fy)
	}
}

func TestBondBreaksJustPastThreshold(t *testing.T) {
	tests := []struct {
		name   string
		dist   float32
		active bool
	}{
		{"at rest", 10, true},
		{"compressed", 2, true},
		{"below threshold", 14.9, true},
		{"past threshold", 15.1, false},
		{"far past", 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := bondedPair(t, tt.dist, 10, 0.5, dynamo.BondHull)
			s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
			assert.Equal(t, tt.active, s.store.Bonds[0].IsActive())
		})
	}
}

func TestBondSpringForce(t *testing.T) {
	s := bondedPair(t, 12, 10, 0.5, dynamo.BondHull)
	s.model.SolveBonds(s.backend, s.store, s.acc, s.params)

	// stretched by 2 at stiffness 1000: A pulled toward +x, B toward -x
	ax, ay := s.acc.Drain(0)
	bx, by := s.acc.Drain(1)
	assert.InDelta(t, 2000, ax, 1e-2)
	assert.InDelta(t, -2000, bx, 1e-2)
	assert.Zero(t, ay)
	assert.Zero(t, by)
}

func TestBondDampingAndClamp(t *testing.T) {
	s := bondedPair(t, 10, 10, 0.5, dynamo.BondHull)
	s.store.Particles[1].Vel = dynamo.V(2, 0)
	s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
	ax, _ := s.acc.Drain(0)
	assert.InDelta(t, s.model.Bonds.Damping*2, ax, 1e-2, "separating endpoints are damped together")
	s.acc.Clear()

	s.store.Particles[1].Pos.X = 14
	s.store.Bonds[0].Stiffness = 1e12
	s.store.Particles[1].Vel = dynamo.Vec2{}
	s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
	ax, _ = s.acc.Drain(0)
	assert.InDelta(t, s.model.Bonds.MaxForce, ax, 1)
}

func TestCollapsedBondPushesApart(t *testing.T) {
	s := bondedPair(t, 0, 10, 0.5, dynamo.BondHull)
	s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
	require.True(t, s.store.Bonds[0].IsActive())

	// coincident ends separate along x, lower index toward -x
	ax, ay := s.acc.Drain(0)
	bx, by := s.acc.Drain(1)
	assert.Less(t, ax, float32(-1000))
	assert.Equal(t, -ax, bx)
	assert.Zero(t, ay)
	assert.Zero(t, by)
}

func TestSheetExtension(t *testing.T) {
	s := bondedPair(t, 15, 10, 0.2, dynamo.BondSheet)
	s.params.SheetExtension = 1.5
	assert.InDelta(t, 0, Strain(s.store, 0, s.params), 1e-6)

	s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
	assert.True(t, s.store.Bonds[0].IsActive(), "extended sheet is at rest")
	ax, _ := s.acc.Drain(0)
	assert.InDelta(t, 0, ax, 1e-3)

	s.params.SheetExtension = 1
	s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
	assert.False(t, s.store.Bonds[0].IsActive(), "hauled-in sheet is over-strained")
}

func TestBondFanInMatchesSerial(t *testing.T) {
	const spokes = 3000
	ps := []dynamo.Particle{solid(dynamo.LayerSail, 0, 0, 1)}
	bonds := make([]dynamo.Bond, 0, spokes)
	for i := 0; i < spokes; i++ {
		angle := float32(i) * 0.001
		ps = append(ps, solid(dynamo.LayerSail, 0, 0, 1))
		ps[i+1].Pos = dynamo.V(5+float32(i%7), 0).Rotate(angle)
		bonds = append(bonds, dynamo.NewBond(0, uint32(i+1), 4, 100, 10, dynamo.BondSail))
	}

	s := newScene(t, ps, bonds, nil)
	s.model.SolveBonds(s.backend, s.store, s.acc, s.params)
	px, py := s.acc.Peek(0)

	serial := compute.NewAccumulator(len(ps))
	s.model.SolveBonds(compute.NewSerialBackend(), s.store, serial, s.params)
	sx, sy := serial.Peek(0)

	require.NotZero(t, px)
	assert.Equal(t, sx, px, "fixed-point sums are order independent")
	assert.Equal(t, sy, py)
}

package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

func testStore(t *testing.T, ps ...dynamo.Particle) *dynamo.Store {
	t.Helper()
	st, err := dynamo.NewStore(ps, nil, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return st
}

func TestKineticEnergy(t *testing.T) {
	st := testStore(t,
		dynamo.Particle{Vel: dynamo.V(3, 4), Mass: 2, Layer: dynamo.LayerWater},
		dynamo.Particle{Vel: dynamo.V(1, 0), Mass: 10, Layer: dynamo.LayerHull},
	)

	if got := KineticEnergyOf(st); math.Abs(got-30) > 1e-9 {
		t.Errorf("expected total energy 30, got %f", got)
	}
	if got := KineticEnergyOf(st, dynamo.Hull); math.Abs(got-5) > 1e-9 {
		t.Errorf("expected hull energy 5, got %f", got)
	}

	m := NewKineticEnergy(dynamo.Water)
	if m.Name() != "kinetic_energy_water" {
		t.Errorf("unexpected name %q", m.Name())
	}
	m.Observe(st, sim.TickStats{})
	st.Particles[0].Vel = dynamo.Vec2{}
	m.Observe(st, sim.TickStats{})
	if math.Abs(m.Value()-12.5) > 1e-9 {
		t.Errorf("expected mean 12.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	st := testStore(t, dynamo.Particle{Vel: dynamo.V(10, 0), Mass: 1, Layer: dynamo.LayerAir})
	m := NewEnergyDrift()

	m.Observe(st, sim.TickStats{})
	st.Particles[0].Vel = dynamo.V(5, 0)
	m.Observe(st, sim.TickStats{})
	st.Particles[0].Vel = dynamo.V(9, 0)
	m.Observe(st, sim.TickStats{})

	if math.Abs(m.Value()-0.75) > 1e-6 {
		t.Errorf("expected max drift 0.75, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestStability(t *testing.T) {
	st := testStore(t, dynamo.Particle{Vel: dynamo.V(1, 0), Mass: 1, Layer: dynamo.LayerWater})
	s := NewStability(100)
	if s.Value() != 1 {
		t.Errorf("expected 1 before any sample, got %f", s.Value())
	}

	s.Observe(st, sim.TickStats{})
	st.Particles[0].Vel = dynamo.V(200, 0)
	s.Observe(st, sim.TickStats{})
	st.Particles[0].Vel = dynamo.V(float32(math.NaN()), 0)
	s.Observe(st, sim.TickStats{})
	st.Particles[0].Vel = dynamo.V(0, 0)
	s.Observe(st, sim.TickStats{})

	if math.Abs(s.Value()-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %f", s.Value())
	}
}

func TestMaxSpeed(t *testing.T) {
	st := testStore(t,
		dynamo.Particle{Vel: dynamo.V(3, 4), Mass: 1, Layer: dynamo.LayerWater},
		dynamo.Particle{Vel: dynamo.V(0, -2), Mass: 1, Layer: dynamo.LayerAir},
	)
	m := NewMaxSpeed()
	m.Observe(st, sim.TickStats{})
	st.Particles[0].Vel = dynamo.Vec2{}
	m.Observe(st, sim.TickStats{})
	if math.Abs(m.Value()-5) > 1e-6 {
		t.Errorf("expected 5, got %f", m.Value())
	}
}

func TestSummarizeDensity(t *testing.T) {
	st := testStore(t,
		dynamo.Particle{Density: 1, Mass: 1, Layer: dynamo.LayerWater},
		dynamo.Particle{Density: 3, Mass: 1, Layer: dynamo.LayerWater},
		dynamo.Particle{Density: 9, Mass: 1, Layer: dynamo.LayerAir},
	)

	s, buf := SummarizeDensity(st, dynamo.Water, 2, nil)
	if s.Count != 2 || math.Abs(s.Mean-1) > 1e-9 || math.Abs(s.Max-1.5) > 1e-9 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.StdDev <= 0 {
		t.Errorf("expected positive spread, got %f", s.StdDev)
	}

	s, _ = SummarizeDensity(st, dynamo.Sail, 1, buf)
	if s != (DensitySummary{}) {
		t.Errorf("expected empty summary, got %+v", s)
	}
}

func TestCompressionAndIntegrity(t *testing.T) {
	st := testStore(t,
		dynamo.Particle{Density: 1.1, Mass: 1, Layer: dynamo.LayerWater},
		dynamo.Particle{Density: 1.1, Mass: 1, Layer: dynamo.LayerWater},
	)
	c := NewCompression(dynamo.Water, 1)
	c.Observe(st, sim.TickStats{})
	if math.Abs(c.Value()-0.1) > 1e-6 {
		t.Errorf("expected compression 0.1, got %f", c.Value())
	}

	b := NewBondIntegrity()
	if b.Value() != 1 {
		t.Errorf("expected 1 without bonds, got %f", b.Value())
	}
	st.Bonds = make([]dynamo.Bond, 4)
	b.Observe(st, sim.TickStats{ActiveBonds: 3})
	if b.Value() != 0.75 {
		t.Errorf("expected 0.75, got %f", b.Value())
	}
}

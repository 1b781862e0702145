package metrics

import (
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

// BondIntegrity is the fraction of bonds still active at the last observed
// tick. A store without bonds reports 1.
type BondIntegrity struct {
	active int
	total  int
}

func NewBondIntegrity() *BondIntegrity { return &BondIntegrity{} }

func (b *BondIntegrity) Name() string { return "bond_integrity" }

func (b *BondIntegrity) Observe(st *dynamo.Store, stats sim.TickStats) {
	b.active = stats.ActiveBonds
	b.total = len(st.Bonds)
}

func (b *BondIntegrity) Value() float64 {
	if b.total == 0 {
		return 1
	}
	return float64(b.active) / float64(b.total)
}

func (b *BondIntegrity) Reset() {
	b.active = 0
	b.total = 0
}

// Standard returns the metric set attached to every run.
func Standard(tp dynamo.TickParams, maxSpeed float32) []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewStability(maxSpeed),
		NewMaxSpeed(),
		NewCompression(dynamo.Water, tp.TargetDensityWater),
		NewBondIntegrity(),
	}
}

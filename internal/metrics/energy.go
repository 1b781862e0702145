package metrics

import (
	"math"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

// KineticEnergyOf sums ½mv² over the particles of the given materials, or
// over every particle when none are given. Static particles never move and
// contribute nothing.
func KineticEnergyOf(st *dynamo.Store, materials ...dynamo.Material) float64 {
	var mask [dynamo.NumMaterials]bool
	for _, m := range materials {
		mask[m] = true
	}
	var ke float64
	for i := range st.Particles {
		p := &st.Particles[i]
		if len(materials) > 0 && !mask[p.Material()] {
			continue
		}
		ke += 0.5 * float64(p.Mass) * float64(p.Vel.Len2())
	}
	return ke
}

// KineticEnergy is the mean kinetic energy over the observed ticks.
type KineticEnergy struct {
	name      string
	materials []dynamo.Material
	samples   int
	total     float64
}

func NewKineticEnergy(materials ...dynamo.Material) *KineticEnergy {
	name := "kinetic_energy"
	if len(materials) == 1 {
		name += "_" + materials[0].String()
	}
	return &KineticEnergy{
		name:      name,
		materials: materials,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(st *dynamo.Store, _ sim.TickStats) {
	e.total += KineticEnergyOf(st, e.materials...)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change of kinetic energy from the
// first observed tick. Without inflow the damping makes this a loss, with
// inflow a gain; sudden large values point at an unstable tuning.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(st *dynamo.Store, _ sim.TickStats) {
	energy := KineticEnergyOf(st)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

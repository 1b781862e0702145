package physics

import (
	"fmt"

	"github.com/san-kum/sailsim/internal/dynamo"
)

// Relation classifies a particle pair for the neighbour loops.
type Relation uint8

const (
	// RelNone pairs never interact (different solids, or filtered by height).
	RelNone Relation = iota
	// RelSame pairs share a material: pressure, viscosity, anti-clustering.
	RelSame
	// RelFluidSolid pairs exchange a soft-sphere repulsion only.
	RelFluidSolid
	// RelFluidFluid pairs are water and air: crest deflection only.
	RelFluidFluid
)

func (r Relation) String() string {
	switch r {
	case RelSame:
		return "same"
	case RelFluidSolid:
		return "fluid-solid"
	case RelFluidFluid:
		return "fluid-fluid"
	}
	return "none"
}

// Classify decides how two materials interact, ignoring height.
func Classify(a, b dynamo.Material) Relation {
	switch {
	case a == b:
		return RelSame
	case a.Phase() != b.Phase():
		return RelFluidSolid
	case a.Phase() == dynamo.Fluid:
		return RelFluidFluid
	}
	return RelNone
}

// Relate classifies a pair including the 2.5D height filter.
func Relate(a, b *dynamo.Particle, zTolerance float32) Relation {
	dz := a.ZHeight - b.ZHeight
	if dz < 0 {
		dz = -dz
	}
	if !(dz < zTolerance) {
		return RelNone
	}
	return Classify(a.Material(), b.Material())
}

// Profile is a soft-sphere repulsion: Strength at contact, zero at Radius.
type Profile struct {
	Strength float32
	Radius   float32
	Ramp     Ramp
}

func (p Profile) Force(dist float32) float32 {
	if p.Strength <= 0 {
		return 0
	}
	return p.Strength * p.Ramp.Eval(dist, p.Radius)
}

// Table is the symmetric material-pair repulsion table.
type Table [dynamo.NumMaterials][dynamo.NumMaterials]Profile

func (t *Table) Get(a, b dynamo.Material) Profile { return t[a][b] }

// Set stores p for both orderings of the pair.
func (t *Table) Set(a, b dynamo.Material, p Profile) {
	t[a][b] = p
	t[b][a] = p
}

// MaxRadius is the widest cutoff in the table.
func (t *Table) MaxRadius() float32 {
	var r float32
	for a := range t {
		for b := range t[a] {
			if t[a][b].Strength > 0 && t[a][b].Radius > r {
				r = t[a][b].Radius
			}
		}
	}
	return r
}

// DefaultTable keeps the ramp shapes and radii of the tuned boat setup.
// Air strengths are scaled for its lower rest density.
func DefaultTable() Table {
	var t Table
	t.Set(dynamo.Water, dynamo.Hull, Profile{Strength: 400, Radius: 12, Ramp: RampQuadratic})
	t.Set(dynamo.Air, dynamo.Hull, Profile{Strength: 200, Radius: 20, Ramp: RampLinear})
	t.Set(dynamo.Air, dynamo.Sail, Profile{Strength: 50, Radius: 15, Ramp: RampQuadratic})
	t.Set(dynamo.Water, dynamo.Sail, Profile{Strength: 200, Radius: 10, Ramp: RampQuadratic})
	t.Set(dynamo.Water, dynamo.Air, Profile{Strength: 20, Radius: 8, Ramp: RampQuadratic})
	return t
}

// Validate applies the stability bounds the table was tuned against.
func (t *Table) Validate() error {
	for a := dynamo.Material(0); a < dynamo.NumMaterials; a++ {
		for b := dynamo.Material(0); b < dynamo.NumMaterials; b++ {
			p := t[a][b]
			switch {
			case p != t[b][a]:
				return fmt.Errorf("%w: %v-%v profile is not symmetric", ErrUnstableTuning, a, b)
			case p.Strength < 0:
				return fmt.Errorf("%w: %v-%v negative strength", ErrUnstableTuning, a, b)
			case p.Strength > 0 && !(p.Radius > 0):
				return fmt.Errorf("%w: %v-%v strength without radius", ErrUnstableTuning, a, b)
			case p.Ramp > RampQuadratic:
				return fmt.Errorf("%w: %v-%v unknown ramp %d", ErrUnstableTuning, a, b, p.Ramp)
			case a == b && p.Strength != 0:
				return fmt.Errorf("%w: same-material %v pair uses SPH, not repulsion", ErrUnstableTuning, a)
			}
		}
	}

	wh := t.Get(dynamo.Water, dynamo.Hull)
	if wh.Ramp != RampQuadratic || wh.Strength > 500_000 {
		return fmt.Errorf("%w: water-hull must be quadratic and at most 500000", ErrUnstableTuning)
	}
	ah := t.Get(dynamo.Air, dynamo.Hull)
	if ah.Strength > 5_000_000 || (ah.Strength > 0 && ah.Radius < 10) {
		return fmt.Errorf("%w: air-hull at most 5000000 with radius >= 10", ErrUnstableTuning)
	}
	as := t.Get(dynamo.Air, dynamo.Sail)
	if as.Strength > 100_000 || (as.Strength > 0 && as.Ramp != RampQuadratic) {
		return fmt.Errorf("%w: air-sail must be quadratic and at most 100000", ErrUnstableTuning)
	}
	return nil
}

package dynamo

import "strings"

// Layer is the per-particle flag set. The low five bits name the material,
// the next bits are modifiers that combine with any material.
type Layer uint32

const (
	LayerWater Layer = 1 << iota
	LayerAir
	LayerHull
	LayerSail
	LayerMast

	// Kinematic particles are driven by a Kinematic record instead of forces.
	LayerKinematic
	// Recycled particles re-enter at the inflow edge after leaving the domain.
	LayerRecycled
)

const (
	materialMask = LayerWater | LayerAir | LayerHull | LayerSail | LayerMast
	modifierMask = LayerKinematic | LayerRecycled
)

// Material is the closed set of particle materials.
type Material uint8

const (
	Water Material = iota
	Air
	Hull
	Sail
	Mast

	NumMaterials = 5
)

// Phase separates fluids (SPH) from solids (bond network).
type Phase uint8

const (
	Fluid Phase = iota
	Solid
)

var materialNames = [NumMaterials]string{"water", "air", "hull", "sail", "mast"}

func (m Material) String() string {
	if int(m) < NumMaterials {
		return materialNames[m]
	}
	return "unknown"
}

func (m Material) Phase() Phase {
	if m == Water || m == Air {
		return Fluid
	}
	return Solid
}

// Layer returns the single material flag for m.
func (m Material) Layer() Layer { return Layer(1) << m }

// ParseMaterial maps a name such as "water" back to its Material.
func ParseMaterial(name string) (Material, bool) {
	for i, n := range materialNames {
		if strings.EqualFold(n, name) {
			return Material(i), true
		}
	}
	return 0, false
}

// Material resolves the material bits in priority order water, air, hull,
// sail, mast. A flag set without material bits reads as mast.
func (l Layer) Material() Material {
	switch {
	case l&LayerWater != 0:
		return Water
	case l&LayerAir != 0:
		return Air
	case l&LayerHull != 0:
		return Hull
	case l&LayerSail != 0:
		return Sail
	default:
		return Mast
	}
}

func (l Layer) Has(flag Layer) bool   { return l&flag == flag }
func (l Layer) With(flag Layer) Layer { return l | flag }
func (l Layer) IsFluid() bool         { return l.Material().Phase() == Fluid }
func (l Layer) IsSolid() bool         { return l.Material().Phase() == Solid }
func (l Layer) Modifiers() Layer      { return l & modifierMask }
func (l Layer) MaterialBits() Layer   { return l & materialMask }

func (l Layer) String() string {
	parts := []string{l.Material().String()}
	if l.Has(LayerKinematic) {
		parts = append(parts, "kinematic")
	}
	if l.Has(LayerRecycled) {
		parts = append(parts, "recycled")
	}
	return strings.Join(parts, "+")
}

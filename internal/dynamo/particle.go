package dynamo

// Particle is one element of the shared particle buffer. The layout is
// fixed at 48 bytes so the buffer can be handed to a compute device as-is.
type Particle struct {
	Pos      Vec2
	Vel      Vec2
	Mass     float32
	Density  float32
	Pressure float32
	ZHeight  float32
	Layer    Layer
	CellID   uint32
	_        [2]float32
}

func (p *Particle) Material() Material { return p.Layer.Material() }

// BondType tags a bond with the structure it belongs to.
type BondType uint32

const (
	BondHull BondType = iota
	BondSail
	BondSheet
	BondFuse
)

func (t BondType) String() string {
	switch t {
	case BondHull:
		return "hull"
	case BondSail:
		return "sail"
	case BondSheet:
		return "sheet"
	case BondFuse:
		return "fuse"
	}
	return "unknown"
}

// Bond is a spring-damper between particles A and B (32 bytes).
// Active goes from 1 to 0 exactly once and never back.
type Bond struct {
	A, B           uint32
	RestLength     float32
	Stiffness      float32
	BreakingStrain float32
	Type           BondType
	Active         uint32
	_              uint32
}

func NewBond(a, b uint32, rest, stiffness, breaking float32, typ BondType) Bond {
	return Bond{
		A:              a,
		B:              b,
		RestLength:     rest,
		Stiffness:      stiffness,
		BreakingStrain: breaking,
		Type:           typ,
		Active:         1,
	}
}

func (b *Bond) IsActive() bool { return b.Active != 0 }

// Channel selects which commanded angle drives a kinematic particle.
type Channel uint8

const (
	ChannelRudder Channel = iota
	ChannelSail
)

// Kinematic pins a particle to pivot + RestOffset rotated by the commanded
// angle of its channel.
type Kinematic struct {
	Particle   uint32
	Pivot      Vec2
	RestOffset Vec2
	Channel    Channel
}

// Target returns the commanded position for the given angle.
func (k Kinematic) Target(angle float32) Vec2 {
	return k.Pivot.Add(k.RestOffset.Rotate(angle))
}

package dynamo

import "fmt"

// Store owns the persistent simulation buffers. Everything else the solver
// touches is per-tick scratch.
type Store struct {
	Particles  []Particle
	Bonds      []Bond
	Kinematics []Kinematic

	kinSlot []int32
}

// NewStore validates the initial buffers produced by scenario setup. Kinematic
// records set the kinematic flag on their particle.
func NewStore(particles []Particle, bonds []Bond, kinematics []Kinematic) (*Store, error) {
	n := len(particles)
	if n == 0 {
		return nil, ErrEmptyStore
	}

	for i, b := range bonds {
		if int(b.A) >= n || int(b.B) >= n {
			return nil, fmt.Errorf("%w: bond %d (%d-%d) with %d particles", ErrBondIndex, i, b.A, b.B, n)
		}
		if b.A == b.B || !(b.RestLength > 0) {
			return nil, fmt.Errorf("%w: bond %d (%d-%d, rest %g)", ErrBondGeometry, i, b.A, b.B, b.RestLength)
		}
	}

	slots := make([]int32, n)
	for i := range slots {
		slots[i] = -1
	}
	for k, kin := range kinematics {
		if int(kin.Particle) >= n {
			return nil, fmt.Errorf("%w: record %d targets particle %d of %d", ErrKinematic, k, kin.Particle, n)
		}
		if slots[kin.Particle] >= 0 {
			return nil, fmt.Errorf("%w: particle %d has two records", ErrKinematic, kin.Particle)
		}
		slots[kin.Particle] = int32(k)
		particles[kin.Particle].Layer |= LayerKinematic
	}
	for i := range particles {
		if particles[i].Layer.Has(LayerKinematic) && slots[i] < 0 {
			return nil, fmt.Errorf("%w: particle %d flagged without a record", ErrKinematic, i)
		}
	}

	return &Store{
		Particles:  particles,
		Bonds:      bonds,
		Kinematics: kinematics,
		kinSlot:    slots,
	}, nil
}

func (s *Store) Len() int { return len(s.Particles) }

// KinematicOf returns the kinematic record of particle i, if any.
func (s *Store) KinematicOf(i int) (Kinematic, bool) {
	k := s.kinSlot[i]
	if k < 0 {
		return Kinematic{}, false
	}
	return s.Kinematics[k], true
}

// ParticleView is the read-back record exposed to renderers.
type ParticleView struct {
	Pos      Vec2
	Vel      Vec2
	Density  float32
	Pressure float32
	Layer    Layer
}

// Snapshot copies the post-tick particle state into dst, growing it as needed.
func (s *Store) Snapshot(dst []ParticleView) []ParticleView {
	if cap(dst) < len(s.Particles) {
		dst = make([]ParticleView, len(s.Particles))
	}
	dst = dst[:len(s.Particles)]
	for i := range s.Particles {
		p := &s.Particles[i]
		dst[i] = ParticleView{
			Pos:      p.Pos,
			Vel:      p.Vel,
			Density:  p.Density,
			Pressure: p.Pressure,
			Layer:    p.Layer,
		}
	}
	return dst
}

// BondStates copies the active flags into dst.
func (s *Store) BondStates(dst []bool) []bool {
	if cap(dst) < len(s.Bonds) {
		dst = make([]bool, len(s.Bonds))
	}
	dst = dst[:len(s.Bonds)]
	for i := range s.Bonds {
		dst[i] = s.Bonds[i].IsActive()
	}
	return dst
}

func (s *Store) ActiveBonds() int {
	n := 0
	for i := range s.Bonds {
		if s.Bonds[i].IsActive() {
			n++
		}
	}
	return n
}

// CountMaterial returns how many particles carry material m.
func (s *Store) CountMaterial(m Material) int {
	n := 0
	for i := range s.Particles {
		if s.Particles[i].Material() == m {
			n++
		}
	}
	return n
}

// IsFinite reports whether every position and velocity is finite.
func (s *Store) IsFinite() bool {
	for i := range s.Particles {
		if !s.Particles[i].Pos.IsFinite() || !s.Particles[i].Vel.IsFinite() {
			return false
		}
	}
	return true
}

// Clone deep-copies the store, used by hosts that reset a scene.
func (s *Store) Clone() *Store {
	c := &Store{
		Particles:  append([]Particle(nil), s.Particles...),
		Bonds:      append([]Bond(nil), s.Bonds...),
		Kinematics: append([]Kinematic(nil), s.Kinematics...),
		kinSlot:    append([]int32(nil), s.kinSlot...),
	}
	return c
}

package metrics

import (
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

// Stability is the fraction of ticks on which every particle stayed finite
// and below the speed threshold.
type Stability struct {
	name       string
	threshold  float32
	violations int
	samples    int
}

func NewStability(threshold float32) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st *dynamo.Store, _ sim.TickStats) {
	s.samples++
	limit := s.threshold * s.threshold
	for i := range st.Particles {
		p := &st.Particles[i]
		if !p.Pos.IsFinite() || !p.Vel.IsFinite() || p.Vel.Len2() > limit {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxSpeed records the fastest particle seen over the run.
type MaxSpeed struct {
	peak float32
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(st *dynamo.Store, _ sim.TickStats) {
	for i := range st.Particles {
		m.peak = max(m.peak, st.Particles[i].Vel.Len())
	}
}

func (m *MaxSpeed) Value() float64 { return float64(m.peak) }
func (m *MaxSpeed) Reset()         { m.peak = 0 }

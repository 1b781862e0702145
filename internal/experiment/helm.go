package experiment

import (
	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/dynamo"
)

// Helm holds the commanded rudder and sail angles. Each nudge moves one
// channel by Step, clamped to ±Limit.
type Helm struct {
	Step   float32
	Limit  float32
	Rudder float32
	Sail   float32
}

func NewHelm(cfg *config.Config) *Helm {
	return &Helm{
		Step:   cfg.Control.Step,
		Limit:  cfg.Control.Limit,
		Rudder: dynamo.Clamp(cfg.Tick.RudderAngle, -cfg.Control.Limit, cfg.Control.Limit),
		Sail:   dynamo.Clamp(cfg.Tick.SailAngle, -cfg.Control.Limit, cfg.Control.Limit),
	}
}

// Nudge steps channel c by dir steps.
func (h *Helm) Nudge(c dynamo.Channel, dir int) {
	delta := float32(dir) * h.Step
	switch c {
	case dynamo.ChannelRudder:
		h.Rudder = dynamo.Clamp(h.Rudder+delta, -h.Limit, h.Limit)
	case dynamo.ChannelSail:
		h.Sail = dynamo.Clamp(h.Sail+delta, -h.Limit, h.Limit)
	}
}

func (h *Helm) Center() {
	h.Rudder = 0
	h.Sail = 0
}

// Control implements sim.Controller.
func (h *Helm) Control(_ int, tp *dynamo.TickParams) {
	tp.RudderAngle = h.Rudder
	tp.SailAngle = h.Sail
}

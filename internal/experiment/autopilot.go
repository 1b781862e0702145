package experiment

import (
	"math"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

// Autopilot holds a course by driving the helm's rudder with a PID loop on
// the heading error. The sail stays under manual control.
type Autopilot struct {
	Kp       float32
	Ki       float32
	Kd       float32
	Course   float32
	MinSpeed float32

	helm      *Helm
	solver    *sim.Solver
	frameTime float32
	integral  float32
	prevErr   float32
	prevT     float32
	first     bool
}

func NewAutopilot(exp *Experiment, helm *Helm, ap config.AutopilotConfig) *Autopilot {
	cfg := exp.Config()
	return &Autopilot{
		Kp:        ap.Kp,
		Ki:        ap.Ki,
		Kd:        ap.Kd,
		Course:    ap.Course,
		MinSpeed:  ap.MinSpeed,
		helm:      helm,
		solver:    exp.Solver(),
		frameTime: cfg.Tick.Dt * float32(cfg.Substeps),
		first:     true,
	}
}

// Control implements sim.Controller. While the hull is slower than MinSpeed
// its heading is undefined and the rudder is left where it is.
func (a *Autopilot) Control(frame int, tp *dynamo.TickParams) {
	if heading, ok := HullHeading(a.solver.Store(), a.MinSpeed); ok {
		a.helm.Rudder = dynamo.Clamp(a.compute(heading, float32(frame)*a.frameTime), -a.helm.Limit, a.helm.Limit)
	}
	a.helm.Control(frame, tp)
}

func (a *Autopilot) compute(heading, t float32) float32 {
	err := WrapAngle(a.Course - heading)

	if a.first {
		a.prevErr = err
		a.prevT = t
		a.first = false
		return a.Kp * err
	}

	dt := t - a.prevT
	if dt <= 0 {
		return a.Kp * err
	}
	a.integral += err * dt
	if a.Ki > 0 {
		// keep the integral term within the rudder's reach
		bound := a.helm.Limit / a.Ki
		a.integral = dynamo.Clamp(a.integral, -bound, bound)
	}
	derivative := WrapAngle(err-a.prevErr) / dt

	a.prevErr = err
	a.prevT = t
	return a.Kp*err + a.Ki*a.integral + a.Kd*derivative
}

// Reset clears integral and derivative state.
func (a *Autopilot) Reset() {
	a.integral = 0
	a.prevErr = 0
	a.first = true
}

// HullHeading is the direction of the mean hull velocity.
func HullHeading(st *dynamo.Store, minSpeed float32) (float32, bool) {
	var sum dynamo.Vec2
	n := 0
	for i := range st.Particles {
		p := &st.Particles[i]
		if p.Material() != dynamo.Hull {
			continue
		}
		sum = sum.Add(p.Vel)
		n++
	}
	if n == 0 {
		return 0, false
	}
	mean := sum.Scale(1 / float32(n))
	if !mean.IsFinite() || mean.Len() <= minSpeed {
		return 0, false
	}
	return float32(math.Atan2(float64(mean.Y), float64(mean.X))), true
}

// WrapAngle maps an angle into (-π, π].
func WrapAngle(a float32) float32 {
	w := math.Mod(float64(a)+math.Pi, 2*math.Pi)
	if w <= 0 {
		w += 2 * math.Pi
	}
	return float32(w - math.Pi)
}

// Controller returns the autopilot when the config enables it, otherwise
// the helm on its own.
func (e *Experiment) Controller(helm *Helm) sim.Controller {
	if e.cfg.Control.Autopilot.Enabled {
		return NewAutopilot(e, helm, e.cfg.Control.Autopilot)
	}
	return helm
}

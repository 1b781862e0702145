package physics

import (
	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
)

// Integrate drains the bond forces and advances every particle by one step.
// Each particle's accumulator slot is drained exactly once, whichever branch
// it takes.
func (m *Model) Integrate(b compute.Backend, st *dynamo.Store, acc *compute.Accumulator, tp dynamo.TickParams) {
	ps := st.Particles
	ip := m.Integrator
	dt := tp.Dt

	b.Dispatch(len(ps), func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			fx, fy := acc.Drain(i)

			if m.Immovable(p) {
				p.Vel = dynamo.Vec2{}
				continue
			}

			if kin, ok := st.KinematicOf(i); ok {
				target := kin.Target(tp.Angle(kin.Channel))
				p.Vel = target.Sub(p.Pos).Scale(1 / dt).ClampLen(ip.MaxSpeed)
				p.Pos = target
				continue
			}

			mass := max(p.Mass, m.Fluid.DensityFloor)
			p.Vel = p.Vel.Add(dynamo.V(fx, fy).Scale(dt / mass))

			// a recycled particle re-enters with exactly the inflow velocity
			if p.Layer.Has(dynamo.LayerRecycled) && p.Pos.X > m.Bounds.MaxX {
				p.Pos.X = m.Bounds.MinX
				p.Vel = ip.Inflow
				p.Density = tp.TargetDensity(p.Material())
				p.Pressure = 0
			} else {
				p.Vel = p.Vel.Add(m.boundaryPush(p.Pos).Scale(dt))
			}
			p.Pos.X = dynamo.Clamp(p.Pos.X, m.Bounds.MinX, m.Bounds.MaxX)
			p.Pos.Y = dynamo.Clamp(p.Pos.Y, m.Bounds.MinY, m.Bounds.MaxY)

			p.Pos = p.Pos.Add(p.Vel.Scale(dt))
			p.Vel = p.Vel.ClampLen(ip.MaxSpeed)
		}
	})
}

// boundaryPush is the wall acceleration at pos: zero beyond the threshold,
// rising quadratically to BoundaryStrength at a closed edge.
func (m *Model) boundaryPush(pos dynamo.Vec2) dynamo.Vec2 {
	ip := m.Integrator
	if ip.BoundaryThreshold <= 0 {
		return dynamo.Vec2{}
	}
	ramp := func(dist float32) float32 {
		return ip.BoundaryStrength * RampQuadratic.Eval(max(dist, 0), ip.BoundaryThreshold)
	}

	var push dynamo.Vec2
	if !ip.OpenFlow {
		push.X += ramp(pos.X - m.Bounds.MinX)
		push.X -= ramp(m.Bounds.MaxX - pos.X)
	}
	push.Y += ramp(pos.Y - m.Bounds.MinY)
	push.Y -= ramp(m.Bounds.MaxY - pos.Y)
	return push
}

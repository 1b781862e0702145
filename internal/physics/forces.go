package physics

import (
	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/grid"
)

// ComputeForces evaluates every pairwise and body force and writes the
// resulting velocity of particle i into next[i]. Particle state is only
// read here; CommitVelocities publishes next after the barrier.
func (m *Model) ComputeForces(b compute.Backend, ps []dynamo.Particle, g *grid.Grid, tp dynamo.TickParams, next []dynamo.Vec2) {
	k := NewKernel(tp.SmoothingRadius)
	closeR := m.Fluid.CloseFraction * tp.SmoothingRadius
	sailNormal := dynamo.V(1, 0).Rotate(tp.SailAngle)
	sorted := g.Sorted()
	f := m.Fluid

	b.Dispatch(len(ps), func(start, end int) {
		var block [9]grid.Span
		for i := start; i < end; i++ {
			p := &ps[i]
			if m.Immovable(p) || p.Layer.Has(dynamo.LayerKinematic) {
				next[i] = p.Vel
				continue
			}
			mat := p.Material()
			fluid := mat.Phase() == dynamo.Fluid

			var force, smooth dynamo.Vec2
			n := g.Block(p.CellID, &block)
			for _, span := range block[:n] {
				for _, j := range sorted[span.Start:span.End] {
					if int(j) == i {
						continue
					}
					q := &ps[j]
					rel := Relate(p, q, f.ZTolerance)
					if rel == RelNone {
						continue
					}
					d := p.Pos.Sub(q.Pos)
					r2 := d.Len2()

					switch rel {
					case RelSame:
						if r2 >= k.h2 {
							continue
						}
						dir, r := m.separation(i, int(j), d, r2)
						force = force.Add(m.sameForce(k, closeR, p, q, dir, r))
						if fluid && f.XSPHEpsilon > 0 {
							rhobar := 0.5 * (p.Density + q.Density)
							w := 0.5 * (p.Mass + q.Mass) / rhobar * k.W(r2)
							smooth = smooth.Add(q.Vel.Sub(p.Vel).Scale(w))
						}
					case RelFluidSolid:
						prof := m.Table.Get(mat, q.Material())
						if prof.Strength <= 0 || r2 >= prof.Radius*prof.Radius {
							continue
						}
						dir, r := m.separation(i, int(j), d, r2)
						force = force.Add(dir.Scale(prof.Force(r)))
					case RelFluidFluid:
						if !m.crest(p, q, tp) {
							continue
						}
						prof := m.Table.Get(dynamo.Water, dynamo.Air)
						if prof.Strength <= 0 || r2 >= prof.Radius*prof.Radius {
							continue
						}
						dir, r := m.separation(i, int(j), d, r2)
						force = force.Add(dir.Scale(prof.Force(r)))
					}
				}
			}

			// fluids convert force density through density, solids through mass
			inertia := p.Mass
			if fluid {
				inertia = p.Density
			}
			if !(inertia > f.DensityFloor) {
				inertia = f.DensityFloor
			}

			v := p.Vel.Add(force.Scale(tp.Dt / inertia))
			v.Y += tp.Gravity * tp.Dt
			if mat == dynamo.Sail {
				mass := max(p.Mass, f.DensityFloor)
				v = v.Add(m.sailForce(p.Vel, sailNormal).Scale(tp.Dt / mass))
			}
			if fluid {
				v = v.Add(smooth.Scale(f.XSPHEpsilon))
			}
			next[i] = v.Scale(f.VelocityDamping)
		}
	})
}

// CommitVelocities copies the scratch velocities into the store.
func (m *Model) CommitVelocities(b compute.Backend, ps []dynamo.Particle, next []dynamo.Vec2) {
	b.Dispatch(len(ps), func(start, end int) {
		for i := start; i < end; i++ {
			ps[i].Vel = next[i]
		}
	})
}

// separation returns the unit vector from b to a and the floored distance.
// Coincident particles get an axis chosen by index order so the pair still
// pushes apart antisymmetrically.
func (m *Model) separation(a, b int, d dynamo.Vec2, r2 float32) (dynamo.Vec2, float32) {
	minD := m.Fluid.MinDistance
	if r2 < minD*minD {
		if a < b {
			return dynamo.V(-1, 0), minD
		}
		return dynamo.V(1, 0), minD
	}
	r := dynamo.Sqrt(r2)
	return d.Scale(1 / r), r
}

// pressureForce is the symmetric pressure-gradient term on a from b.
// Swapping a and b (and flipping dir) negates it.
func (m *Model) pressureForce(k Kernel, a, b *dynamo.Particle, dir dynamo.Vec2, r float32) dynamo.Vec2 {
	mbar := 0.5 * (a.Mass + b.Mass)
	rhobar := max(0.5*(a.Density+b.Density), m.Fluid.DensityFloor)
	return dir.Scale(-mbar * (a.Pressure + b.Pressure) / (2 * rhobar) * k.GradW(r))
}

func (m *Model) sameForce(k Kernel, closeR float32, a, b *dynamo.Particle, dir dynamo.Vec2, r float32) dynamo.Vec2 {
	force := m.pressureForce(k, a, b, dir, r)

	if r < closeR {
		force = force.Add(dir.Scale(m.Fluid.CloseRepulsion * (1 - r/closeR)))
	}

	mbar := 0.5 * (a.Mass + b.Mass)
	rhobar := max(0.5*(a.Density+b.Density), m.Fluid.DensityFloor)
	visc := m.Fluid.Viscosity * mbar / rhobar * k.LapW(r)
	return force.Add(b.Vel.Sub(a.Vel).Scale(visc))
}

// crest reports whether air particle a is deflected by water neighbour b.
// Only the air side ever receives the force.
func (m *Model) crest(a, b *dynamo.Particle, tp dynamo.TickParams) bool {
	if a.Material() != dynamo.Air || b.Material() != dynamo.Water {
		return false
	}
	return b.Density/tp.TargetDensityWater > tp.WindThreshold
}

// sailForce pushes a sail particle toward the wind along the sail normal
// and resists its motion with quadratic drag.
func (m *Model) sailForce(vel, normal dynamo.Vec2) dynamo.Vec2 {
	rel := m.Aero.Wind.Sub(vel)
	drive := normal.Scale(m.Aero.Drive * rel.Dot(normal))
	drag := vel.Scale(-m.Aero.Drag * vel.Len())
	return drive.Add(drag)
}

package physics

import (
	"math"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/grid"
)

// ComputeDensity writes every particle's density from its 3x3 cell block.
// Solid neighbours of a fluid (and the reverse) are weighted with the
// receiving particle's own mass, as ghost particles of its phase.
func (m *Model) ComputeDensity(b compute.Backend, ps []dynamo.Particle, g *grid.Grid, tp dynamo.TickParams) {
	k := NewKernel(tp.SmoothingRadius)
	sorted := g.Sorted()
	floor := m.Fluid.DensityFloor
	ztol := m.Fluid.ZTolerance

	b.Dispatch(len(ps), func(start, end int) {
		var block [9]grid.Span
		for i := start; i < end; i++ {
			p := &ps[i]
			var rho float32

			n := g.Block(p.CellID, &block)
			for _, span := range block[:n] {
				for _, j := range sorted[span.Start:span.End] {
					if int(j) == i {
						continue
					}
					q := &ps[j]
					rel := Relate(p, q, ztol)
					if rel != RelSame && rel != RelFluidSolid {
						continue
					}
					w := k.W(q.Pos.Sub(p.Pos).Len2())
					if w == 0 {
						continue
					}
					if rel == RelSame {
						rho += q.Mass * w
					} else {
						rho += p.Mass * w
					}
				}
			}

			if !(rho > floor) {
				rho = floor
			}
			p.Density = rho
		}
	})
}

// ComputePressure applies the Tait equation of state per particle.
func (m *Model) ComputePressure(b compute.Backend, ps []dynamo.Particle, tp dynamo.TickParams) {
	b.Dispatch(len(ps), func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			p.Pressure = m.Pressure(p.Density, tp.TargetDensity(p.Material()))
		}
	})
}

// Pressure is clamp(stiffness*((rho/target)^gamma - 1), 0, cap).
func (m *Model) Pressure(rho, target float32) float32 {
	if !(target > 0) {
		return 0
	}
	ratio := float64(rho / target)
	p := m.Fluid.PressureStiffness * (float32(math.Pow(ratio, float64(m.Fluid.Gamma))) - 1)
	if !(p > 0) {
		return 0
	}
	return min(p, m.Fluid.PressureCap)
}

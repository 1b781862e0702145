package physics

import (
	"sync/atomic"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
)

// maxBondForce keeps bond forces inside the accumulator's overflow-safe range.
const maxBondForce = compute.MaxForce

// SolveBonds applies every active bond to the accumulator and returns how
// many bonds fractured in this pass. A fractured bond is never revisited.
func (m *Model) SolveBonds(b compute.Backend, st *dynamo.Store, acc *compute.Accumulator, tp dynamo.TickParams) int {
	ps := st.Particles
	bonds := st.Bonds
	limit := m.Bonds.MaxForce
	var broken atomic.Int64

	b.Dispatch(len(bonds), func(start, end int) {
		for k := start; k < end; k++ {
			bond := &bonds[k]
			if bond.Active == 0 {
				continue
			}
			pa, pb := &ps[bond.A], &ps[bond.B]

			rest := bond.RestLength
			if bond.Type == dynamo.BondSheet {
				rest *= tp.SheetExtension
			}

			d := pb.Pos.Sub(pa.Pos)
			dist := d.Len()
			if (dist-rest)/rest > bond.BreakingStrain {
				bond.Active = 0
				broken.Add(1)
				continue
			}
			// a collapsed bond still pushes its ends apart along an index-ordered axis
			away, r := m.separation(int(bond.A), int(bond.B), d.Neg(), d.Len2())
			dir := away.Neg()
			dist = r
			spring := dynamo.Clamp(bond.Stiffness*(dist-rest), -limit, limit)
			damp := m.Bonds.Damping * pb.Vel.Sub(pa.Vel).Dot(dir)
			f := dir.Scale(spring + damp).ClampLen(limit)

			acc.Add(int(bond.A), f.X, f.Y)
			acc.Add(int(bond.B), -f.X, -f.Y)
		}
	})

	return int(broken.Load())
}

// Strain is the relative elongation of bond k against its effective rest
// length.
func Strain(st *dynamo.Store, k int, tp dynamo.TickParams) float32 {
	bond := &st.Bonds[k]
	rest := bond.RestLength
	if bond.Type == dynamo.BondSheet {
		rest *= tp.SheetExtension
	}
	d := st.Particles[bond.B].Pos.Sub(st.Particles[bond.A].Pos).Len()
	return (d - rest) / rest
}

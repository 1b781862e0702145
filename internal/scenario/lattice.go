package scenario

import (
	"math/rand"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/physics"
)

// CalibrateMass returns the particle mass at which a square lattice of the
// given spacing reads exactly target density under the poly6 kernel. The
// particle itself is excluded, matching the density estimator.
func CalibrateMass(h, spacing, target float32) float32 {
	k := physics.NewKernel(h)
	reach := int(h/spacing) + 1
	var sum float32
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d := dynamo.V(float32(dx)*spacing, float32(dy)*spacing)
			sum += k.W(d.Len2())
		}
	}
	if sum == 0 {
		// spacing wider than the kernel: every particle sits at the floor anyway
		return target
	}
	return target / sum
}

// Lattice is a block of particles laid out row-major on a square grid,
// starting at index Start of the particle array.
type Lattice struct {
	Start      int
	Cols, Rows int
}

func (l Lattice) Len() int { return l.Cols * l.Rows }

func (l Lattice) At(col, row int) uint32 {
	return uint32(l.Start + row*l.Cols + col)
}

func (l Lattice) Center() uint32 { return l.At(l.Cols/2, l.Rows/2) }

// BondSpec describes how a lattice is stitched together.
type BondSpec struct {
	Type      dynamo.BondType
	Stiffness float32
	Breaking  float32
	Diagonals bool
	// SkipStiffness, when positive, adds bonds two rows apart to resist
	// bending along the columns.
	SkipStiffness float32
}

// minRest keeps overlapping endpoints from producing a zero rest length.
const minRest = 0.1

// Link returns a bond between a and b with the current distance as rest
// length.
func Link(ps []dynamo.Particle, a, b uint32, typ dynamo.BondType, stiffness, breaking float32) dynamo.Bond {
	rest := max(ps[b].Pos.Sub(ps[a].Pos).Len(), minRest)
	return dynamo.NewBond(a, b, rest, stiffness, breaking, typ)
}

// Bonds links horizontal and vertical neighbours, plus diagonals and skip
// bonds when the BondSpec asks for them.
func (l Lattice) Bonds(ps []dynamo.Particle, spec BondSpec) []dynamo.Bond {
	var bonds []dynamo.Bond
	link := func(a, b uint32, stiffness float32) {
		bonds = append(bonds, Link(ps, a, b, spec.Type, stiffness, spec.Breaking))
	}

	for row := 0; row < l.Rows; row++ {
		for col := 0; col < l.Cols; col++ {
			i := l.At(col, row)
			if col+1 < l.Cols {
				link(i, l.At(col+1, row), spec.Stiffness)
			}
			if row+1 < l.Rows {
				link(i, l.At(col, row+1), spec.Stiffness)
			}
			if spec.Diagonals && col+1 < l.Cols && row+1 < l.Rows {
				link(i, l.At(col+1, row+1), spec.Stiffness)
				link(l.At(col+1, row), l.At(col, row+1), spec.Stiffness)
			}
			if spec.SkipStiffness > 0 && row+2 < l.Rows {
				link(i, l.At(col, row+2), spec.SkipStiffness)
			}
		}
	}
	return bonds
}

// builder accumulates particles and bonds for one scene.
type builder struct {
	p     Params
	rng   *rand.Rand
	scene *Scene
}

// block appends a cols x rows lattice of template particles with its lower
// left corner at origin.
func (b *builder) block(origin dynamo.Vec2, cols, rows int, spacing float32, tmpl dynamo.Particle) Lattice {
	l := Lattice{Start: len(b.scene.Particles), Cols: cols, Rows: rows}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := tmpl
			p.Pos = origin.Add(dynamo.V(float32(col)*spacing, float32(row)*spacing))
			b.scene.Particles = append(b.scene.Particles, p)
		}
	}
	return l
}

// Region is an axis-aligned rectangle.
type Region struct {
	Min, Max dynamo.Vec2
}

func (r Region) Contains(p dynamo.Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Grow returns r extended by margin on every side.
func (r Region) Grow(margin float32) Region {
	return Region{
		Min: r.Min.Sub(dynamo.V(margin, margin)),
		Max: r.Max.Add(dynamo.V(margin, margin)),
	}
}

// fill covers r with jittered fluid particles at the scene spacing, skipping
// any point inside one of the exclusion regions. vel, if non-nil, picks each
// particle's initial velocity.
func (b *builder) fill(r Region, tmpl dynamo.Particle, vel func(*rand.Rand) dynamo.Vec2, exclude ...Region) int {
	s := b.p.Spacing
	jitter := b.p.Jitter * s
	n := 0
	for y := r.Min.Y; y <= r.Max.Y; y += s {
	next:
		for x := r.Min.X; x <= r.Max.X; x += s {
			pos := dynamo.V(x, y)
			for _, ex := range exclude {
				if ex.Contains(pos) {
					continue next
				}
			}
			if jitter > 0 {
				pos = pos.Add(dynamo.V(
					(b.rng.Float32()*2-1)*jitter,
					(b.rng.Float32()*2-1)*jitter,
				))
			}
			p := tmpl
			p.Pos = pos
			if vel != nil {
				p.Vel = vel(b.rng)
			}
			b.scene.Particles = append(b.scene.Particles, p)
			n++
		}
	}
	return n
}

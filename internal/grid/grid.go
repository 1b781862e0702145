// Package grid is the uniform-cell spatial index rebuilt every tick with a
// parallel counting sort.
package grid

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
)

// MaxCells bounds the grid so the sequential prefix scan stays cheap.
const MaxCells = 1 << 20

// Span is a [Start, End) range into the sorted index array.
type Span struct {
	Start, End uint32
}

func (s Span) Len() int { return int(s.End - s.Start) }

// Grid partitions the domain into square cells. Particles outside the
// domain are clamped into the nearest boundary cell.
type Grid struct {
	bounds   dynamo.Bounds
	cellSize float32
	inv      float32
	cols     int
	rows     int

	counts []uint32 // per-cell population, atomic during Build
	start  []uint32 // exclusive prefix sum, len cells+1
	cursor []uint32 // running scatter offset, atomic during Build
	sorted []uint32
}

func New(bounds dynamo.Bounds, cellSize float32) (*Grid, error) {
	if !(cellSize > 0) {
		return nil, fmt.Errorf("grid: cell size must be positive, got %g", cellSize)
	}
	if !(bounds.Width() > 0) || !(bounds.Height() > 0) {
		return nil, fmt.Errorf("grid: empty domain %+v", bounds)
	}

	cols := int(math.Ceil(float64(bounds.Width() / cellSize)))
	rows := int(math.Ceil(float64(bounds.Height() / cellSize)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols*rows > MaxCells {
		return nil, fmt.Errorf("grid: %dx%d cells exceeds limit %d", cols, rows, MaxCells)
	}

	cells := cols * rows
	return &Grid{
		bounds:   bounds,
		cellSize: cellSize,
		inv:      1 / cellSize,
		cols:     cols,
		rows:     rows,
		counts:   make([]uint32, cells),
		start:    make([]uint32, cells+1),
		cursor:   make([]uint32, cells),
	}, nil
}

func (g *Grid) Cols() int             { return g.cols }
func (g *Grid) Rows() int             { return g.rows }
func (g *Grid) Cells() int            { return g.cols * g.rows }
func (g *Grid) CellSize() float32     { return g.cellSize }
func (g *Grid) Bounds() dynamo.Bounds { return g.bounds }

// Sorted is the permutation of particle indices grouped by cell. Valid
// until the next Build.
func (g *Grid) Sorted() []uint32 { return g.sorted }

// Cell maps a position to its row-major cell id, clamping out-of-domain and
// non-finite coordinates into the grid.
func (g *Grid) Cell(p dynamo.Vec2) uint32 {
	col := g.axis(p.X-g.bounds.MinX, g.cols)
	row := g.axis(p.Y-g.bounds.MinY, g.rows)
	return uint32(row*g.cols + col)
}

func (g *Grid) axis(offset float32, n int) int {
	f := math.Floor(float64(offset * g.inv))
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= float64(n) {
		return n - 1
	}
	return int(f)
}

// Range returns the sorted-array span holding the members of cell.
func (g *Grid) Range(cell uint32) Span {
	return Span{Start: g.start[cell], End: g.start[cell+1]}
}

// Block fills dst with the non-empty ranges of cell and its in-grid
// neighbours and returns how many it wrote.
func (g *Grid) Block(cell uint32, dst *[9]Span) int {
	col := int(cell) % g.cols
	row := int(cell) / g.cols
	n := 0
	for dy := -1; dy <= 1; dy++ {
		r := row + dy
		if r < 0 || r >= g.rows {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			c := col + dx
			if c < 0 || c >= g.cols {
				continue
			}
			s := g.Range(uint32(r*g.cols + c))
			if s.Start != s.End {
				dst[n] = s
				n++
			}
		}
	}
	return n
}

// Build assigns every particle its CellID and rebuilds the sorted index.
// Each step is a separate dispatch, so each one sees the previous step
// complete.
func (g *Grid) Build(b compute.Backend, ps []dynamo.Particle) {
	n := len(ps)
	if cap(g.sorted) < n {
		g.sorted = make([]uint32, n)
	}
	g.sorted = g.sorted[:n]
	cells := g.Cells()

	b.Dispatch(cells, func(start, end int) {
		for c := start; c < end; c++ {
			g.counts[c] = 0
		}
	})

	b.Dispatch(n, func(start, end int) {
		for i := start; i < end; i++ {
			c := g.Cell(ps[i].Pos)
			ps[i].CellID = c
			atomic.AddUint32(&g.counts[c], 1)
		}
	})

	g.prefix()

	b.Dispatch(n, func(start, end int) {
		for i := start; i < end; i++ {
			slot := atomic.AddUint32(&g.cursor[ps[i].CellID], 1) - 1
			g.sorted[slot] = uint32(i)
		}
	})
}

// prefix is the sequential exclusive scan over cell counts. It also seeds
// the scatter cursors, so start stays intact for readers.
func (g *Grid) prefix() {
	var sum uint32
	for c, count := range g.counts {
		g.start[c] = sum
		g.cursor[c] = sum
		sum += count
	}
	g.start[len(g.counts)] = sum
}

package grid

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
)

var testBounds = dynamo.Bounds{MinX: -100, MaxX: 100, MinY: -50, MaxY: 50}

func scatter(n int, pos func(i int) dynamo.Vec2) []dynamo.Particle {
	ps := make([]dynamo.Particle, n)
	for i := range ps {
		ps[i].Pos = pos(i)
	}
	return ps
}

func TestBuildIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		ps   []dynamo.Particle
	}{
		{"empty", nil},
		{"uniform", scatter(3000, func(int) dynamo.Vec2 {
			return dynamo.V(rng.Float32()*200-100, rng.Float32()*100-50)
		})},
		{"single cell", scatter(700, func(int) dynamo.Vec2 { return dynamo.V(1, 1) })},
		{"outside domain", scatter(500, func(i int) dynamo.Vec2 {
			return dynamo.V(float32(i-250)*10, float32(250-i)*7)
		})},
		{"non-finite", scatter(300, func(i int) dynamo.Vec2 {
			switch i % 3 {
			case 0:
				return dynamo.V(nan, 0)
			case 1:
				return dynamo.V(-inf, inf)
			}
			return dynamo.V(0, 0)
		})},
	}

	for _, tt := range tests {
		for _, name := range compute.Names() {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				b, err := compute.NewBackend(name, 4)
				require.NoError(t, err)
				defer b.Close()

				g, err := New(testBounds, 20)
				require.NoError(t, err)
				g.Build(b, tt.ps)

				seen := make([]int, len(tt.ps))
				total := 0
				for c := 0; c < g.Cells(); c++ {
					span := g.Range(uint32(c))
					total += span.Len()
					for _, idx := range g.Sorted()[span.Start:span.End] {
						seen[idx]++
						assert.Equal(t, uint32(c), tt.ps[idx].CellID, "particle %d in wrong range", idx)
					}
				}
				assert.Equal(t, len(tt.ps), total)
				for i, s := range seen {
					require.Equal(t, 1, s, "particle %d seen %d times", i, s)
				}
			})
		}
	}
}

func TestBuildTwiceReusesBuffers(t *testing.T) {
	g, err := New(testBounds, 20)
	require.NoError(t, err)
	b := compute.NewSerialBackend()

	ps := scatter(10, func(i int) dynamo.Vec2 { return dynamo.V(float32(i), 0) })
	g.Build(b, ps)
	first := g.Range(g.Cell(dynamo.V(0, 0))).Len()

	g.Build(b, ps)
	assert.Equal(t, first, g.Range(g.Cell(dynamo.V(0, 0))).Len(), "counts must reset each build")
	assert.Equal(t, 10, first)
}

func TestCellClamping(t *testing.T) {
	g, err := New(testBounds, 20)
	require.NoError(t, err)
	require.Equal(t, 10, g.Cols())
	require.Equal(t, 5, g.Rows())

	tests := []struct {
		pos  dynamo.Vec2
		want uint32
	}{
		{dynamo.V(-100, -50), 0},
		{dynamo.V(-1e9, -1e9), 0},
		{dynamo.V(99.9, 49.9), 49},
		{dynamo.V(100, 50), 49},
		{dynamo.V(1e9, -1e9), 9},
		{dynamo.V(-85, -25), 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Cell(tt.pos), "pos %v", tt.pos)
		assert.Less(t, g.Cell(tt.pos), uint32(g.Cells()))
	}
}

func TestBlock(t *testing.T) {
	g, err := New(testBounds, 20)
	require.NoError(t, err)

	ps := make([]dynamo.Particle, 0, g.Cells())
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			ps = append(ps, dynamo.Particle{Pos: dynamo.V(-90+float32(c)*20, -40+float32(r)*20)})
		}
	}
	g.Build(compute.NewSerialBackend(), ps)

	var spans [9]Span
	assert.Equal(t, 4, g.Block(0, &spans), "corner")
	assert.Equal(t, 6, g.Block(1, &spans), "edge")
	assert.Equal(t, 9, g.Block(11, &spans), "interior")
}

func TestNewRejectsBadGeometry(t *testing.T) {
	_, err := New(testBounds, 0)
	assert.Error(t, err)
	_, err = New(dynamo.Bounds{}, 10)
	assert.Error(t, err)
	_, err = New(testBounds, 1e-4)
	assert.Error(t, err)
}

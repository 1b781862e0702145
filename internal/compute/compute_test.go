package compute

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) []Backend {
	t.Helper()
	out := make([]Backend, 0, len(Names()))
	for _, name := range Names() {
		b, err := NewBackend(name, 4)
		require.NoError(t, err)
		t.Cleanup(b.Close)
		out = append(out, b)
	}
	return out
}

func TestDispatchCoversEveryIndexOnce(t *testing.T) {
	for _, b := range backends(t) {
		for _, n := range []int{0, 1, 63, 128, 1000, 4097} {
			hits := make([]int32, n)
			b.Dispatch(n, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("%s n=%d: index %d hit %d times", b.Name(), n, i, h)
				}
			}
		}
	}
}

func TestDispatchIsABarrier(t *testing.T) {
	const n = 5000
	for _, b := range backends(t) {
		stage1 := make([]int, n)
		b.Dispatch(n, func(start, end int) {
			for i := start; i < end; i++ {
				stage1[i] = i
			}
		})
		// every task of stage two reads a slot written by another task
		var bad atomic.Int32
		b.Dispatch(n, func(start, end int) {
			for i := start; i < end; i++ {
				j := n - 1 - i
				if stage1[j] != j {
					bad.Add(1)
				}
			}
		})
		assert.Zero(t, bad.Load(), b.Name())
	}
}

func TestCPUBackendRestartsAfterClose(t *testing.T) {
	b := NewCPUBackend(2)
	var count atomic.Int64
	run := func() {
		b.Dispatch(1000, func(start, end int) { count.Add(int64(end - start)) })
	}
	run()
	b.Close()
	run()
	b.Close()
	assert.Equal(t, int64(2000), count.Load())
}

func TestNewBackendUnknown(t *testing.T) {
	_, err := NewBackend("quantum", 0)
	assert.Error(t, err)
}

func TestChunks(t *testing.T) {
	tests := []struct {
		n, parts, min int
		want          int
	}{
		{0, 4, 1, 0},
		{10, 4, 64, 1},
		{1000, 4, 64, 4},
		{1000, 100, 64, 15},
	}
	for _, tt := range tests {
		got := chunks(tt.n, tt.parts, tt.min)
		assert.Len(t, got, tt.want, "n=%d parts=%d", tt.n, tt.parts)
		covered := 0
		for _, r := range got {
			covered += r[1] - r[0]
		}
		assert.Equal(t, tt.n, covered)
	}
}

func TestAccumulatorConcurrentAdds(t *testing.T) {
	acc := NewAccumulator(3)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 1000; k++ {
				acc.Add(1, 0.25, -0.5)
			}
		}()
	}
	wg.Wait()

	fx, fy := acc.Drain(1)
	assert.InDelta(t, 2000.0, fx, 1e-3)
	assert.InDelta(t, -4000.0, fy, 1e-3)

	fx, fy = acc.Drain(1)
	assert.Zero(t, fx)
	assert.Zero(t, fy)
}

func TestAccumulatorClampsBeforeScaling(t *testing.T) {
	acc := NewAccumulator(1)
	acc.Add(0, 1e30, -1e30)
	fx, fy := acc.Peek(0)
	assert.InDelta(t, MaxForce, fx, 1)
	assert.InDelta(t, -MaxForce, fy, 1)

	acc.Clear()
	fx, fy = acc.Peek(0)
	assert.Zero(t, fx)
	assert.Zero(t, fy)
}

func TestMaxFanInBound(t *testing.T) {
	// worst case: MaxFanIn contributions of MaxForce must stay representable
	require.Greater(t, MaxFanIn, int64(1_000_000))
	worst := float64(MaxFanIn) * MaxForce * FixedPointScale
	assert.Less(t, worst, 9.3e18)
}

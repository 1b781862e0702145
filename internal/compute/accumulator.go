package compute

import (
	"math"
	"sync/atomic"
)

const (
	// FixedPointShift sets the accumulator resolution to 1/4096 force units.
	FixedPointShift = 12
	FixedPointScale = 1 << FixedPointShift

	// MaxForce bounds every component handed to Add. Together with the
	// scale it fixes how many contributions one slot can absorb.
	MaxForce = 1e8

	// MaxFanIn is the number of worst-case contributions a slot can take
	// before its int64 could overflow.
	MaxFanIn = math.MaxInt64 / int64(MaxForce*FixedPointScale)
)

// Accumulator is a race-safe per-particle force channel. Tasks add into it
// concurrently with atomic integer adds; the integrator drains each slot
// exactly once per tick.
type Accumulator struct {
	x, y []atomic.Int64
}

func NewAccumulator(n int) *Accumulator {
	a := &Accumulator{}
	a.Resize(n)
	return a
}

func (a *Accumulator) Len() int { return len(a.x) }

// Resize reallocates for n slots, all zero.
func (a *Accumulator) Resize(n int) {
	a.x = make([]atomic.Int64, n)
	a.y = make([]atomic.Int64, n)
}

// Add accumulates (fx, fy) into slot i. Components are clamped to
// ±MaxForce before scaling.
func (a *Accumulator) Add(i int, fx, fy float32) {
	if qx := quantize(fx); qx != 0 {
		a.x[i].Add(qx)
	}
	if qy := quantize(fy); qy != 0 {
		a.y[i].Add(qy)
	}
}

// Drain returns the accumulated force of slot i and resets it to zero.
func (a *Accumulator) Drain(i int) (fx, fy float32) {
	return dequantize(a.x[i].Swap(0)), dequantize(a.y[i].Swap(0))
}

// Peek reads slot i without resetting it.
func (a *Accumulator) Peek(i int) (fx, fy float32) {
	return dequantize(a.x[i].Load()), dequantize(a.y[i].Load())
}

// Clear zeroes every slot.
func (a *Accumulator) Clear() {
	for i := range a.x {
		a.x[i].Store(0)
		a.y[i].Store(0)
	}
}

func quantize(f float32) int64 {
	v := float64(f)
	if math.IsNaN(v) {
		return 0
	}
	if v > MaxForce {
		v = MaxForce
	} else if v < -MaxForce {
		v = -MaxForce
	}
	return int64(math.Round(v * FixedPointScale))
}

func dequantize(q int64) float32 {
	return float32(float64(q) / FixedPointScale)
}

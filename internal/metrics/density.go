package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

// DensitySummary describes the density ratio ρ/ρ0 of one material.
type DensitySummary struct {
	Count  int
	Mean   float64
	StdDev float64
	Max    float64
}

// SummarizeDensity computes the density ratio statistics for material m
// against target. buf is reused when large enough.
func SummarizeDensity(st *dynamo.Store, m dynamo.Material, target float32, buf []float64) (DensitySummary, []float64) {
	buf = buf[:0]
	for i := range st.Particles {
		p := &st.Particles[i]
		if p.Material() == m {
			buf = append(buf, float64(p.Density/target))
		}
	}
	if len(buf) == 0 {
		return DensitySummary{}, buf
	}
	mean, std := stat.MeanStdDev(buf, nil)
	if len(buf) == 1 {
		std = 0
	}
	return DensitySummary{
		Count:  len(buf),
		Mean:   mean,
		StdDev: std,
		Max:    floats.Max(buf),
	}, buf
}

// Compression is the mean over ticks of |mean(ρ/ρ0) - 1| for one material,
// a rough measure of how incompressible the fluid stays.
type Compression struct {
	material dynamo.Material
	target   float32
	buf      []float64
	total    float64
	samples  int
}

func NewCompression(m dynamo.Material, target float32) *Compression {
	return &Compression{material: m, target: target}
}

func (c *Compression) Name() string { return "compression_" + c.material.String() }

func (c *Compression) Observe(st *dynamo.Store, _ sim.TickStats) {
	var s DensitySummary
	s, c.buf = SummarizeDensity(st, c.material, c.target, c.buf)
	if s.Count == 0 {
		return
	}
	d := s.Mean - 1
	if d < 0 {
		d = -d
	}
	c.total += d
	c.samples++
}

func (c *Compression) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.total / float64(c.samples)
}

func (c *Compression) Reset() {
	c.total = 0
	c.samples = 0
}

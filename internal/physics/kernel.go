package physics

import "math"

// Kernel holds the 2D SPH kernels for one smoothing radius. Every kernel is
// exactly zero at and beyond the radius and continuous there. Non-finite
// distances evaluate to zero.
type Kernel struct {
	h, h2 float32
	poly6 float32
	spiky float32
	visc  float32
}

func NewKernel(h float32) Kernel {
	hf := float64(h)
	return Kernel{
		h:     h,
		h2:    h * h,
		poly6: float32(4 / (math.Pi * math.Pow(hf, 8))),
		spiky: float32(-30 / (math.Pi * math.Pow(hf, 5))),
		visc:  float32(40 / (math.Pi * math.Pow(hf, 5))),
	}
}

func (k Kernel) Radius() float32 { return k.h }

// W is the poly6 density kernel evaluated at squared distance r2.
func (k Kernel) W(r2 float32) float32 {
	if !(r2 < k.h2) || r2 < 0 {
		return 0
	}
	d := k.h2 - r2
	return k.poly6 * d * d * d
}

// GradW is the spiky gradient magnitude along the separation axis. It is
// negative inside the support.
func (k Kernel) GradW(r float32) float32 {
	if !(r < k.h) || r < 0 {
		return 0
	}
	d := k.h - r
	return k.spiky * d * d
}

// LapW is the viscosity laplacian.
func (k Kernel) LapW(r float32) float32 {
	if !(r < k.h) || r < 0 {
		return 0
	}
	return k.visc * (k.h - r)
}

// Ramp shapes a soft-sphere repulsion between zero separation and cutoff.
type Ramp uint32

const (
	RampLinear Ramp = iota
	RampQuadratic
)

func (r Ramp) String() string {
	if r == RampQuadratic {
		return "quadratic"
	}
	return "linear"
}

func ParseRamp(name string) (Ramp, bool) {
	switch name {
	case "linear":
		return RampLinear, true
	case "quadratic":
		return RampQuadratic, true
	}
	return 0, false
}

// Eval returns 1 at zero separation falling to 0 at the cutoff.
func (r Ramp) Eval(dist, cutoff float32) float32 {
	if !(cutoff > 0) || dist >= cutoff {
		return 0
	}
	t := 1 - dist/cutoff
	if t > 1 {
		t = 1
	}
	if r == RampQuadratic {
		return t * t
	}
	return t
}

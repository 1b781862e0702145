package dynamo

import (
	"fmt"
	"math"
)

// Bounds is the declared simulation domain.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float32
}

func (b Bounds) Width() float32  { return b.MaxX - b.MinX }
func (b Bounds) Height() float32 { return b.MaxY - b.MinY }

func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// TickParams is the read-only snapshot the host supplies for one tick.
type TickParams struct {
	Dt                 float32
	Gravity            float32
	SmoothingRadius    float32
	TargetDensityWater float32
	TargetDensityAir   float32
	WindThreshold      float32
	RudderAngle        float32
	SailAngle          float32
	SheetExtension     float32
}

func DefaultTickParams() TickParams {
	return TickParams{
		Dt:                 0.005,
		SmoothingRadius:    10,
		TargetDensityWater: 1,
		TargetDensityAir:   0.1,
		WindThreshold:      0.5,
		SheetExtension:     1,
	}
}

// Angle returns the commanded angle for a kinematic channel.
func (p TickParams) Angle(c Channel) float32 {
	if c == ChannelSail {
		return p.SailAngle
	}
	return p.RudderAngle
}

// TargetDensity returns the rest density for a material. Solids use the
// water target.
func (p TickParams) TargetDensity(m Material) float32 {
	if m == Air {
		return p.TargetDensityAir
	}
	return p.TargetDensityWater
}

func (p TickParams) Validate() error {
	check := func(name string, v float32, positive bool) error {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
		if positive && v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidParams, name, v)
		}
		return nil
	}
	fields := []struct {
		name     string
		v        float32
		positive bool
	}{
		{"dt", p.Dt, true},
		{"gravity", p.Gravity, false},
		{"smoothing radius", p.SmoothingRadius, true},
		{"water target density", p.TargetDensityWater, true},
		{"air target density", p.TargetDensityAir, true},
		{"wind threshold", p.WindThreshold, false},
		{"rudder angle", p.RudderAngle, false},
		{"sail angle", p.SailAngle, false},
		{"sheet extension", p.SheetExtension, true},
	}
	for _, f := range fields {
		if err := check(f.name, f.v, f.positive); err != nil {
			return err
		}
	}
	return nil
}

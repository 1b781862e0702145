package dynamo

import "math"

// Vec2 is a 2D vector in simulation units.
type Vec2 struct {
	X, Y float32
}

func V(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float32   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len2() float32        { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float32         { return Sqrt(v.Len2()) }
func (v Vec2) Neg() Vec2            { return Vec2{-v.X, -v.Y} }
func (v Vec2) Perp() Vec2           { return Vec2{-v.Y, v.X} }
func (v Vec2) IsFinite() bool       { return finite(v.X) && finite(v.Y) }

// Rotate turns v counter-clockwise by angle radians.
func (v Vec2) Rotate(angle float32) Vec2 {
	s, c := SinCos(angle)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// ClampLen scales v down so its length does not exceed limit.
func (v Vec2) ClampLen(limit float32) Vec2 {
	l2 := v.Len2()
	if l2 <= limit*limit || l2 == 0 {
		return v
	}
	return v.Scale(limit / Sqrt(l2))
}

func Sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }

func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func finite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

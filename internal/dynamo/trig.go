package dynamo

import "math"

// angleSteps is the resolution of the rotation table, about 0.0015 rad.
const angleSteps = 4096

// rotation holds interleaved sin, cos pairs for one turn.
var rotation = func() [2 * (angleSteps + 1)]float32 {
	var t [2 * (angleSteps + 1)]float32
	for i := 0; i <= angleSteps; i++ {
		a := float64(i) * 2 * math.Pi / angleSteps
		t[2*i] = float32(math.Sin(a))
		t[2*i+1] = float32(math.Cos(a))
	}
	return t
}()

// SinCos interpolates sin and cos of angle from the rotation table. Zero is
// exact.
func SinCos(angle float32) (sin, cos float32) {
	if angle == 0 {
		return 0, 1
	}
	x := math.Mod(float64(angle), 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	pos := x * angleSteps / (2 * math.Pi)
	i := int(pos)
	if i >= angleSteps {
		i = angleSteps - 1
	}
	f := float32(pos - float64(i))
	s0, c0 := rotation[2*i], rotation[2*i+1]
	s1, c1 := rotation[2*i+2], rotation[2*i+3]
	return s0 + (s1-s0)*f, c0 + (c1-c0)*f
}

package experiment

import (
	"math"
	"testing"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/scenario"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{7 * math.Pi / 4, -math.Pi / 4},
	}
	for _, tt := range tests {
		got := float64(WrapAngle(float32(tt.in)))
		if math.Abs(got-tt.want) > 1e-5 {
			t.Errorf("WrapAngle(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestHullHeading(t *testing.T) {
	particles := []dynamo.Particle{
		{Vel: dynamo.V(0, 4), Layer: dynamo.LayerHull},
		{Vel: dynamo.V(0, 2), Layer: dynamo.LayerHull},
		{Vel: dynamo.V(100, 0), Layer: dynamo.LayerWater},
	}
	st, err := dynamo.NewStore(particles, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	heading, ok := HullHeading(st, 1)
	if !ok {
		t.Fatal("expected a heading")
	}
	if math.Abs(float64(heading)-math.Pi/2) > 1e-5 {
		t.Errorf("expected heading π/2, got %g", heading)
	}

	if _, ok := HullHeading(st, 5); ok {
		t.Error("hull slower than min speed should have no heading")
	}

	water, _ := dynamo.NewStore(particles[2:], nil, nil)
	if _, ok := HullHeading(water, 0); ok {
		t.Error("scene without a hull should have no heading")
	}
}

func TestAutopilotCompute(t *testing.T) {
	ap := &Autopilot{Kp: 2, Ki: 1, Kd: 0, Course: 0, helm: &Helm{Limit: 1}, first: true}

	if u := ap.compute(-0.25, 0); math.Abs(float64(u)-0.5) > 1e-6 {
		t.Errorf("first step should be proportional only, got %g", u)
	}
	u := ap.compute(-0.25, 1)
	if math.Abs(float64(u)-0.75) > 1e-6 {
		t.Errorf("expected P+I = 0.75, got %g", u)
	}

	for i := 2; i < 50; i++ {
		ap.compute(-0.25, float32(i))
	}
	if ap.integral > 1 {
		t.Errorf("integral should be bounded by limit/ki, got %g", ap.integral)
	}

	ap.Reset()
	if ap.integral != 0 || !ap.first {
		t.Error("reset should clear the loop state")
	}
	if u := ap.compute(0.25, 0); u >= 0 {
		t.Errorf("heading right of course should steer the other way, got %g", u)
	}
}

func TestControllerSelection(t *testing.T) {
	cfg := smallConfig("hurricane")
	exp, err := New(cfg, scenario.NewRegistry(), quietLogger())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer exp.Close()

	helm := NewHelm(cfg)
	if _, ok := exp.Controller(helm).(*Helm); !ok {
		t.Error("expected the helm without autopilot")
	}

	cfg.Control.Autopilot.Enabled = true
	ctrl, ok := exp.Controller(helm).(*Autopilot)
	if !ok {
		t.Fatal("expected the autopilot")
	}

	helm.Rudder = 0.4
	var tp dynamo.TickParams
	ctrl.Control(0, &tp)
	if tp.SailAngle != helm.Sail {
		t.Error("sail should stay under the helm")
	}
	if tp.RudderAngle != helm.Rudder {
		t.Error("commanded rudder should reach the tick params")
	}

	result, err := exp.Run(t.Context(), ctrl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Ticks != 6 {
		t.Errorf("expected 6 ticks, got %d", result.Ticks)
	}
}

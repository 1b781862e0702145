package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/scenario"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig(name string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scenario = name
	cfg.Frames = 3
	cfg.Substeps = 2
	cfg.Backend = "serial"
	cfg.Scene.Spacing = 10
	return cfg
}

func TestExperimentRun(t *testing.T) {
	for _, name := range scenario.NewRegistry().List() {
		t.Run(name, func(t *testing.T) {
			exp, err := New(smallConfig(name), scenario.NewRegistry(), quietLogger())
			if err != nil {
				t.Fatalf("setup: %v", err)
			}
			defer exp.Close()

			result, err := exp.Run(context.Background(), nil)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if result.Ticks != 6 {
				t.Errorf("expected 6 ticks, got %d", result.Ticks)
			}
			for _, key := range []string{"kinetic_energy", "stability", "bond_integrity", "max_speed"} {
				if _, ok := result.Metrics[key]; !ok {
					t.Errorf("missing metric %s", key)
				}
			}
			if !exp.Solver().Store().IsFinite() {
				t.Error("state went non-finite")
			}
		})
	}
}

func TestExperimentReset(t *testing.T) {
	exp, err := New(smallConfig("water_only"), scenario.NewRegistry(), quietLogger())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer exp.Close()

	start := exp.Scene().Particles[0].Pos
	if _, err := exp.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if exp.Solver().Store().Particles[0].Pos == start {
		t.Fatal("expected the flow to move particle 0")
	}
	if err := exp.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if exp.Solver().Store().Particles[0].Pos != start || exp.Solver().Ticks() != 0 {
		t.Error("reset did not restore the scene")
	}
}

func TestExperimentSetupErrors(t *testing.T) {
	cfg := smallConfig("regatta")
	if _, err := New(cfg, scenario.NewRegistry(), quietLogger()); !errors.Is(err, scenario.ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}

	cfg = smallConfig("water_only")
	cfg.Frames = 0
	if _, err := New(cfg, scenario.NewRegistry(), quietLogger()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestHelm(t *testing.T) {
	cfg := config.DefaultConfig()
	h := NewHelm(cfg)

	for i := 0; i < 100; i++ {
		h.Nudge(dynamo.ChannelRudder, 1)
	}
	if h.Rudder != cfg.Control.Limit {
		t.Errorf("expected rudder clamped to %g, got %g", cfg.Control.Limit, h.Rudder)
	}

	h.Nudge(dynamo.ChannelSail, -2)
	if diff := h.Sail + 2*cfg.Control.Step; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected sail %g, got %g", -2*cfg.Control.Step, h.Sail)
	}

	tp := cfg.TickParams()
	h.Control(0, &tp)
	if tp.RudderAngle != h.Rudder || tp.SailAngle != h.Sail {
		t.Errorf("control not applied: %+v", tp)
	}

	h.Center()
	if h.Rudder != 0 || h.Sail != 0 {
		t.Error("center did not zero the helm")
	}
}

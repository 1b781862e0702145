package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/experiment"
	"github.com/san-kum/sailsim/internal/scenario"
)

// MonteCarloConfig reruns one configuration with a fresh scene seed per
// trial.
type MonteCarloConfig struct {
	Trials int
	Seed   int64 // 0 seeds from the clock
}

// Trial is one ensemble member.
type Trial struct {
	ID          int
	Seed        int64
	Ticks       uint64
	Broken      int
	ActiveBonds int
	Energy      float64
	Stable      bool // finished, stayed finite and under the speed limit
	Err         error
}

// RunMonteCarlo runs the ensemble. A failing trial is recorded and the
// ensemble carries on; only a cancelled ctx stops it early.
func RunMonteCarlo(ctx context.Context, base *config.Config, reg *scenario.Registry, mc MonteCarloConfig, logger *slog.Logger) ([]Trial, error) {
	if mc.Trials <= 0 {
		return nil, fmt.Errorf("automation: trials must be positive, got %d", mc.Trials)
	}
	if logger == nil {
		logger = slog.Default()
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]Trial, 0, mc.Trials)
	for trial := 0; trial < mc.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg := base.Clone()
		cfg.Scene.Seed = rng.Int63()
		t := Trial{ID: trial, Seed: cfg.Scene.Seed}

		exp, err := experiment.New(cfg, reg, logger)
		if err != nil {
			return results, err
		}
		result, err := exp.Run(ctx, exp.Controller(experiment.NewHelm(cfg)))
		exp.Close()

		if result != nil {
			t.Ticks = result.Ticks
			t.Broken = result.Broken
			t.ActiveBonds = result.ActiveBonds
			t.Energy = result.Metrics["kinetic_energy"]
			t.Stable = err == nil && result.Metrics["stability"] == 1
		}
		t.Err = err
		results = append(results, t)

		if err != nil && ctx.Err() != nil {
			return results, ctx.Err()
		}
		logger.Debug("trial complete", "trial", trial, "seed", t.Seed, "broken", t.Broken, "stable", t.Stable)
		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", "done", trial+1, "trials", mc.Trials)
		}
	}

	return results, nil
}

// MonteCarloStats summarizes an ensemble.
type MonteCarloStats struct {
	Stable     int
	Unstable   int
	MeanBroken float64
	StdBroken  float64
	MeanEnergy float64
	StdEnergy  float64
}

func Stats(results []Trial) MonteCarloStats {
	var s MonteCarloStats
	broken := make([]float64, 0, len(results))
	energy := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Stable {
			s.Stable++
		} else {
			s.Unstable++
		}
		if r.Err == nil {
			broken = append(broken, float64(r.Broken))
			energy = append(energy, r.Energy)
		}
	}
	if len(broken) > 1 {
		s.MeanBroken, s.StdBroken = stat.MeanStdDev(broken, nil)
		s.MeanEnergy, s.StdEnergy = stat.MeanStdDev(energy, nil)
	} else if len(broken) == 1 {
		s.MeanBroken, s.MeanEnergy = broken[0], energy[0]
	}
	return s
}

func (s MonteCarloStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("stable", s.Stable),
		slog.Int("unstable", s.Unstable),
		slog.Float64("mean_broken", s.MeanBroken),
		slog.Float64("std_broken", s.StdBroken),
		slog.Float64("mean_energy", s.MeanEnergy),
	)
}

// Package experiment wires a configuration into a runnable solver: it builds
// the scenario, the physics model, the compute backend and the standard
// metrics.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/metrics"
	"github.com/san-kum/sailsim/internal/scenario"
	"github.com/san-kum/sailsim/internal/sim"
)

type Experiment struct {
	cfg     *config.Config
	scene   *scenario.Scene
	solver  *sim.Solver
	backend compute.Backend
	logger  *slog.Logger
}

func New(cfg *config.Config, reg *scenario.Registry, logger *slog.Logger) (*Experiment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scene, err := reg.Build(cfg.Scenario, scenario.NewParams(cfg))
	if err != nil {
		return nil, err
	}
	st, err := scene.Store()
	if err != nil {
		return nil, err
	}
	model, err := cfg.Model()
	if err != nil {
		return nil, err
	}
	backend, err := compute.NewBackend(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, err
	}

	solver, err := sim.New(st, model, backend, cfg.GridCellSize())
	if err != nil {
		backend.Close()
		return nil, err
	}
	solver.SetLogger(logger)
	for _, m := range metrics.Standard(cfg.TickParams(), model.Integrator.MaxSpeed) {
		solver.AddMetric(m)
	}

	logger.Info("experiment ready",
		"scenario", scene.Name,
		"particles", st.Len(),
		"bonds", len(st.Bonds),
		"kinematic", len(st.Kinematics),
		"backend", backend.Name(),
		"workers", backend.Workers(),
	)

	return &Experiment{
		cfg:     cfg,
		scene:   scene,
		solver:  solver,
		backend: backend,
		logger:  logger,
	}, nil
}

// Run plays the configured number of frames. ctrl may be nil, in which case
// the configured angles hold for the whole run.
func (e *Experiment) Run(ctx context.Context, ctrl sim.Controller) (*sim.Result, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		Frames:      e.cfg.Frames,
		Substeps:    e.cfg.Substeps,
		Params:      e.cfg.TickParams(),
		CheckFinite: true,
	}
	return e.solver.Run(ctx, simCfg, ctrl)
}

// Reset restores the initial scene.
func (e *Experiment) Reset() error {
	st, err := e.scene.Store()
	if err != nil {
		return err
	}
	e.solver.Reset(st)
	return nil
}

func (e *Experiment) Close() { e.backend.Close() }

func (e *Experiment) Solver() *sim.Solver    { return e.solver }
func (e *Experiment) Scene() *scenario.Scene { return e.scene }
func (e *Experiment) Config() *config.Config { return e.cfg }

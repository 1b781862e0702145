package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/grid"
	"github.com/san-kum/sailsim/internal/physics"
)

// Solver runs the fixed tick pipeline over one particle store.
type Solver struct {
	model   *physics.Model
	store   *dynamo.Store
	grid    *grid.Grid
	backend compute.Backend
	acc     *compute.Accumulator
	next    []dynamo.Vec2
	tick    uint64

	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

// New builds a solver over st on backend, which the caller owns. cellSize
// must be at least the smoothing radius of every tick it will run.
func New(st *dynamo.Store, model *physics.Model, backend compute.Backend, cellSize float32) (*Solver, error) {
	if backend == nil {
		return nil, fmt.Errorf("sim: nil backend")
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if r := model.Table.MaxRadius(); r > cellSize {
		return nil, fmt.Errorf("%w: interaction radius %g exceeds grid cell %g", physics.ErrUnstableTuning, r, cellSize)
	}
	g, err := grid.New(model.Bounds, cellSize)
	if err != nil {
		return nil, err
	}

	return &Solver{
		model:     model,
		store:     st,
		grid:      g,
		backend:   backend,
		acc:       compute.NewAccumulator(st.Len()),
		next:      make([]dynamo.Vec2, st.Len()),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}, nil
}

func (s *Solver) AddMetric(m Metric)                { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o Observer)            { s.observers = append(s.observers, o) }
func (s *Solver) SetLogger(l *slog.Logger)          { s.logger = l }
func (s *Solver) Store() *dynamo.Store              { return s.store }
func (s *Solver) Model() *physics.Model             { return s.model }
func (s *Solver) Backend() compute.Backend          { return s.backend }
func (s *Solver) Ticks() uint64                     { return s.tick }
func (s *Solver) Grid() *grid.Grid                  { return s.grid }
func (s *Solver) Accumulator() *compute.Accumulator { return s.acc }

// Reset swaps in a new store, e.g. a fresh copy of the scenario, and rewinds
// the tick counter.
func (s *Solver) Reset(st *dynamo.Store) {
	s.store = st
	s.acc.Resize(st.Len())
	s.acc.Clear()
	if cap(s.next) < st.Len() {
		s.next = make([]dynamo.Vec2, st.Len())
	}
	s.next = s.next[:st.Len()]
	s.tick = 0
}

// Tick advances the store by one fixed step. Invalid parameters skip the
// whole tick; once the pipeline starts it always runs to completion.
func (s *Solver) Tick(tp dynamo.TickParams) (TickStats, error) {
	if err := s.checkParams(tp); err != nil {
		return TickStats{}, &dynamo.SimulationError{Tick: s.tick, Wrapped: err}
	}

	st, b, m := s.store, s.backend, s.model
	ps := st.Particles
	var stats TickStats
	start := time.Now()

	s.grid.Build(b, ps)
	stats.Stages.Grid, start = lap(start)

	m.ComputeDensity(b, ps, s.grid, tp)
	m.ComputePressure(b, ps, tp)
	stats.Stages.Density, start = lap(start)

	m.ComputeForces(b, ps, s.grid, tp, s.next)
	m.CommitVelocities(b, ps, s.next)
	stats.Stages.Forces, start = lap(start)

	stats.Broken = m.SolveBonds(b, st, s.acc, tp)
	stats.Stages.Bonds, start = lap(start)

	m.Integrate(b, st, s.acc, tp)
	stats.Stages.Integrate, _ = lap(start)

	s.tick++
	stats.Tick = s.tick
	stats.ActiveBonds = st.ActiveBonds()

	if stats.Broken > 0 {
		s.logger.Info("bonds fractured", "tick", s.tick, "broken", stats.Broken, "active", stats.ActiveBonds)
	}
	s.logger.Debug("tick complete", "stats", stats)

	return stats, nil
}

func (s *Solver) checkParams(tp dynamo.TickParams) error {
	if err := tp.Validate(); err != nil {
		return err
	}
	if tp.SmoothingRadius > s.grid.CellSize() {
		return fmt.Errorf("%w: smoothing radius %g exceeds grid cell %g",
			dynamo.ErrInvalidParams, tp.SmoothingRadius, s.grid.CellSize())
	}
	return nil
}

func lap(start time.Time) (time.Duration, time.Time) {
	now := time.Now()
	return now.Sub(start), now
}

// Run is the host loop: for each frame it lets ctrl adjust the parameters,
// then runs cfg.Substeps ticks. The context is only checked between ticks.
func (s *Solver) Run(ctx context.Context, cfg Config, ctrl Controller) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	tp := cfg.Params
	begin := time.Now()
	defer func() {
		result.Elapsed = time.Since(begin)
		result.ActiveBonds = s.store.ActiveBonds()
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for frame := 0; frame < cfg.Frames; frame++ {
		if ctrl != nil {
			ctrl.Control(frame, &tp)
		}

		for sub := 0; sub < cfg.Substeps; sub++ {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			stats, err := s.Tick(tp)
			if err != nil {
				return result, err
			}
			result.Ticks++
			result.Broken += stats.Broken
			result.Stages.add(stats.Stages)

			for _, m := range s.metrics {
				m.Observe(s.store, stats)
			}
			for _, obs := range s.observers {
				obs.OnTick(s.store, stats)
			}

			if cfg.CheckFinite && !s.store.IsFinite() {
				return result, &dynamo.SimulationError{Tick: s.tick, Wrapped: dynamo.ErrUnstable}
			}
		}
	}

	return result, nil
}

func (s *Solver) validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.Substeps <= 0 {
		return fmt.Errorf("substeps must be positive, got %d", cfg.Substeps)
	}
	return nil
}

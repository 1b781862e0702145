package sim

import (
	"log/slog"
	"time"

	"github.com/san-kum/sailsim/internal/dynamo"
)

// Controller adjusts the tick parameters before each frame, typically from
// user input or a scripted manoeuvre.
type Controller interface {
	Control(frame int, tp *dynamo.TickParams)
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func(frame int, tp *dynamo.TickParams)

func (f ControllerFunc) Control(frame int, tp *dynamo.TickParams) { f(frame, tp) }

type Metric interface {
	Name() string
	Observe(st *dynamo.Store, stats TickStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(st *dynamo.Store, stats TickStats)
}

// Config drives Solver.Run. Each frame runs Substeps ticks with the same
// parameters.
type Config struct {
	Frames      int
	Substeps    int
	Params      dynamo.TickParams
	CheckFinite bool
}

type Result struct {
	Ticks       uint64
	Broken      int
	ActiveBonds int
	Stages      StageTimes
	Elapsed     time.Duration
	Metrics     map[string]float64
}

// StageTimes is the wall time spent in each stage of a tick.
type StageTimes struct {
	Grid      time.Duration
	Density   time.Duration
	Forces    time.Duration
	Bonds     time.Duration
	Integrate time.Duration
}

func (s StageTimes) Total() time.Duration {
	return s.Grid + s.Density + s.Forces + s.Bonds + s.Integrate
}

func (s *StageTimes) add(o StageTimes) {
	s.Grid += o.Grid
	s.Density += o.Density
	s.Forces += o.Forces
	s.Bonds += o.Bonds
	s.Integrate += o.Integrate
}

// TickStats describes one completed tick.
type TickStats struct {
	Tick        uint64
	Stages      StageTimes
	Broken      int
	ActiveBonds int
}

func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", s.Tick),
		slog.Int("broken", s.Broken),
		slog.Int("active_bonds", s.ActiveBonds),
		slog.Duration("grid", s.Stages.Grid),
		slog.Duration("density", s.Stages.Density),
		slog.Duration("forces", s.Stages.Forces),
		slog.Duration("bonds", s.Stages.Bonds),
		slog.Duration("integrate", s.Stages.Integrate),
	)
}

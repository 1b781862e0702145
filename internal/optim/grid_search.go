// Package optim sweeps run parameters over a grid and ranks the runs by one
// of the solver's metrics.
package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/experiment"
	"github.com/san-kum/sailsim/internal/scenario"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// setters are the config fields a sweep may vary.
var setters = map[string]func(*config.Config, float64){
	"tick.rudder_angle":        func(c *config.Config, v float64) { c.Tick.RudderAngle = float32(v) },
	"tick.sail_angle":          func(c *config.Config, v float64) { c.Tick.SailAngle = float32(v) },
	"tick.sheet_extension":     func(c *config.Config, v float64) { c.Tick.SheetExtension = float32(v) },
	"tick.wind_threshold":      func(c *config.Config, v float64) { c.Tick.WindThreshold = float32(v) },
	"aero.drive":               func(c *config.Config, v float64) { c.Aero.Drive = float32(v) },
	"aero.wind_x":              func(c *config.Config, v float64) { c.Aero.Wind[0] = float32(v) },
	"aero.wind_y":              func(c *config.Config, v float64) { c.Aero.Wind[1] = float32(v) },
	"fluid.viscosity":          func(c *config.Config, v float64) { c.Fluid.Viscosity = float32(v) },
	"fluid.pressure_stiffness": func(c *config.Config, v float64) { c.Fluid.PressureStiffness = float32(v) },
	"bonds.damping":            func(c *config.Config, v float64) { c.Bonds.Damping = float32(v) },
	"control.autopilot.kp":     func(c *config.Config, v float64) { c.Control.Autopilot.Kp = float32(v) },
	"control.autopilot.kd":     func(c *config.Config, v float64) { c.Control.Autopilot.Kd = float32(v) },
}

// Params lists the parameters a sweep can vary.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Apply sets a named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	set(cfg, v)
	return nil
}

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=lo:hi:n" (n evenly spaced values) or
// "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return Axis{}, fmt.Errorf("optim: expected name=values, got %q", s)
	}
	if _, ok := setters[name]; !ok {
		return Axis{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, Params())
	}

	if parts := strings.Split(list, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Axis{}, fmt.Errorf("optim: bad range %q: %w", list, err)
		}
		if n < 1 {
			return Axis{}, fmt.Errorf("optim: range %q needs at least one value", list)
		}
		values := make([]float64, n)
		for i := range values {
			if n == 1 {
				values[i] = lo
				continue
			}
			values[i] = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		return Axis{Name: name, Values: values}, nil
	}

	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("optim: bad value %q: %w", f, err)
		}
		values = append(values, v)
	}
	return Axis{Name: name, Values: values}, nil
}

// Point is one evaluated grid cell. Err is set when the run failed; such
// points never win.
type Point struct {
	Params map[string]float64
	Value  float64
	Ticks  uint64
	Err    error
}

type GridSearch struct {
	axes     []Axis
	metric   string
	maximize bool
	logger   *slog.Logger
}

func NewGridSearch(axes []Axis, metric string, maximize bool) *GridSearch {
	return &GridSearch{axes: axes, metric: metric, maximize: maximize, logger: slog.Default()}
}

func (g *GridSearch) SetLogger(logger *slog.Logger) { g.logger = logger }

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search runs one experiment per grid point, each on a fresh copy of base.
// It returns every point in grid order and the index of the best, or -1 if
// no run produced the metric. Cancelling ctx stops the sweep after the
// running point.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, reg *scenario.Registry) ([]Point, int, error) {
	points := make([]Point, 0, g.Size())
	best := -1
	bestVal := math.Inf(1)
	if g.maximize {
		bestVal = math.Inf(-1)
	}

	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) {
		p := g.evaluate(ctx, base, reg, params)
		points = append(points, p)
		if p.Err != nil || math.IsNaN(p.Value) {
			return
		}
		if (g.maximize && p.Value > bestVal) || (!g.maximize && p.Value < bestVal) {
			bestVal = p.Value
			best = len(points) - 1
		}
	})
	return points, best, err
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.axes) {
		visit(current)
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Name] = val

		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, reg *scenario.Registry, params map[string]float64) Point {
	p := Point{Params: params, Value: math.NaN()}

	cfg := base.Clone()
	for name, v := range params {
		if err := Apply(cfg, name, v); err != nil {
			p.Err = err
			return p
		}
	}

	exp, err := experiment.New(cfg, reg, g.logger)
	if err != nil {
		p.Err = err
		return p
	}
	defer exp.Close()

	result, err := exp.Run(ctx, exp.Controller(experiment.NewHelm(cfg)))
	if result != nil {
		p.Ticks = result.Ticks
	}
	if err != nil {
		p.Err = err
		g.logger.Warn("sweep point failed", "params", params, "error", err)
		return p
	}

	v, ok := result.Metrics[g.metric]
	if !ok {
		p.Err = fmt.Errorf("optim: run has no metric %q", g.metric)
		return p
	}
	p.Value = v
	g.logger.Debug("sweep point", "params", params, g.metric, v)
	return p
}

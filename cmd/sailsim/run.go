package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sailsim/internal/automation"
	"github.com/san-kum/sailsim/internal/compute"
	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/experiment"
	"github.com/san-kum/sailsim/internal/export"
	"github.com/san-kum/sailsim/internal/optim"
	"github.com/san-kum/sailsim/internal/scenario"
	"github.com/san-kum/sailsim/internal/storage"
	"github.com/san-kum/sailsim/internal/telemetry"
	"github.com/san-kum/sailsim/internal/viz"
)

// resolveConfig layers the run configuration: config file or defaults, then
// the scenario argument and preset, then any flags set on the command line.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := baseConfig()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Scenario = args[0]
	}
	if preset != "" {
		apply, ok := config.Presets[cfg.Scenario][preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scenario))
		}
		apply(cfg)
	}

	f := cmd.Flags()
	if f.Changed("frames") {
		cfg.Frames = frames
	}
	if f.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if f.Changed("backend") {
		cfg.Backend = backend
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("seed") {
		cfg.Scene.Seed = seed
	}
	if f.Lookup("every") != nil && f.Changed("every") {
		cfg.Telemetry.Every = every
	}
	if f.Lookup("course") != nil && f.Changed("course") {
		cfg.Control.Autopilot.Enabled = true
		cfg.Control.Autopilot.Course = float32(course)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	var plan *automation.Script
	if script != "" {
		if plan, err = automation.LoadScript(script); err != nil {
			return err
		}
		if !cmd.Flags().Changed("frames") {
			cfg.Frames = plan.Frames()
		}
		logger.Info("maneuver script loaded", "name", plan.Name, "legs", len(plan.Legs), "frames", plan.Frames())
	}

	exp, err := experiment.New(cfg, scenario.NewRegistry(), logger)
	if err != nil {
		return err
	}
	defer exp.Close()

	ctrl := exp.Controller(experiment.NewHelm(cfg))
	if plan != nil {
		ctrl = automation.NewPilot(plan, exp)
	}

	rec := telemetry.NewRecorder(cfg.Telemetry.Every, cfg.TickParams())
	rec.SetLogger(logger)
	exp.Solver().AddObserver(rec)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%d frames × %d substeps)...\n", cfg.Scenario, cfg.Frames, cfg.Substeps)
	result, runErr := exp.Run(ctx, ctrl)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run stopped early", "error", runErr, "ticks", result.Ticks)
	}

	summary := telemetry.Summarize(rec.Records())
	logger.Info("run complete", "summary", summary)

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("ticks: %d (%.0f/s)\n", result.Ticks, float64(result.Ticks)/result.Elapsed.Seconds())
	fmt.Printf("bonds: %d active, %d broken\n", result.ActiveBonds, result.Broken)

	if !noSave {
		st := storage.New(dataDir)
		runID, err := st.Save(storage.Run{
			Preset:    preset,
			Config:    cfg,
			Result:    result,
			Particles: exp.Solver().Store().Len(),
			Bonds:     len(exp.Solver().Store().Bonds),
			Records:   rec.Records(),
		})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	exp, err := experiment.New(cfg, scenario.NewRegistry(), tuiLogger())
	if err != nil {
		return err
	}
	defer exp.Close()

	title := cfg.Scenario
	if preset != "" {
		title += " · " + preset
	}
	return viz.RunLive(exp, title)
}

// benchScenario runs the same scenario on every compute backend and reports
// throughput and the per-stage split.
func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("frames") {
		cfg.Frames = 50
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s: %d frames × %d substeps\n\n", cfg.Scenario, cfg.Frames, cfg.Substeps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tWORKERS\tTICKS\tELAPSED\tTICKS/S\tGRID\tDENSITY\tFORCES\tBONDS\tINTEGRATE")

	for _, name := range compute.Names() {
		c := cfg.Clone()
		c.Backend = name
		exp, err := experiment.New(c, scenario.NewRegistry(), logger)
		if err != nil {
			return err
		}
		result, err := exp.Run(context.Background(), nil)
		workersUsed := exp.Solver().Backend().Workers()
		exp.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		total := result.Stages.Total()
		share := func(d time.Duration) string {
			if total == 0 {
				return "-"
			}
			return fmt.Sprintf("%.0f%%", 100*float64(d)/float64(total))
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\t%s\t%s\t%s\t%s\t%s\n",
			name, workersUsed, result.Ticks,
			result.Elapsed.Round(time.Millisecond),
			float64(result.Ticks)/result.Elapsed.Seconds(),
			share(result.Stages.Grid), share(result.Stages.Density), share(result.Stages.Forces),
			share(result.Stages.Bonds), share(result.Stages.Integrate),
		)
	}

	return w.Flush()
}

func snapshotScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, scenario.NewRegistry(), logger)
	if err != nil {
		return err
	}
	defer exp.Close()

	ctx, cancel := signalContext()
	defer cancel()
	if _, err := exp.Run(ctx, nil); err != nil {
		return err
	}

	f, err := os.Create(snapshotOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.SceneSVG(f, exp.Solver().Store(), cfg.Bounds(), export.DefaultSVGOptions()); err != nil {
		return err
	}
	fmt.Printf("wrote %s after %d ticks\n", snapshotOut, exp.Solver().Ticks())
	return nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	axes := make([]optim.Axis, 0, len(sweepAxes))
	for _, s := range sweepAxes {
		a, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		axes = append(axes, a)
	}

	g := optim.NewGridSearch(axes, sweepMetric, sweepMaximize)
	g.SetLogger(logger.WithGroup("sweep"))

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %s: %d points × %d frames\n\n", cfg.Scenario, g.Size(), cfg.Frames)
	points, best, err := g.Search(ctx, cfg, scenario.NewRegistry())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := ""
	for _, a := range axes {
		header += strings.ToUpper(a.Name) + "\t"
	}
	fmt.Fprintln(w, header+strings.ToUpper(sweepMetric)+"\tTICKS\t")
	for i, p := range points {
		row := ""
		for _, a := range axes {
			row += fmt.Sprintf("%.4g\t", p.Params[a.Name])
		}
		value := fmt.Sprintf("%.6g", p.Value)
		if p.Err != nil {
			value = "error: " + p.Err.Error()
		}
		mark := ""
		if i == best {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%s\t%d\t%s\n", row, value, p.Ticks, mark)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}
	if best < 0 {
		return fmt.Errorf("no run produced %s", sweepMetric)
	}
	return nil
}

func ensembleScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("ensemble %s: %d trials × %d frames\n\n", cfg.Scenario, trials, cfg.Frames)
	results, err := automation.RunMonteCarlo(ctx, cfg, scenario.NewRegistry(), automation.MonteCarloConfig{
		Trials: trials,
		Seed:   baseSeed,
	}, logger.WithGroup("ensemble"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tTICKS\tBROKEN\tBONDS\tENERGY\tSTABLE")
	for _, r := range results {
		stable := "yes"
		if !r.Stable {
			stable = "no"
		}
		if r.Err != nil {
			stable = "error: " + r.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%.4g\t%s\n", r.ID, r.Seed, r.Ticks, r.Broken, r.ActiveBonds, r.Energy, stable)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}

	stats := automation.Stats(results)
	fmt.Printf("\nstable %d/%d, broken %.1f ± %.1f, energy %.4g ± %.4g\n",
		stats.Stable, len(results), stats.MeanBroken, stats.StdBroken, stats.MeanEnergy, stats.StdEnergy)
	logger.Info("ensemble complete", "stats", stats)
	return err
}

func listScenarios(cmd *cobra.Command, args []string) error {
	reg := scenario.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tPRESETS\tDESCRIPTION")
	for _, name := range reg.List() {
		presets := config.ListPresets(name)
		list := "-"
		if len(presets) > 0 {
			list = fmt.Sprint(presets)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, list, reg.Describe(name))
	}
	return w.Flush()
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if configOut != "" {
		if err := config.Save(configOut, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", configOut)
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/optim"
	"github.com/san-kum/sailsim/internal/scenario"
	"github.com/san-kum/sailsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	logJSON    bool

	preset   string
	frames   int
	substeps int
	backend  string
	workers  int
	seed     int64
	every    int
	course   float64
	script   string
	trials   int
	baseSeed int64
	noSave   bool

	plotColumns    []string
	analyzeColumns []string
	exportColumn   string
	snapshotOut    string
	configOut      string
	exportOut      string
	theme          string
	sweepAxes      []string
	sweepMetric    string
	sweepMaximize  bool
)

// main registers the commands and flags and executes the root command. With
// no subcommand it opens the interactive scenario picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "sailsim",
		Short:         "particle sailing simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := baseConfig()
			if err != nil {
				return err
			}
			// the TUI owns the terminal, so logs only go out when asked for
			return viz.RunInteractive(cfg, scenario.NewRegistry(), tuiLogger())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".sailsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and store its telemetry",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&every, "every", 0, "telemetry cadence in ticks (0 uses config)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&script, "script", "", "maneuver script (yaml) to steer the run")
	runCmd.Flags().Float64Var(&course, "course", 0, "hold this course (radians from +x) with the autopilot")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with the live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().Float64Var(&course, "course", 0, "start with the autopilot holding this course (radians from +x)")
	liveCmd.Flags().StringVar(&theme, "theme", "ocean", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "compare compute backends on a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	addRunFlags(benchCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scenario]",
		Short: "run a scenario and write the final frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScenario,
	}
	addRunFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "scene.svg", "output file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid-search run parameters against a metric",
		Long:  "Runs the scenario once per grid point. Axes are name=lo:hi:n or name=v1,v2,...\nParameters: " + strings.Join(optim.Params(), ", "),
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVarP(&sweepAxes, "axis", "a", nil, "parameter axis (repeatable)")
	sweepCmd.Flags().StringVarP(&sweepMetric, "metric", "m", "bond_integrity", "metric to rank runs by")
	sweepCmd.Flags().BoolVar(&sweepMaximize, "max", true, "maximize the metric (--max=false minimizes)")
	_ = sweepCmd.MarkFlagRequired("axis")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "rerun a scenario over random scene seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ensembleScenario,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVarP(&trials, "trials", "n", 10, "number of trials")
	ensembleCmd.Flags().Int64Var(&baseSeed, "base-seed", 0, "seed for the trial seeds (0 uses the clock)")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios and their presets",
		RunE:  listScenarios,
	}

	configCmd := &cobra.Command{
		Use:   "config [scenario]",
		Short: "print the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printConfig,
	}
	addRunFlags(configCmd)
	configCmd.Flags().StringVarP(&configOut, "out", "o", "", "write to file instead of stdout")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVarP(&plotColumns, "column", "c", []string{"kinetic_energy", "water_density_mean", "active_bonds"}, "telemetry columns to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and trend analysis of stored telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVarP(&analyzeColumns, "column", "c", []string{"kinetic_energy"}, "telemetry columns to analyze")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON, or a column as SVG with --column",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportColumn, "column", "c", "", "telemetry column to plot as SVG")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, snapshotCmd, sweepCmd, ensembleCmd, scenariosCmd, configCmd, listCmd, plotCmd, analyzeCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", "scenario preset")
	f.IntVar(&frames, "frames", 0, "frames to run")
	f.IntVar(&substeps, "substeps", 0, "ticks per frame")
	f.StringVar(&backend, "backend", "", "compute backend")
	f.IntVar(&workers, "workers", 0, "backend workers (0 uses all cores)")
	f.Int64Var(&seed, "seed", 0, "scene seed")
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}
	if logJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func tuiLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// baseConfig is the config file if one was given, otherwise the defaults.
func baseConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

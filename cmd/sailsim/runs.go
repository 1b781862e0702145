package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/sailsim/internal/analysis"
	"github.com/san-kum/sailsim/internal/export"
	"github.com/san-kum/sailsim/internal/storage"
	"github.com/san-kum/sailsim/internal/telemetry"
	"github.com/san-kum/sailsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tPRESET\tTIME\tTICKS\tPARTICLES\tBROKEN\tBACKEND\tELAPSED")

	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d/%d\t%s\t%.2fs\n",
			run.ID,
			run.Scenario,
			p,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Particles,
			run.Broken,
			run.Bonds,
			run.Backend,
			run.ElapsedSec,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []telemetry.Record, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	records, err := st.LoadTelemetry(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, records, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(records))

	for _, name := range plotColumns {
		data, err := telemetry.Column(records, name)
		if err != nil {
			return err
		}
		if len(data) < 2 {
			data = append(data, data...)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	times, _ := telemetry.Column(records, "sim_time")
	if len(times) < 2 {
		return fmt.Errorf("need at least two samples, got %d", len(times))
	}
	interval := times[1] - times[0]

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d every %.4fs\n\n", len(records), interval)

	for _, name := range analyzeColumns {
		data, err := telemetry.Column(records, name)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", name)

		trend, err := analysis.FitTrend(times, data)
		if err != nil {
			return err
		}
		fmt.Printf("  trend: %+.4g per s (r² %.3f, drift %+.1f%%)\n",
			trend.Slope, trend.R2, 100*trend.RelativeDrift(times[0], times[len(times)-1]))

		sp, err := analysis.NewWindowedSpectrum(data, interval)
		if err != nil {
			fmt.Printf("  spectrum: %v\n\n", err)
			continue
		}
		freq, _ := sp.Dominant()
		fmt.Printf("  dominant frequency: %.3f hz\n", freq)
		if period := sp.Period(); period > 0 {
			fmt.Printf("  period: %.3f s\n", period)
		}

		plot := sp.Power[1:]
		if len(plot) > 1 {
			fmt.Println(asciigraph.Plot(plot,
				asciigraph.Height(8),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum ("+name+")"),
			))
		}
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if exportColumn == "" {
		meta, err := storage.New(dataDir).Load(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	_, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	times, _ := telemetry.Column(records, "sim_time")
	data, err := telemetry.Column(records, exportColumn)
	if err != nil {
		return err
	}
	return export.SeriesSVG(out, times, data, 800, 300, string(viz.CurrentTheme.Accent))
}

package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a telemetry series.
type Summary struct {
	Samples          int     `json:"samples"`
	MeanEnergy       float64 `json:"mean_energy"`
	PeakEnergy       float64 `json:"peak_energy"`
	PeakSpeed        float64 `json:"peak_speed"`
	MeanWaterDensity float64 `json:"mean_water_density"`
	Broken           int     `json:"broken"`
	FinalBonds       int     `json:"final_bonds"`
	MeanTickMs       float64 `json:"mean_tick_ms"`
	P95TickMs        float64 `json:"p95_tick_ms"`
}

func Summarize(records []Record) Summary {
	n := len(records)
	if n == 0 {
		return Summary{}
	}

	energy := make([]float64, n)
	speed := make([]float64, n)
	density := make([]float64, n)
	tickMs := make([]float64, n)
	for i := range records {
		energy[i] = records[i].KineticEnergy
		speed[i] = records[i].MaxSpeed
		density[i] = records[i].WaterDensityMean
		tickMs[i] = records[i].TickMs
	}

	last := records[n-1]
	s := Summary{
		Samples:          n,
		MeanEnergy:       stat.Mean(energy, nil),
		PeakEnergy:       floats.Max(energy),
		PeakSpeed:        floats.Max(speed),
		MeanWaterDensity: stat.Mean(density, nil),
		Broken:           last.Broken,
		FinalBonds:       last.ActiveBonds,
		MeanTickMs:       stat.Mean(tickMs, nil),
	}
	sort.Float64s(tickMs)
	s.P95TickMs = stat.Quantile(0.95, stat.Empirical, tickMs, nil)
	return s
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", s.Samples),
		slog.Float64("mean_energy", s.MeanEnergy),
		slog.Float64("peak_energy", s.PeakEnergy),
		slog.Float64("peak_speed", s.PeakSpeed),
		slog.Float64("water_density", s.MeanWaterDensity),
		slog.Int("broken", s.Broken),
		slog.Int("bonds", s.FinalBonds),
		slog.Float64("tick_ms", s.MeanTickMs),
		slog.Float64("tick_ms_p95", s.P95TickMs),
	)
}

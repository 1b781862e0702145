// Package telemetry samples the particle store into flat records that can be
// logged, written as CSV and plotted.
package telemetry

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/metrics"
	"github.com/san-kum/sailsim/internal/sim"
)

// Record is one telemetry row. Density columns are ratios to the material's
// target density.
type Record struct {
	Tick      uint64  `csv:"tick"`
	SimTime   float64 `csv:"sim_time"`
	Particles int     `csv:"particles"`

	KineticEnergy float64 `csv:"kinetic_energy"`
	WaterEnergy   float64 `csv:"ke_water"`
	AirEnergy     float64 `csv:"ke_air"`
	SolidEnergy   float64 `csv:"ke_solid"`
	MaxSpeed      float64 `csv:"max_speed"`

	WaterDensityMean float64 `csv:"water_density_mean"`
	WaterDensityStd  float64 `csv:"water_density_std"`
	WaterDensityMax  float64 `csv:"water_density_max"`
	AirDensityMean   float64 `csv:"air_density_mean"`

	Broken      int `csv:"broken"` // cumulative since the recorder started
	ActiveBonds int `csv:"active_bonds"`

	TickMs      float64 `csv:"tick_ms"`
	GridMs      float64 `csv:"grid_ms"`
	DensityMs   float64 `csv:"density_ms"`
	ForcesMs    float64 `csv:"forces_ms"`
	BondsMs     float64 `csv:"bonds_ms"`
	IntegrateMs float64 `csv:"integrate_ms"`
}

// Sampler computes records from the store. It keeps a scratch buffer for the
// density statistics, so one Sampler must not be shared between goroutines.
type Sampler struct {
	dt         float32
	waterRest  float32
	airRest    float32
	densityBuf []float64
}

func NewSampler(tp dynamo.TickParams) *Sampler {
	return &Sampler{
		dt:        tp.Dt,
		waterRest: tp.TargetDensityWater,
		airRest:   tp.TargetDensityAir,
	}
}

func (s *Sampler) Sample(st *dynamo.Store, stats sim.TickStats) Record {
	r := Record{
		Tick:        stats.Tick,
		SimTime:     float64(stats.Tick) * float64(s.dt),
		Particles:   st.Len(),
		Broken:      stats.Broken,
		ActiveBonds: stats.ActiveBonds,
		TickMs:      ms(stats.Stages.Total()),
		GridMs:      ms(stats.Stages.Grid),
		DensityMs:   ms(stats.Stages.Density),
		ForcesMs:    ms(stats.Stages.Forces),
		BondsMs:     ms(stats.Stages.Bonds),
		IntegrateMs: ms(stats.Stages.Integrate),
	}

	r.WaterEnergy = metrics.KineticEnergyOf(st, dynamo.Water)
	r.AirEnergy = metrics.KineticEnergyOf(st, dynamo.Air)
	r.SolidEnergy = metrics.KineticEnergyOf(st, dynamo.Hull, dynamo.Sail, dynamo.Mast)
	r.KineticEnergy = r.WaterEnergy + r.AirEnergy + r.SolidEnergy

	var peak float32
	for i := range st.Particles {
		if v2 := st.Particles[i].Vel.Len2(); v2 > peak {
			peak = v2
		}
	}
	r.MaxSpeed = math.Sqrt(float64(peak))

	var water, air metrics.DensitySummary
	water, s.densityBuf = metrics.SummarizeDensity(st, dynamo.Water, s.waterRest, s.densityBuf)
	air, s.densityBuf = metrics.SummarizeDensity(st, dynamo.Air, s.airRest, s.densityBuf)
	r.WaterDensityMean = water.Mean
	r.WaterDensityStd = water.StdDev
	r.WaterDensityMax = water.Max
	r.AirDensityMean = air.Mean

	return r
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// LogValue implements slog.LogValuer.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", r.Tick),
		slog.Float64("sim_time", r.SimTime),
		slog.Float64("kinetic_energy", r.KineticEnergy),
		slog.Float64("max_speed", r.MaxSpeed),
		slog.Float64("water_density", r.WaterDensityMean),
		slog.Int("broken", r.Broken),
		slog.Int("active_bonds", r.ActiveBonds),
		slog.Float64("tick_ms", r.TickMs),
	)
}

// Columns lists the record fields that Column can extract, in CSV order.
var Columns = []string{
	"sim_time",
	"kinetic_energy", "ke_water", "ke_air", "ke_solid", "max_speed",
	"water_density_mean", "water_density_std", "water_density_max", "air_density_mean",
	"broken", "active_bonds",
	"tick_ms", "grid_ms", "density_ms", "forces_ms", "bonds_ms", "integrate_ms",
}

func (r *Record) field(name string) (float64, bool) {
	switch name {
	case "sim_time":
		return r.SimTime, true
	case "kinetic_energy":
		return r.KineticEnergy, true
	case "ke_water":
		return r.WaterEnergy, true
	case "ke_air":
		return r.AirEnergy, true
	case "ke_solid":
		return r.SolidEnergy, true
	case "max_speed":
		return r.MaxSpeed, true
	case "water_density_mean":
		return r.WaterDensityMean, true
	case "water_density_std":
		return r.WaterDensityStd, true
	case "water_density_max":
		return r.WaterDensityMax, true
	case "air_density_mean":
		return r.AirDensityMean, true
	case "broken":
		return float64(r.Broken), true
	case "active_bonds":
		return float64(r.ActiveBonds), true
	case "tick_ms":
		return r.TickMs, true
	case "grid_ms":
		return r.GridMs, true
	case "density_ms":
		return r.DensityMs, true
	case "forces_ms":
		return r.ForcesMs, true
	case "bonds_ms":
		return r.BondsMs, true
	case "integrate_ms":
		return r.IntegrateMs, true
	}
	return 0, false
}

// Column extracts one named series from the records.
func Column(records []Record, name string) ([]float64, error) {
	if _, ok := (&Record{}).field(name); !ok {
		return nil, fmt.Errorf("telemetry: unknown column %q", name)
	}
	out := make([]float64, len(records))
	for i := range records {
		out[i], _ = records[i].field(name)
	}
	return out, nil
}

package telemetry

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

func sampleStore(t *testing.T) *dynamo.Store {
	t.Helper()
	st, err := dynamo.NewStore([]dynamo.Particle{
		{Vel: dynamo.V(3, 4), Mass: 2, Density: 1.2, Layer: dynamo.LayerWater},
		{Vel: dynamo.V(1, 0), Mass: 1, Density: 0.1, Layer: dynamo.LayerAir},
		{Mass: 50, Density: 1, Layer: dynamo.LayerHull},
	}, nil, nil)
	require.NoError(t, err)
	return st
}

func TestSample(t *testing.T) {
	st := sampleStore(t)
	s := NewSampler(dynamo.DefaultTickParams())

	r := s.Sample(st, sim.TickStats{
		Tick:        200,
		Broken:      3,
		ActiveBonds: 7,
		Stages:      sim.StageTimes{Grid: time.Millisecond, Forces: 2 * time.Millisecond},
	})

	assert.Equal(t, uint64(200), r.Tick)
	assert.InDelta(t, 1.0, r.SimTime, 1e-6)
	assert.Equal(t, 3, r.Particles)
	assert.InDelta(t, 25, r.WaterEnergy, 1e-9)
	assert.InDelta(t, 0.5, r.AirEnergy, 1e-9)
	assert.Zero(t, r.SolidEnergy)
	assert.InDelta(t, 25.5, r.KineticEnergy, 1e-9)
	assert.InDelta(t, 5, r.MaxSpeed, 1e-6)
	assert.InDelta(t, 1.2, r.WaterDensityMean, 1e-6)
	assert.Zero(t, r.WaterDensityStd)
	assert.InDelta(t, 1.0, r.AirDensityMean, 1e-6)
	assert.Equal(t, 3, r.Broken)
	assert.Equal(t, 7, r.ActiveBonds)
	assert.InDelta(t, 3, r.TickMs, 1e-9)
	assert.InDelta(t, 2, r.ForcesMs, 1e-9)
}

func TestRecorderCadenceAndCSV(t *testing.T) {
	st := sampleStore(t)
	var buf bytes.Buffer

	rec := NewRecorder(2, dynamo.DefaultTickParams())
	rec.SetOutput(&buf)
	for tick := uint64(1); tick <= 5; tick++ {
		rec.OnTick(st, sim.TickStats{Tick: tick, Broken: 1, ActiveBonds: 10 - int(tick)})
	}
	require.NoError(t, rec.Err())

	records := rec.Records()
	require.Len(t, records, 2)
	assert.Equal(t, uint64(2), records[0].Tick)
	assert.Equal(t, 2, records[0].Broken, "breaks are cumulative across skipped ticks")
	assert.Equal(t, uint64(4), records[1].Tick)
	assert.Equal(t, 4, records[1].Broken)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "one header and two rows")
	assert.True(t, strings.HasPrefix(lines[0], "tick,sim_time,particles,kinetic_energy"))

	back, err := ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, records[1].Tick, back[1].Tick)
	assert.Equal(t, records[1].Broken, back[1].Broken)
	assert.Equal(t, records[1].ActiveBonds, back[1].ActiveBonds)
	assert.InDelta(t, records[1].KineticEnergy, back[1].KineticEnergy, 1e-9)

	rec.Reset()
	assert.Empty(t, rec.Records())
	rec.OnTick(st, sim.TickStats{Tick: 6, Broken: 1})
	assert.Equal(t, 1, rec.Records()[0].Broken)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRecorderKeepsFirstWriteError(t *testing.T) {
	st := sampleStore(t)
	rec := NewRecorder(1, dynamo.DefaultTickParams())
	rec.SetOutput(failingWriter{})

	rec.OnTick(st, sim.TickStats{Tick: 1})
	rec.OnTick(st, sim.TickStats{Tick: 2})

	assert.Error(t, rec.Err())
	assert.Len(t, rec.Records(), 2, "records stay in memory after a failed write")
}

func TestColumn(t *testing.T) {
	records := []Record{{KineticEnergy: 1, ActiveBonds: 4}, {KineticEnergy: 2, ActiveBonds: 3}}

	ke, err := Column(records, "kinetic_energy")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, ke)

	bonds, err := Column(records, "active_bonds")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 3}, bonds)

	for _, name := range Columns {
		_, err := Column(nil, name)
		assert.NoError(t, err, name)
	}

	_, err = Column(records, "vorticity")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	records := make([]Record, 20)
	for i := range records {
		records[i] = Record{
			KineticEnergy:    float64(i),
			MaxSpeed:         float64(20 - i),
			WaterDensityMean: 1,
			Broken:           i / 5,
			ActiveBonds:      100 - i,
			TickMs:           float64(20 - i),
		}
	}

	s := Summarize(records)
	assert.Equal(t, 20, s.Samples)
	assert.InDelta(t, 9.5, s.MeanEnergy, 1e-9)
	assert.Equal(t, 19.0, s.PeakEnergy)
	assert.Equal(t, 20.0, s.PeakSpeed)
	assert.InDelta(t, 1, s.MeanWaterDensity, 1e-9)
	assert.Equal(t, 3, s.Broken)
	assert.Equal(t, 81, s.FinalBonds)
	assert.InDelta(t, 10.5, s.MeanTickMs, 1e-9)
	assert.GreaterOrEqual(t, s.P95TickMs, 19.0)
	assert.LessOrEqual(t, s.P95TickMs, 20.0)
}

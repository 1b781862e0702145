package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectrumFindsSineFrequency(t *testing.T) {
	const (
		n        = 256
		interval = 0.01
		freq     = 5.0
	)
	series := make([]float64, n)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*interval)
	}

	sp, err := NewSpectrum(series, interval)
	require.NoError(t, err)
	assert.Len(t, sp.Freqs, n/2+1)

	f, power := sp.Dominant()
	assert.InDelta(t, freq, f, 1.0/(n*interval))
	assert.Greater(t, power, 0.0)
	assert.InDelta(t, 1/f, sp.Period(), 1e-12)
	assert.InDelta(t, 0, sp.Power[0], 1e-9, "the mean is removed")
}

func TestWindowedSpectrum(t *testing.T) {
	const (
		n        = 200
		interval = 0.05
		freq     = 1.33
	)
	series := make([]float64, n)
	for i := range series {
		series[i] = math.Cos(2 * math.Pi * freq * float64(i) * interval)
	}

	plain, err := NewSpectrum(series, interval)
	require.NoError(t, err)
	windowed, err := NewWindowedSpectrum(series, interval)
	require.NoError(t, err)

	f, _ := windowed.Dominant()
	assert.InDelta(t, freq, f, 1.0/(n*interval))

	// far from the peak the taper suppresses leakage
	far := len(plain.Power) - 1
	assert.Less(t, windowed.Power[far], plain.Power[far])
}

func TestSpectrumFlatSeries(t *testing.T) {
	sp, err := NewSpectrum([]float64{2, 2, 2, 2, 2, 2, 2, 2}, 1)
	require.NoError(t, err)

	f, power := sp.Dominant()
	assert.Zero(t, f)
	assert.Zero(t, power)
	assert.Zero(t, sp.Period())
}

func TestSpectrumErrors(t *testing.T) {
	_, err := NewSpectrum([]float64{1, 2, 3}, 1)
	assert.True(t, errors.Is(err, ErrShortSeries))

	_, err = NewSpectrum([]float64{1, 2, 3, 4}, 0)
	assert.Error(t, err)
}

func TestFitTrend(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{1, 3, 5, 7, 9}

	tr, err := FitTrend(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 1, tr.Intercept, 1e-9)
	assert.InDelta(t, 2, tr.Slope, 1e-9)
	assert.InDelta(t, 1, tr.R2, 1e-9)
	assert.InDelta(t, 8, tr.RelativeDrift(0, 4), 1e-9)

	_, err = FitTrend(xs, ys[:3])
	assert.Error(t, err)
	_, err = FitTrend(xs[:1], ys[:1])
	assert.True(t, errors.Is(err, ErrShortSeries))

	assert.Zero(t, Trend{Slope: 1}.RelativeDrift(0, 1), "zero start value")
}

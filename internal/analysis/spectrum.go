package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// Spectrum is the one-sided power spectrum of a real series with its mean
// removed. Freqs are in cycles per unit of the sample interval.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// NewSpectrum transforms series sampled every interval.
func NewSpectrum(series []float64, interval float64) (*Spectrum, error) {
	return newSpectrum(series, interval, nil)
}

// NewWindowedSpectrum tapers the centered series with a Hann window before
// the transform, which trades resolution for less leakage from a series
// that does not hold a whole number of periods.
func NewWindowedSpectrum(series []float64, interval float64) (*Spectrum, error) {
	return newSpectrum(series, interval, window.Hann)
}

func newSpectrum(series []float64, interval float64, taper func(int) []float64) (*Spectrum, error) {
	n := len(series)
	if n < 4 {
		return nil, fmt.Errorf("%w: %d samples", ErrShortSeries, n)
	}
	if !(interval > 0) {
		return nil, fmt.Errorf("analysis: sample interval must be positive, got %g", interval)
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}
	if taper != nil {
		window.Apply(centered, taper)
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	s := &Spectrum{
		Freqs: make([]float64, len(coeff)),
		Power: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freqs[i] = fft.Freq(i) / interval
		a := cmplx.Abs(c)
		s.Power[i] = a * a / float64(n)
	}
	return s, nil
}

// Dominant returns the strongest non-zero frequency and its power. A flat
// series reports zero for both.
func (s *Spectrum) Dominant() (freq, power float64) {
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			freq, power = s.Freqs[i], s.Power[i]
		}
	}
	return freq, power
}

// Period is 1/Dominant, or 0 when there is no dominant frequency.
func (s *Spectrum) Period() float64 {
	f, _ := s.Dominant()
	if f == 0 {
		return 0
	}
	return 1 / f
}

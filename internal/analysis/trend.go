package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Trend is a least-squares line y = Intercept + Slope·x.
type Trend struct {
	Intercept float64
	Slope     float64
	R2        float64
}

func FitTrend(xs, ys []float64) (Trend, error) {
	if len(xs) != len(ys) {
		return Trend{}, fmt.Errorf("analysis: %d x values for %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return Trend{}, fmt.Errorf("%w: %d samples", ErrShortSeries, len(xs))
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Trend{
		Intercept: alpha,
		Slope:     beta,
		R2:        stat.RSquared(xs, ys, nil, alpha, beta),
	}, nil
}

// RelativeDrift is the fitted change over the whole span relative to the
// fitted start value.
func (t Trend) RelativeDrift(x0, x1 float64) float64 {
	start := t.Intercept + t.Slope*x0
	if start == 0 {
		return 0
	}
	return t.Slope * (x1 - x0) / start
}

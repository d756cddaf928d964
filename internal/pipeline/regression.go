package pipeline

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"github.com/theirongolddev/runway/internal/model"
)

// ErrDegenerateFit is returned when a line cannot be fitted: fewer than two
// points or no spread in x.
var ErrDegenerateFit = errors.New("not enough distinct points to fit a line")

// Fit is a least-squares line y = Slope·x + Intercept.
type Fit struct {
	Slope     float64
	Intercept float64
	Points    int
}

// At evaluates the line at x.
func (f Fit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// FitLine fits a least-squares line through (x[i], y[i]). Extra values in
// the longer slice are ignored.
func FitLine(x, y []float64) (Fit, error) {
	n := min(len(x), len(y))
	if n < 2 {
		return Fit{}, ErrDegenerateFit
	}
	x, y = x[:n], y[:n]
	if stat.Variance(x, nil) == 0 {
		return Fit{}, ErrDegenerateFit
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	return Fit{Slope: slope, Intercept: intercept, Points: n}, nil
}

// FitSeries fits cash delta against productivity over periods that have
// both a defined delta and at least one included item.
func FitSeries(series []model.PeriodMetrics) (Fit, error) {
	var xs, ys []float64
	for _, pm := range series {
		if pm.CashDelta == nil || pm.ValidItems == 0 {
			continue
		}
		xs = append(xs, pm.Productivity)
		ys = append(ys, *pm.CashDelta)
	}
	return FitLine(xs, ys)
}

// ImpliedDelta is the cash delta the fitted line predicts for a given
// productivity.
func ImpliedDelta(f Fit, productivity float64) float64 {
	return f.At(productivity)
}

package pipeline

import (
	"math"

	"github.com/theirongolddev/runway/internal/model"
)

// Horizon is the number of periods projected forward.
const Horizon = 12

// Projection is the outcome of a runway projection.
type Projection struct {
	Mode model.ProjectionMode

	// MonthIndex is the shortfall period: the index into the supplied series
	// in detect mode, or the step k (1..Horizon) in extrapolate mode.
	// nil means no shortfall.
	MonthIndex *int

	StartBalance *float64 // last known end balance
	MeanDelta    *float64 // mean of defined adjusted deltas

	// Trajectory is StartBalance walked forward by MeanDelta, Horizon+1
	// values. nil when either figure is unknown.
	Trajectory []float64

	// RunwayMonths is StartBalance / |MeanDelta| when the trend is negative.
	RunwayMonths *float64
}

// Project determines the shortfall month for an adjusted series.
//
// Detect mode reports the first existing period with cash_end < 0 and never
// extrapolates. Extrapolate mode walks the last known balance forward by the
// mean adjusted delta and reports the first step k >= 1 with balance <= 0.
// A non-negative mean never yields a shortfall.
func Project(adjusted []model.AdjustedMetrics, mode model.ProjectionMode) (Projection, error) {
	proj := Projection{Mode: mode}
	if len(adjusted) == 0 {
		return proj, ErrNoPeriods
	}

	proj.StartBalance = lastKnownBalance(adjusted)
	proj.MeanDelta = meanDelta(adjusted)

	if proj.StartBalance != nil && proj.MeanDelta != nil {
		proj.Trajectory = trajectory(*proj.StartBalance, *proj.MeanDelta)
		if *proj.MeanDelta < 0 {
			proj.RunwayMonths = model.Float(*proj.StartBalance / math.Abs(*proj.MeanDelta))
		}
	}

	if mode == model.ProjectionDetect {
		for i, am := range adjusted {
			if am.CashEnd != nil && *am.CashEnd < 0 {
				idx := i
				proj.MonthIndex = &idx
				break
			}
		}
		return proj, nil
	}

	if proj.StartBalance == nil {
		return proj, ErrNoBalance
	}
	if proj.MeanDelta == nil || *proj.MeanDelta >= 0 {
		return proj, nil
	}

	for k := 1; k <= Horizon; k++ {
		if proj.Trajectory[k] <= 0 {
			idx := k
			proj.MonthIndex = &idx
			break
		}
	}
	return proj, nil
}

// EndBalance returns the final trajectory value, if any.
func (p Projection) EndBalance() (float64, bool) {
	if len(p.Trajectory) == 0 {
		return 0, false
	}
	return p.Trajectory[len(p.Trajectory)-1], true
}

func trajectory(start, mean float64) []float64 {
	out := make([]float64, Horizon+1)
	out[0] = start
	for k := 1; k <= Horizon; k++ {
		out[k] = out[k-1] + mean
	}
	return out
}

func lastKnownBalance(adjusted []model.AdjustedMetrics) *float64 {
	for i := len(adjusted) - 1; i >= 0; i-- {
		if adjusted[i].CashEnd != nil {
			return copyFloat(adjusted[i].CashEnd)
		}
	}
	return nil
}

func meanDelta(adjusted []model.AdjustedMetrics) *float64 {
	var sum float64
	n := 0
	for _, am := range adjusted {
		if am.AdjustedCashDelta == nil {
			continue
		}
		sum += *am.AdjustedCashDelta
		n++
	}
	if n == 0 {
		return nil
	}
	return model.Float(sum / float64(n))
}

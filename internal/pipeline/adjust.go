package pipeline

import "github.com/theirongolddev/runway/internal/model"

// Adjust applies a sensitivity scenario to every period of the series.
//
// Productivity and defined cash deltas scale by (1 + rate); the cash
// injection is spread evenly over the number of periods. Undefined deltas
// stay undefined. The input series is not modified.
func Adjust(series []model.PeriodMetrics, sc model.Scenario) []model.AdjustedMetrics {
	out := make([]model.AdjustedMetrics, len(series))
	if len(series) == 0 {
		return out
	}

	factor := 1 + sc.ImprovementRate
	perPeriod := sc.CashInjection / float64(len(series))

	for i, pm := range series {
		pm.CashStart = copyFloat(pm.CashStart)
		pm.CashEnd = copyFloat(pm.CashEnd)
		pm.CashDelta = copyFloat(pm.CashDelta)

		am := model.AdjustedMetrics{
			PeriodMetrics:        pm,
			AdjustedProductivity: pm.Productivity * factor,
		}
		if pm.CashDelta != nil {
			am.AdjustedCashDelta = model.Float(*pm.CashDelta*factor + perPeriod)
		}
		out[i] = am
	}
	return out
}

package pipeline

import (
	"github.com/theirongolddev/runway/internal/model"
)

// ScenarioOutcome is the projection and verdict for one scenario.
type ScenarioOutcome struct {
	Scenario   model.Scenario
	Projection Projection
	Verdict    model.Verdict
	Err        error
}

// CompareScenarios projects the series under each scenario in order.
// A failed projection is recorded on its outcome rather than aborting.
func CompareScenarios(series []model.PeriodMetrics, mode model.ProjectionMode, scenarios []model.Scenario) []ScenarioOutcome {
	out := make([]ScenarioOutcome, 0, len(scenarios))
	for _, sc := range scenarios {
		proj, err := Project(Adjust(series, sc), mode)
		o := ScenarioOutcome{Scenario: sc, Projection: proj, Err: err}
		if err == nil {
			o.Verdict = Classify(proj.MonthIndex)
		}
		out = append(out, o)
	}
	return out
}

// MeanProductivity returns the mean adjusted productivity over periods with
// at least one included item, or 0.
func MeanProductivity(adjusted []model.AdjustedMetrics) float64 {
	var sum float64
	n := 0
	for _, am := range adjusted {
		if am.ValidItems == 0 {
			continue
		}
		sum += am.AdjustedProductivity
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

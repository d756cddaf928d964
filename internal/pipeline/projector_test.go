package pipeline

import (
	"errors"
	"testing"

	"github.com/theirongolddev/runway/internal/model"
)

// boundarySeries builds an adjusted series of periods whose balances walk
// through the given boundaries.
func boundarySeries(t *testing.T, balances ...float64) []model.AdjustedMetrics {
	t.Helper()
	in := model.Input{Periods: model.BoundaryPeriods(nil, balances)}
	return Adjust(BuildSeries(in, model.WeightingQuantity), model.BaseScenario())
}

func TestAdjust_IdentityScenario(t *testing.T) {
	in := model.Input{Periods: []model.PeriodInput{
		{Label: "a", CashStart: model.Float(100), CashEnd: model.Float(40),
			Items: []model.Item{{Throughput: 90, LeadTime: 9, Quantity: 2}}},
		{Label: "b"},
	}}
	series := BuildSeries(in, model.WeightingQuantity)
	adj := Adjust(series, model.BaseScenario())

	for i := range series {
		if adj[i].AdjustedProductivity != series[i].Productivity {
			t.Errorf("[%d] productivity %v != %v", i, adj[i].AdjustedProductivity, series[i].Productivity)
		}
		switch {
		case series[i].CashDelta == nil:
			if adj[i].AdjustedCashDelta != nil {
				t.Errorf("[%d] adjusted delta = %v, want nil", i, *adj[i].AdjustedCashDelta)
			}
		case adj[i].AdjustedCashDelta == nil || *adj[i].AdjustedCashDelta != *series[i].CashDelta:
			t.Errorf("[%d] adjusted delta %v != %v", i, adj[i].AdjustedCashDelta, *series[i].CashDelta)
		}
	}
}

func TestAdjust_RateAndInjection(t *testing.T) {
	series := []model.PeriodMetrics{
		{Productivity: 10, CashDelta: model.Float(-50)},
		{Productivity: 20, CashDelta: model.Float(-100)},
		{Productivity: 5},
	}
	adj := Adjust(series, model.Scenario{ImprovementRate: 0.1, CashInjection: 300})

	if !approx(adj[0].AdjustedProductivity, 11) {
		t.Errorf("productivity[0] = %v, want 11", adj[0].AdjustedProductivity)
	}
	if !approx(*adj[0].AdjustedCashDelta, -55+100) {
		t.Errorf("delta[0] = %v, want 45", *adj[0].AdjustedCashDelta)
	}
	if !approx(*adj[1].AdjustedCashDelta, -110+100) {
		t.Errorf("delta[1] = %v, want -10", *adj[1].AdjustedCashDelta)
	}
	if adj[2].AdjustedCashDelta != nil {
		t.Errorf("delta[2] = %v, want nil", *adj[2].AdjustedCashDelta)
	}
	if *series[0].CashDelta != -50 {
		t.Error("Adjust modified its input")
	}
}

func TestAdjust_ExtremeRateIsAccepted(t *testing.T) {
	adj := Adjust([]model.PeriodMetrics{{Productivity: 10, CashDelta: model.Float(-20)}},
		model.Scenario{ImprovementRate: -2})
	if !approx(adj[0].AdjustedProductivity, -10) || !approx(*adj[0].AdjustedCashDelta, 20) {
		t.Errorf("got %v / %v, want -10 / 20", adj[0].AdjustedProductivity, *adj[0].AdjustedCashDelta)
	}
	if got := Adjust(nil, model.Scenario{CashInjection: 100}); len(got) != 0 {
		t.Errorf("empty series adjusted to %d rows", len(got))
	}
}

func TestProject_ExtrapolateFindsCrossing(t *testing.T) {
	proj, err := Project(boundarySeries(t, 450, 400, 350, 300), model.ProjectionExtrapolate)
	if err != nil {
		t.Fatal(err)
	}
	if proj.MonthIndex == nil || *proj.MonthIndex != 6 {
		t.Fatalf("MonthIndex = %v, want 6", proj.MonthIndex)
	}
	if len(proj.Trajectory) != Horizon+1 {
		t.Fatalf("trajectory length = %d, want %d", len(proj.Trajectory), Horizon+1)
	}
	want := []float64{300, 250, 200, 150, 100, 50, 0}
	for k, w := range want {
		if proj.Trajectory[k] != w {
			t.Errorf("balance[%d] = %v, want %v", k, proj.Trajectory[k], w)
		}
	}
	if proj.RunwayMonths == nil || !approx(*proj.RunwayMonths, 6) {
		t.Errorf("RunwayMonths = %v, want 6", proj.RunwayMonths)
	}
}

func TestProject_ZeroBalanceModesDisagree(t *testing.T) {
	adj := boundarySeries(t, 100, 50, 0)

	detect, err := Project(adj, model.ProjectionDetect)
	if err != nil {
		t.Fatal(err)
	}
	if detect.MonthIndex != nil {
		t.Errorf("detect flagged month %d for a zero balance", *detect.MonthIndex)
	}

	extra, err := Project(adj, model.ProjectionExtrapolate)
	if err != nil {
		t.Fatal(err)
	}
	if extra.MonthIndex == nil || *extra.MonthIndex != 1 {
		t.Errorf("extrapolate MonthIndex = %v, want 1", extra.MonthIndex)
	}
}

func TestProject_ExtrapolateCrossesAtExactlyZero(t *testing.T) {
	proj, err := Project(boundarySeries(t, 100, 50), model.ProjectionExtrapolate)
	if err != nil {
		t.Fatal(err)
	}
	if proj.MonthIndex == nil || *proj.MonthIndex != 1 {
		t.Errorf("MonthIndex = %v, want 1 (balance lands on 0)", proj.MonthIndex)
	}
}

func TestProject_DetectFindsFirstNegative(t *testing.T) {
	adj := boundarySeries(t, 100, 20, -5, -40)
	proj, err := Project(adj, model.ProjectionDetect)
	if err != nil {
		t.Fatal(err)
	}
	if proj.MonthIndex == nil || *proj.MonthIndex != 1 {
		t.Errorf("MonthIndex = %v, want 1", proj.MonthIndex)
	}
}

func TestProject_NonNegativeMeanNeverShort(t *testing.T) {
	adj := boundarySeries(t, -200, -150, -100)
	proj, err := Project(adj, model.ProjectionExtrapolate)
	if err != nil {
		t.Fatal(err)
	}
	if proj.MonthIndex != nil {
		t.Errorf("MonthIndex = %d, want nil for a rising balance", *proj.MonthIndex)
	}
	if proj.Trajectory == nil {
		t.Error("trajectory should still be produced")
	}
	if proj.RunwayMonths != nil {
		t.Errorf("RunwayMonths = %v, want nil", *proj.RunwayMonths)
	}

	flat := boundarySeries(t, 10, 10)
	if proj, _ := Project(flat, model.ProjectionExtrapolate); proj.MonthIndex != nil {
		t.Errorf("flat MonthIndex = %d, want nil", *proj.MonthIndex)
	}
}

func TestProject_BeyondHorizon(t *testing.T) {
	proj, err := Project(boundarySeries(t, 1010, 1000), model.ProjectionExtrapolate)
	if err != nil {
		t.Fatal(err)
	}
	if proj.MonthIndex != nil {
		t.Errorf("MonthIndex = %d, want nil", *proj.MonthIndex)
	}
}

func TestProject_CrossingAtHorizonIsSafe(t *testing.T) {
	// 130 -> 120: mean -10 from 120 reaches 0 at k=12.
	series := boundarySeries(t, 130, 120)
	proj, err := Project(series, model.ProjectionExtrapolate)
	if err != nil {
		t.Fatal(err)
	}
	if proj.MonthIndex == nil || *proj.MonthIndex != Horizon {
		t.Fatalf("MonthIndex = %v, want %d", proj.MonthIndex, Horizon)
	}

	res, err := Run(model.Input{Periods: model.BoundaryPeriods(nil, []float64{130, 120})},
		Options{Projection: model.ProjectionExtrapolate, Scenario: model.BaseScenario()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Verdict.Tier != model.TierSafe || res.Verdict.MonthIndex != nil {
		t.Errorf("verdict = %s at %v, want SAFE with no month", res.Verdict.Tier, res.Verdict.MonthIndex)
	}
}

func TestProject_Errors(t *testing.T) {
	if _, err := Project(nil, model.ProjectionExtrapolate); !errors.Is(err, ErrNoPeriods) {
		t.Errorf("empty series err = %v, want ErrNoPeriods", err)
	}

	noBalance := Adjust([]model.PeriodMetrics{{Label: "a"}}, model.BaseScenario())
	_, err := Project(noBalance, model.ProjectionExtrapolate)
	if !errors.Is(err, ErrNoBalance) {
		t.Errorf("err = %v, want ErrNoBalance", err)
	}
	var ce *ComputeError
	if !errors.As(err, &ce) || ce.Kind != KindNoBalance {
		t.Errorf("err = %#v, want *ComputeError{KindNoBalance}", err)
	}

	if _, err := Project(noBalance, model.ProjectionDetect); err != nil {
		t.Errorf("detect without balances err = %v, want nil", err)
	}
}

func TestClassify(t *testing.T) {
	idx := func(n int) *int { return &n }
	tests := []struct {
		in   *int
		want model.Tier
	}{
		{nil, model.TierSafe},
		{idx(-3), model.TierCritical},
		{idx(0), model.TierCritical},
		{idx(1), model.TierSevere},
		{idx(2), model.TierWarning},
		{idx(3), model.TierWarning},
		{idx(4), model.TierAdvisory},
		{idx(11), model.TierAdvisory},
		{idx(12), model.TierSafe},
		{idx(40), model.TierSafe},
	}
	for _, tt := range tests {
		got := Classify(tt.in)
		if got.Tier != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.in, got.Tier, tt.want)
		}
		if got.Message == "" {
			t.Errorf("Classify(%v) has no message", tt.in)
		}
		if got.Tier == model.TierSafe && got.MonthIndex != nil {
			t.Errorf("Classify(%v) is SAFE but keeps MonthIndex %d", tt.in, *got.MonthIndex)
		}
	}

	if v := Classify(idx(3)); v.Message != "Cash projected to run out within 3 months. Review TP/LT." {
		t.Errorf("WARNING message = %q", v.Message)
	}
	if v := Classify(idx(7)); v.Message != "Shortfall projected in 7 months. Plan improvements early." {
		t.Errorf("ADVISORY message = %q", v.Message)
	}
}

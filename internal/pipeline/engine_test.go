package pipeline

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/runway/internal/model"
)

func sampleInput() model.Input {
	item := model.Item{Product: "A", Throughput: 100, LeadTime: 10, Quantity: 5}
	junk := []model.Item{
		{Product: "B", Throughput: 0, LeadTime: 10, Quantity: 5},
		{Product: "C", Throughput: 80, LeadTime: 0, Quantity: 5},
		{Product: "D", Throughput: math.NaN(), LeadTime: 4, Quantity: 5},
	}
	periods := model.BoundaryPeriods([]string{"2024-01", "2024-02", "2024-03"}, []float64{450, 400, 350, 300})
	for i := range periods {
		periods[i].Items = append([]model.Item{item}, junk...)
	}
	return model.Input{Periods: periods, Balance: model.BalanceBoundary, Source: "sample"}
}

func TestRun_EndToEnd(t *testing.T) {
	res, err := Run(sampleInput(), Options{
		Weighting:  model.WeightingQuantity,
		Projection: model.ProjectionExtrapolate,
		Scenario:   model.BaseScenario(),
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, pm := range res.Series {
		if !approx(pm.Productivity, 10) {
			t.Errorf("period %d productivity = %v, want 10", i, pm.Productivity)
		}
		if pm.CashDelta == nil || *pm.CashDelta != -50 {
			t.Errorf("period %d delta = %v, want -50", i, pm.CashDelta)
		}
	}
	if res.Projection.MonthIndex == nil || *res.Projection.MonthIndex != 6 {
		t.Fatalf("MonthIndex = %v, want 6", res.Projection.MonthIndex)
	}
	if res.Verdict.Tier != model.TierAdvisory {
		t.Errorf("Tier = %s, want ADVISORY", res.Verdict.Tier)
	}
	if res.Excluded != 9 {
		t.Errorf("Excluded = %d, want 9", res.Excluded)
	}
	if res.ItemCount != 12 {
		t.Errorf("ItemCount = %d, want 12", res.ItemCount)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestRun_Deterministic(t *testing.T) {
	opts := Options{Scenario: model.Scenario{ImprovementRate: 0.2, CashInjection: 75}}
	a, err := Run(sampleInput(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(sampleInput(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for k := range a.Projection.Trajectory {
		if a.Projection.Trajectory[k] != b.Projection.Trajectory[k] {
			t.Fatalf("trajectory[%d] differs: %v vs %v", k, a.Projection.Trajectory[k], b.Projection.Trajectory[k])
		}
	}
}

func TestRun_ComputeErrors(t *testing.T) {
	_, err := Run(model.Input{}, Options{})
	if !errors.Is(err, ErrNoPeriods) {
		t.Fatalf("err = %v, want ErrNoPeriods", err)
	}
	ce, ok := IsComputeError(err)
	if !ok || ce.Kind != KindNoPeriods {
		t.Errorf("IsComputeError = %v, %v", ce, ok)
	}
	if errors.Is(err, ErrNoBalance) {
		t.Error("ErrNoPeriods matched ErrNoBalance")
	}
}

func TestCompareScenarios(t *testing.T) {
	series := BuildSeries(sampleInput(), model.WeightingQuantity)
	outcomes := CompareScenarios(series, model.ProjectionExtrapolate, []model.Scenario{
		model.BaseScenario(),
		{Name: "rescue", CashInjection: 300},
	})
	if len(outcomes) != 2 {
		t.Fatalf("len = %d, want 2", len(outcomes))
	}
	if outcomes[0].Verdict.Tier != model.TierAdvisory {
		t.Errorf("base tier = %s, want ADVISORY", outcomes[0].Verdict.Tier)
	}
	// 300 spread over 3 periods cancels the -50 deltas.
	if outcomes[1].Verdict.Tier != model.TierSafe {
		t.Errorf("rescue tier = %s, want SAFE", outcomes[1].Verdict.Tier)
	}
	if outcomes[1].Scenario.Name != "rescue" {
		t.Errorf("order not preserved: %q", outcomes[1].Scenario.Name)
	}
}

func TestFitLine(t *testing.T) {
	fit, err := FitLine([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	if err != nil {
		t.Fatal(err)
	}
	if !approx(fit.Slope, 2) || !approx(fit.Intercept, 1) {
		t.Errorf("fit = %+v, want slope 2 intercept 1", fit)
	}
	if !approx(ImpliedDelta(fit, 10), 21) {
		t.Errorf("ImpliedDelta(10) = %v, want 21", ImpliedDelta(fit, 10))
	}

	if _, err := FitLine([]float64{1}, []float64{2}); !errors.Is(err, ErrDegenerateFit) {
		t.Errorf("one point err = %v", err)
	}
	if _, err := FitLine([]float64{4, 4, 4}, []float64{1, 2, 3}); !errors.Is(err, ErrDegenerateFit) {
		t.Errorf("constant x err = %v", err)
	}
}

func TestFitLine_NoisyPointsAndUnevenLengths(t *testing.T) {
	fit, err := FitLine([]float64{1, 2, 3, 99}, []float64{1, 3, 2})
	if err != nil {
		t.Fatal(err)
	}
	if fit.Points != 3 || !approx(fit.Slope, 0.5) || !approx(fit.Intercept, 1) {
		t.Errorf("fit = %+v, want 3 points slope 0.5 intercept 1", fit)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want Stat
	}{
		{"empty", nil, Stat{}},
		{"single", []float64{7}, Stat{Mean: 7, Max: 7, Min: 7}},
		{"sample", []float64{2, 4, 4, 4, 5, 5, 7, 9}, Stat{Mean: 5, Max: 9, Min: 2, Std: math.Sqrt(32.0 / 7)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describe(tt.vals)
			if !approx(got.Mean, tt.want.Mean) || !approx(got.Std, tt.want.Std) ||
				got.Max != tt.want.Max || got.Min != tt.want.Min {
				t.Errorf("describe(%v) = %+v, want %+v", tt.vals, got, tt.want)
			}
		})
	}
}

func TestFitSeries_SkipsUndefined(t *testing.T) {
	series := []model.PeriodMetrics{
		{Productivity: 1, ValidItems: 1, CashDelta: model.Float(10)},
		{Productivity: 2, ValidItems: 1},
		{Productivity: 3, ValidItems: 0, CashDelta: model.Float(999)},
		{Productivity: 4, ValidItems: 1, CashDelta: model.Float(40)},
	}
	fit, err := FitSeries(series)
	if err != nil {
		t.Fatal(err)
	}
	if fit.Points != 2 || !approx(fit.Slope, 10) || !approx(fit.Intercept, 0) {
		t.Errorf("fit = %+v, want 2 points slope 10 intercept 0", fit)
	}
}

func TestProductStatistics(t *testing.T) {
	in := model.Input{Periods: []model.PeriodInput{
		{Label: "2024-01", Items: []model.Item{
			{Product: "A", Throughput: 100, LeadTime: 10, Quantity: 1},
			{Product: "B", Throughput: 40, LeadTime: 8, Quantity: 2},
		}},
		{Label: "2024-02", Items: []model.Item{
			{Product: "A", Throughput: 60, LeadTime: 4, Quantity: 3},
			{Product: "B", Throughput: 0, LeadTime: 8, Quantity: 2},
		}},
	}}

	stats := ProductStatistics(in, model.WeightingQuantity)
	if len(stats) != 2 {
		t.Fatalf("len = %d, want 2", len(stats))
	}
	a := stats[0]
	if a.Product != "A" || a.Count != 2 || a.Quantity != 4 {
		t.Fatalf("first = %+v, want product A with 2 rows and qty 4", a)
	}
	if !approx(a.Productivity.Mean, 12.5) || a.Productivity.Max != 15 || a.Productivity.Min != 10 {
		t.Errorf("A productivity = %+v", a.Productivity)
	}
	if !approx(a.Productivity.Std, math.Sqrt(12.5)) {
		t.Errorf("A productivity std = %v, want %v", a.Productivity.Std, math.Sqrt(12.5))
	}
	if stats[1].Throughput.Std != 0 {
		t.Errorf("single-row std = %v, want 0", stats[1].Throughput.Std)
	}

	trends := ProductTrends(in, model.WeightingQuantity)
	if len(trends) != 2 || trends[0].Product != "A" {
		t.Fatalf("trends = %+v", trends)
	}
	if len(trends[0].Points) != 2 || trends[0].Points[1].Label != "2024-02" || trends[0].Points[1].Productivity != 15 {
		t.Errorf("A trend = %+v", trends[0].Points)
	}
	if len(trends[1].Points) != 1 {
		t.Errorf("B trend has %d points, want 1 (second month excluded)", len(trends[1].Points))
	}
}

func TestLoad_CatalogsDataDir(t *testing.T) {
	dir := t.TempDir()
	good := "period,product,throughput,lead_time,quantity,cash_end\n2024-01,A,100,10,5,300\n"
	if err := os.WriteFile(filepath.Join(dir, "good.csv"), []byte(good), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("foo,bar\n1,2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	res, err := Load(dir, func(_, _ int) { calls.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 2 || res.ParsedFiles != 1 || res.FileErrors != 1 {
		t.Errorf("totals = %d/%d/%d, want 2/1/1", res.TotalFiles, res.ParsedFiles, res.FileErrors)
	}
	if calls.Load() != 2 {
		t.Errorf("progress called %d times, want 2", calls.Load())
	}
	for _, e := range res.Entries {
		if e.File.Name == "good.csv" && e.Periods() != 1 {
			t.Errorf("good.csv periods = %d, want 1", e.Periods())
		}
	}

	empty, err := Load(filepath.Join(dir, "missing"), nil)
	if err != nil || empty.TotalFiles != 0 {
		t.Errorf("missing dir = %+v, %v", empty, err)
	}
}

package pipeline

import (
	"fmt"
	"testing"

	"github.com/theirongolddev/runway/internal/model"
)

func syntheticInput(periods, itemsPerPeriod int) model.Input {
	in := model.Input{Balance: model.BalanceRunning, KeyedByDate: true}
	cash := 10_000.0
	for p := 0; p < periods; p++ {
		pi := model.PeriodInput{
			Label:   fmt.Sprintf("%d-%02d", 2020+p/12, p%12+1),
			CashEnd: model.Float(cash),
		}
		for i := 0; i < itemsPerPeriod; i++ {
			pi.Items = append(pi.Items, model.Item{
				Product:    fmt.Sprintf("P%03d", i%50),
				Throughput: float64(50 + i%40),
				LeadTime:   float64(1 + i%14),
				Quantity:   i % 7,
			})
		}
		in.Periods = append(in.Periods, pi)
		cash -= 120
	}
	return in
}

func BenchmarkRun(b *testing.B) {
	in := syntheticInput(36, 500)
	opts := Options{Scenario: model.Scenario{ImprovementRate: 0.1}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(in, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProductStatistics(b *testing.B) {
	in := syntheticInput(36, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ProductStatistics(in, model.WeightingShipped)
	}
}

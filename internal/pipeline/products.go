package pipeline

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/theirongolddev/runway/internal/model"
)

// Stat summarizes one numeric column.
type Stat struct {
	Mean float64
	Max  float64
	Min  float64
	Std  float64 // sample standard deviation; 0 with fewer than two values
}

// ProductStats summarizes the included items of one product.
type ProductStats struct {
	Product      string
	Count        int
	Quantity     int
	Throughput   Stat
	Productivity Stat
}

// ProductStatistics groups included items by product across all periods,
// sorted by mean productivity descending.
func ProductStatistics(in model.Input, mode model.WeightingMode) []ProductStats {
	tps := make(map[string][]float64)
	prods := make(map[string][]float64)
	qty := make(map[string]int)

	for _, p := range in.Periods {
		for _, it := range p.Items {
			if !Included(it, mode) {
				continue
			}
			name := productName(it)
			tps[name] = append(tps[name], it.Throughput)
			prods[name] = append(prods[name], it.Productivity())
			qty[name] += it.Quantity
		}
	}

	out := make([]ProductStats, 0, len(tps))
	for name, tp := range tps {
		out = append(out, ProductStats{
			Product:      name,
			Count:        len(tp),
			Quantity:     qty[name],
			Throughput:   describe(tp),
			Productivity: describe(prods[name]),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Productivity.Mean != out[j].Productivity.Mean {
			return out[i].Productivity.Mean > out[j].Productivity.Mean
		}
		return out[i].Product < out[j].Product
	})
	return out
}

// ProductTrend is one product's weighted TP/LT per period label.
type ProductTrend struct {
	Product string
	Points  []TrendPoint
}

// TrendPoint is one period's value in a product trend.
type TrendPoint struct {
	Label        string
	Productivity float64
}

// ProductTrends aggregates each product's items per period under mode,
// following the series order. Periods where the product has no included
// item are omitted from its trend.
func ProductTrends(in model.Input, mode model.WeightingMode) []ProductTrend {
	periods := in.Periods
	if in.KeyedByDate {
		periods = SortPeriods(periods)
	}

	byProduct := make(map[string]*ProductTrend)
	var order []string

	for _, p := range periods {
		grouped := make(map[string][]model.Item)
		var names []string
		for _, it := range p.Items {
			name := productName(it)
			if _, ok := grouped[name]; !ok {
				names = append(names, name)
			}
			grouped[name] = append(grouped[name], it)
		}

		for _, name := range names {
			agg := AggregateItems(grouped[name], mode)
			if agg.Valid == 0 {
				continue
			}
			tr, ok := byProduct[name]
			if !ok {
				tr = &ProductTrend{Product: name}
				byProduct[name] = tr
				order = append(order, name)
			}
			tr.Points = append(tr.Points, TrendPoint{Label: p.Label, Productivity: agg.Productivity})
		}
	}

	sort.Strings(order)
	out := make([]ProductTrend, 0, len(order))
	for _, name := range order {
		out = append(out, *byProduct[name])
	}
	return out
}

func productName(it model.Item) string {
	if it.Product == "" {
		return "(unnamed)"
	}
	return it.Product
}

func describe(vals []float64) Stat {
	if len(vals) == 0 {
		return Stat{}
	}
	s := Stat{Max: floats.Max(vals), Min: floats.Min(vals)}
	if len(vals) == 1 {
		s.Mean = vals[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	return s
}

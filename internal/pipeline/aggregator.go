// Package pipeline turns period inputs into productivity metrics, cash
// projections, and shortfall verdicts.
package pipeline

import (
	"github.com/theirongolddev/runway/internal/model"
)

// Aggregate holds the weighted figures for one period's items.
type Aggregate struct {
	Valid    int
	Excluded int

	TotalThroughput   float64 // Σ tp over included items
	ShippedThroughput float64 // Σ tp·qty
	WeightedLeadTime  float64 // Σ lt·qty
	Productivity      float64
}

// Included reports whether an item takes part in aggregation under mode.
// Items with non-positive or missing throughput or lead time are dropped.
// Quantity is only checked by modes that weight by it.
func Included(it model.Item, mode model.WeightingMode) bool {
	if model.IsMissing(it.Throughput) || model.IsMissing(it.LeadTime) {
		return false
	}
	if it.Throughput <= 0 || it.LeadTime <= 0 {
		return false
	}
	if mode.UsesQuantity() && it.Quantity <= 0 {
		return false
	}
	return true
}

// AggregateItems filters items and combines their TP/LT under the given mode.
// A period with no included items has productivity 0.
func AggregateItems(items []model.Item, mode model.WeightingMode) Aggregate {
	var agg Aggregate
	var sumQty, sumWeighted, sumTPSquaredPerLT float64

	for _, it := range items {
		if !Included(it, mode) {
			agg.Excluded++
			continue
		}
		agg.Valid++

		q := float64(it.Quantity)
		p := it.Productivity()

		agg.TotalThroughput += it.Throughput
		agg.ShippedThroughput += it.Throughput * q
		agg.WeightedLeadTime += it.LeadTime * q

		sumQty += q
		sumWeighted += p * q
		sumTPSquaredPerLT += it.Throughput * it.Throughput / it.LeadTime
	}

	switch mode {
	case model.WeightingThroughput:
		if agg.TotalThroughput != 0 {
			agg.Productivity = sumTPSquaredPerLT / agg.TotalThroughput
		}
	case model.WeightingShipped:
		if agg.WeightedLeadTime != 0 {
			agg.Productivity = agg.ShippedThroughput / agg.WeightedLeadTime
		}
	default:
		if sumQty != 0 {
			agg.Productivity = sumWeighted / sumQty
		}
	}

	return agg
}

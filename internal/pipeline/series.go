package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

// labelLayouts are the period label formats recognized for chronological sorting.
var labelLayouts = []string{"2006-01", "2006-01-02", "2006/01", "2006/1", "2006/01/02", "200601"}

// ParseLabel interprets a period label as a date. ok is false when no known
// layout matches.
func ParseLabel(label string) (time.Time, bool) {
	s := strings.TrimSpace(label)
	for _, layout := range labelLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortPeriods returns a copy of periods ordered chronologically by label.
// Dated labels come first; the rest follow in lexical order.
func SortPeriods(periods []model.PeriodInput) []model.PeriodInput {
	out := make([]model.PeriodInput, len(periods))
	copy(out, periods)

	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := ParseLabel(out[i].Label)
		tj, jok := ParseLabel(out[j].Label)
		switch {
		case iok && jok:
			return ti.Before(tj)
		case iok != jok:
			return iok
		default:
			return out[i].Label < out[j].Label
		}
	})
	return out
}

// BuildSeries aggregates each period and derives its cash delta.
//
// Boundary inputs use cash_end - cash_start per period. Running inputs use
// the difference from the latest earlier known cash_end, and the first
// period's delta is undefined.
func BuildSeries(in model.Input, mode model.WeightingMode) []model.PeriodMetrics {
	periods := in.Periods
	if in.KeyedByDate {
		periods = SortPeriods(periods)
	}

	series := make([]model.PeriodMetrics, 0, len(periods))
	var prevEnd *float64

	for _, p := range periods {
		agg := AggregateItems(p.Items, mode)
		pm := model.PeriodMetrics{
			Label:             p.Label,
			ValidItems:        agg.Valid,
			ExcludedItems:     agg.Excluded,
			TotalThroughput:   agg.TotalThroughput,
			ShippedThroughput: agg.ShippedThroughput,
			WeightedLeadTime:  agg.WeightedLeadTime,
			Productivity:      agg.Productivity,
			CashStart:         knownBalance(p.CashStart),
			CashEnd:           knownBalance(p.CashEnd),
		}

		switch in.Balance {
		case model.BalanceRunning:
			if pm.CashEnd != nil && prevEnd != nil {
				pm.CashDelta = model.Float(*pm.CashEnd - *prevEnd)
			}
			if pm.CashEnd != nil {
				prevEnd = pm.CashEnd
			}
		default:
			if pm.CashStart != nil && pm.CashEnd != nil {
				pm.CashDelta = model.Float(*pm.CashEnd - *pm.CashStart)
			}
		}

		series = append(series, pm)
	}

	return series
}

// knownBalance copies a balance, treating NaN and infinities as unknown.
func knownBalance(p *float64) *float64 {
	if p == nil || model.IsMissing(*p) {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

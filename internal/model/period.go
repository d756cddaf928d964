// Package model defines domain types for runway inputs, metrics, and verdicts.
package model

import (
	"math"
	"strconv"
	"strings"
)

// Item is one product or shipment line within a period.
// Missing numeric values are NaN (Throughput, LeadTime) or 0 (Quantity).
type Item struct {
	Product    string
	Throughput float64
	LeadTime   float64 // days
	Quantity   int
}

// Productivity returns throughput per day of lead time.
// Callers must only use it on items that passed the aggregation filter.
func (it Item) Productivity() float64 {
	return it.Throughput / it.LeadTime
}

// Missing is the marker used for numeric fields that could not be parsed.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is NaN or infinite.
func IsMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// PeriodInput is one reporting interval as supplied by a form or a file.
type PeriodInput struct {
	Label     string
	CashStart *float64
	CashEnd   *float64
	Items     []Item
}

// BalanceMode says how a period's cash delta is derived.
type BalanceMode int

const (
	// BalanceBoundary derives the delta from each period's own start/end pair.
	BalanceBoundary BalanceMode = iota
	// BalanceRunning derives the delta from consecutive end-of-period balances.
	BalanceRunning
)

func (m BalanceMode) String() string {
	if m == BalanceRunning {
		return "running"
	}
	return "boundary"
}

// Input is one batch of periods submitted for a computation pass.
// It is never mutated after construction.
type Input struct {
	Periods     []PeriodInput
	Balance     BalanceMode
	KeyedByDate bool   // sort chronologically by label before building the series
	Source      string // display name of where the batch came from
}

// ItemCount returns the number of item records across all periods.
func (in Input) ItemCount() int {
	n := 0
	for _, p := range in.Periods {
		n += len(p.Items)
	}
	return n
}

// PeriodMetrics is one row of the derived period series.
type PeriodMetrics struct {
	Label         string
	ValidItems    int
	ExcludedItems int

	TotalThroughput   float64 // Σ tp
	ShippedThroughput float64 // Σ tp·qty
	WeightedLeadTime  float64 // Σ lt·qty
	Productivity      float64 // weighted TP/LT

	CashStart *float64
	CashEnd   *float64
	CashDelta *float64 // nil when undefined (first period of a running series)
}

// AdjustedMetrics is a period row after a sensitivity scenario was applied.
type AdjustedMetrics struct {
	PeriodMetrics
	AdjustedProductivity float64
	AdjustedCashDelta    *float64
}

// Float returns a pointer to v. Convenient for optional balance fields.
func Float(v float64) *float64 { return &v }

// BoundaryPeriods turns n+1 boundary balances into n periods whose start and
// end are consecutive balances. Missing labels default to "Month N".
func BoundaryPeriods(labels []string, balances []float64) []PeriodInput {
	if len(balances) < 2 {
		return nil
	}
	n := len(balances) - 1
	periods := make([]PeriodInput, n)
	for i := 0; i < n; i++ {
		label := DefaultLabel(i)
		if i < len(labels) && strings.TrimSpace(labels[i]) != "" {
			label = labels[i]
		}
		periods[i] = PeriodInput{
			Label:     label,
			CashStart: Float(balances[i]),
			CashEnd:   Float(balances[i+1]),
		}
	}
	return periods
}

// DefaultLabel is the label for the i-th (0-based) period when none is given.
func DefaultLabel(i int) string {
	return "Month " + strconv.Itoa(i+1)
}

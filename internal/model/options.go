package model

import (
	"fmt"
	"strings"
)

// WeightingMode selects how item productivities are combined into one
// figure per period.
type WeightingMode int

const (
	// WeightingQuantity weights each item's TP/LT by shipped quantity.
	WeightingQuantity WeightingMode = iota
	// WeightingThroughput weights each item's TP/LT by its throughput
	// (Σ tp²/lt ÷ Σ tp). Quantity is not consulted.
	WeightingThroughput
	// WeightingShipped divides shipped throughput by shipped lead time
	// (Σ tp·qty ÷ Σ lt·qty).
	WeightingShipped
)

// WeightingModes lists all modes in display order.
var WeightingModes = []WeightingMode{WeightingQuantity, WeightingThroughput, WeightingShipped}

func (m WeightingMode) String() string {
	switch m {
	case WeightingThroughput:
		return "throughput"
	case WeightingShipped:
		return "shipped"
	default:
		return "quantity"
	}
}

// Description is a one-line explanation for help text and settings.
func (m WeightingMode) Description() string {
	switch m {
	case WeightingThroughput:
		return "Σ(TP²/LT) ÷ ΣTP, no quantity needed"
	case WeightingShipped:
		return "Σ(TP×qty) ÷ Σ(LT×qty)"
	default:
		return "Σ(TP/LT×qty) ÷ Σqty"
	}
}

// UsesQuantity reports whether the mode needs a positive shipped quantity.
func (m WeightingMode) UsesQuantity() bool {
	return m != WeightingThroughput
}

// ParseWeightingMode accepts the String() names plus a few aliases.
func ParseWeightingMode(s string) (WeightingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quantity", "qty", "a":
		return WeightingQuantity, nil
	case "throughput", "tp", "b":
		return WeightingThroughput, nil
	case "shipped", "ratio", "c":
		return WeightingShipped, nil
	}
	return WeightingQuantity, fmt.Errorf("unknown weighting mode %q (want quantity, throughput or shipped)", s)
}

// ProjectionMode selects how the shortage month is determined.
type ProjectionMode int

const (
	// ProjectionExtrapolate walks the last balance forward by the mean delta.
	ProjectionExtrapolate ProjectionMode = iota
	// ProjectionDetect only inspects the supplied end-of-period balances.
	ProjectionDetect
)

// ProjectionModes lists all modes in display order.
var ProjectionModes = []ProjectionMode{ProjectionExtrapolate, ProjectionDetect}

func (m ProjectionMode) String() string {
	if m == ProjectionDetect {
		return "detect"
	}
	return "extrapolate"
}

// Description is a one-line explanation for help text and settings.
func (m ProjectionMode) Description() string {
	if m == ProjectionDetect {
		return "first supplied month with a negative end balance"
	}
	return "last balance + mean delta for 12 months"
}

// ParseProjectionMode accepts the String() names plus a few aliases.
func ParseProjectionMode(s string) (ProjectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "extrapolate", "forward", "forecast":
		return ProjectionExtrapolate, nil
	case "detect", "existing", "trajectory":
		return ProjectionDetect, nil
	}
	return ProjectionExtrapolate, fmt.Errorf("unknown projection mode %q (want extrapolate or detect)", s)
}

// Scenario is a hypothetical adjustment applied uniformly to a series.
type Scenario struct {
	Name            string
	ImprovementRate float64 // fraction: 0.1 is +10 %
	CashInjection   float64 // lump sum, amortized evenly over the series
}

// BaseScenario is the identity scenario used when nothing is selected.
func BaseScenario() Scenario {
	return Scenario{Name: "base"}
}

// IsBase reports whether the scenario changes nothing.
func (s Scenario) IsBase() bool {
	return s.ImprovementRate == 0 && s.CashInjection == 0
}

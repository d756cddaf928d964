// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/model"
)

// Placeholder is shown for undefined values.
const Placeholder = "n/a"

// FormatAmount formats a currency amount with two decimals and digit
// grouping, rounding half away from zero.
// e.g., 1234567.891 -> "1,234,567.89", -0.005 -> "-0.01"
func FormatAmount(v float64) string {
	if model.IsMissing(v) {
		return Placeholder
	}

	s := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}
	out := humanize.Comma(n) + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatOptional formats an optional amount, or the placeholder when nil.
func FormatOptional(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatAmount(*v)
}

// FormatSigned formats an amount with an explicit sign.
func FormatSigned(v *float64) string {
	if v == nil {
		return Placeholder
	}
	s := FormatAmount(*v)
	if *v > 0 && s != "0.00" {
		return "+" + s
	}
	return s
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatProductivity formats a TP/LT figure.
func FormatProductivity(v float64) string {
	if model.IsMissing(v) {
		return Placeholder
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRate formats an improvement rate with a sign, e.g. 0.1 -> "+10%".
func FormatRate(rate float64) string {
	pct := rate * 100
	if pct == math.Trunc(pct) {
		return fmt.Sprintf("%+.0f%%", pct)
	}
	return fmt.Sprintf("%+.1f%%", pct)
}

// FormatMonths formats a runway estimate.
func FormatMonths(v *float64) string {
	if v == nil {
		return "no shortfall trend"
	}
	if *v <= 0 {
		return "exhausted"
	}
	return fmt.Sprintf("about %.1f months", *v)
}

// FormatMonthIndex describes a shortfall month relative to now.
func FormatMonthIndex(idx *int) string {
	switch {
	case idx == nil:
		return "none in horizon"
	case *idx <= 0:
		return "this month"
	case *idx == 1:
		return "in 1 month"
	default:
		return fmt.Sprintf("in %d months", *idx)
	}
}

// FormatScenario summarizes a scenario for titles and table cells.
func FormatScenario(sc model.Scenario) string {
	if sc.IsBase() {
		return "base"
	}
	parts := []string{}
	if sc.ImprovementRate != 0 {
		parts = append(parts, FormatRate(sc.ImprovementRate)+" TP/LT")
	}
	if sc.CashInjection != 0 {
		parts = append(parts, "inject "+FormatAmount(sc.CashInjection))
	}
	return strings.Join(parts, ", ")
}

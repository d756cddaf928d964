package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/tui/theme"
)

// ProgressBar renders a file-loading progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = max(0, min(pct, 1))

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	bar := progress.New(
		progress.WithSolidFill(string(barColor)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// RunwayBar renders how much of the projection horizon the cash lasts.
// months is nil when no shortfall is projected.
func RunwayBar(months *float64, horizon, width int) string {
	t := theme.Active

	pct := 1.0
	if months != nil && horizon > 0 {
		pct = max(0, min(*months/float64(horizon), 1))
	}

	color := t.Green
	switch {
	case pct < 0.25:
		color = t.Red
	case pct < 0.5:
		color = t.Orange
	case pct < 1:
		color = t.Yellow
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)
	return bar.ViewAs(pct)
}

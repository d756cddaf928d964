package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/tui/theme"
)

// Sparkline renders a unicode sparkline scaled between the series minimum
// and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(blocks) / 2
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = max(0, min(idx, len(blocks)-1))
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// SignedBarChart renders one bar per value around a zero baseline: positive
// values rise in green, negative values hang below it in red.
func SignedBarChart(values []float64, labels []string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, theme.Active.Accent)
	}

	t := theme.Active

	hi, lo := 0.0, 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	step := chartTickStep(math.Max(hi, -lo))
	hi = math.Ceil(hi/step) * step
	lo = math.Floor(lo/step) * step
	if hi == lo {
		hi = lo + step
	}
	band := (hi - lo) / float64(height)
	eps := band * 1e-9

	yLabelW := max(len(formatChartLabel(hi)), len(formatChartLabel(lo)), 4) + 1
	chartW := max(width-yLabelW-1, 5)

	n := len(values)
	gap := 1
	if n <= 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	barW = max(1, min(barW, 6))
	axisLen := n*barW + max(0, n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	posStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	zeroRow := -1
	var b strings.Builder
	for row := 0; row < height; row++ {
		top := hi - float64(row)*band
		bottom := top - band
		mid := (top + bottom) / 2

		label := ""
		switch {
		case row == 0:
			label = formatChartLabel(hi)
		case row == height-1:
			label = formatChartLabel(lo)
		}
		if zeroRow < 0 && bottom <= eps && top > -eps {
			zeroRow = row
			label = "0"
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(spaceStyle.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v > 0 && mid > 0 && mid <= v:
				b.WriteString(posStyle.Render(strings.Repeat("█", barW)))
			case v < 0 && mid < 0 && mid >= v:
				b.WriteString(negStyle.Render(strings.Repeat("█", barW)))
			case row == zeroRow:
				b.WriteString(axisStyle.Render(strings.Repeat("┄", barW)))
			default:
				b.WriteString(spaceStyle.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW)))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if len(labels) == n {
		buf := []rune(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i, lbl := range labels {
			pos := i * (barW + gap)
			r := []rune(lbl)
			if pos <= lastEnd || pos+len(r) > axisLen {
				continue
			}
			copy(buf[pos:], r)
			lastEnd = pos + len(r)
		}
		b.WriteString("\n")
		b.WriteString(spaceStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(buf), " ")))
	}

	return b.String()
}

// Scatter plots (xs[i], ys[i]) on a character grid. When trend is non-nil
// its line is drawn under the points.
func Scatter(xs, ys []float64, trend func(float64) float64, width, height int) string {
	n := min(len(xs), len(ys))
	if n == 0 {
		return ""
	}
	t := theme.Active

	xlo, xhi := xs[0], xs[0]
	ylo, yhi := ys[0], ys[0]
	for i := 1; i < n; i++ {
		xlo, xhi = math.Min(xlo, xs[i]), math.Max(xhi, xs[i])
		ylo, yhi = math.Min(ylo, ys[i]), math.Max(yhi, ys[i])
	}
	if trend != nil {
		for _, x := range []float64{xlo, xhi} {
			ylo, yhi = math.Min(ylo, trend(x)), math.Max(yhi, trend(x))
		}
	}
	if xhi == xlo {
		xlo, xhi = xlo-1, xhi+1
	}
	if yhi == ylo {
		ylo, yhi = ylo-1, yhi+1
	}

	yLabelW := max(len(formatChartLabel(yhi)), len(formatChartLabel(ylo)), 4) + 1
	plotW := max(width-yLabelW-1, 5)
	plotH := max(height, 3)

	col := func(x float64) int {
		return int(math.Round((x - xlo) / (xhi - xlo) * float64(plotW-1)))
	}
	row := func(y float64) int {
		return int(math.Round((yhi - y) / (yhi - ylo) * float64(plotH-1)))
	}

	grid := make([][]rune, plotH)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", plotW))
	}
	if trend != nil {
		for c := 0; c < plotW; c++ {
			x := xlo + float64(c)/float64(plotW-1)*(xhi-xlo)
			if r := row(trend(x)); r >= 0 && r < plotH {
				grid[r][c] = '·'
			}
		}
	}
	for i := 0; i < n; i++ {
		r, c := row(ys[i]), col(xs[i])
		if r < 0 || r >= plotH || c < 0 || c >= plotW {
			continue
		}
		grid[r][c] = '●'
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pointStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	lineStyle := lipgloss.NewStyle().Foreground(t.Blue).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for r, cells := range grid {
		label := ""
		switch r {
		case 0:
			label = formatChartLabel(yhi)
		case plotH - 1:
			label = formatChartLabel(ylo)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))
		for _, c := range cells {
			switch c {
			case '●':
				b.WriteString(pointStyle.Render(string(c)))
			case '·':
				b.WriteString(lineStyle.Render(string(c)))
			default:
				b.WriteString(spaceStyle.Render(" "))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW)))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", plotW)))
	b.WriteString("\n")

	left, right := formatChartLabel(xlo), formatChartLabel(xhi)
	fill := max(plotW-len(left)-len(right), 1)
	b.WriteString(spaceStyle.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(axisStyle.Render(left + strings.Repeat(" ", fill) + right))

	return b.String()
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	switch {
	case v >= 1e9:
		return trimUnit(v/1e9, "B")
	case v >= 1e6:
		return trimUnit(v/1e6, "M")
	case v >= 1e3:
		return trimUnit(v/1e3, "k")
	case v >= 1 || v == 0:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimUnit(v float64, unit string) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%s", v, unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) renderItemsTab(cw int) string {
	t := theme.Active

	if len(a.products) == 0 {
		return components.ContentCard("Items",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
				Render("No item passed the "+a.opts.Weighting.String()+" filter"), cw)
	}

	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	trends := make(map[string]pipeline.ProductTrend, len(a.trends))
	for _, tr := range a.trends {
		trends[tr.Product] = tr
	}

	// Fixed columns after the name: Items Qty Mean Min Max Std, then the trend.
	const statsW = 6 + 8 + 10 + 10 + 10 + 10
	nameW := 18
	trendW := max(innerW-nameW-statsW-2, 0)
	if trendW > 24 {
		nameW += min(trendW-24, 12)
		trendW = innerW - nameW - statsW - 2
	}

	var b strings.Builder
	header := fmt.Sprintf("%-*s%6s%8s%10s%10s%10s%10s", nameW, "Product",
		"Items", "Qty", "Mean", "Min", "Max", "Std")
	if trendW >= 4 {
		header += "  Trend"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, ps := range a.products {
		p := ps.Productivity
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(ps.Product, nameW-1))))
		b.WriteString(rowStyle.Render(fmt.Sprintf("%6d%8s%10s%10s%10s%10s",
			ps.Count,
			cli.FormatNumber(int64(ps.Quantity)),
			cli.FormatProductivity(p.Mean),
			cli.FormatProductivity(p.Min),
			cli.FormatProductivity(p.Max),
			cli.FormatProductivity(p.Std),
		)))

		if trendW >= 4 {
			if tr, ok := trends[ps.Product]; ok && len(tr.Points) > 0 {
				vals := make([]float64, 0, len(tr.Points))
				for _, pt := range tr.Points {
					vals = append(vals, pt.Productivity)
				}
				if len(vals) > trendW {
					vals = vals[len(vals)-trendW:]
				}
				b.WriteString(spaceStyle.Render("  "))
				b.WriteString(components.Sparkline(vals, t.Accent))
			}
		}
		b.WriteString("\n")
	}

	title := fmt.Sprintf("Items · %d products · TP/LT per item (%s)", len(a.products), a.opts.Weighting)
	return components.ContentCard(title, strings.TrimSuffix(b.String(), "\n"), cw)
}

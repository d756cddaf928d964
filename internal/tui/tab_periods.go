package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

var periodColumns = []table.Column{
	{Title: "Period", Width: 12},
	{Title: "Valid", Width: 5},
	{Title: "Excl", Width: 4},
	{Title: "TP", Width: 12},
	{Title: "LT", Width: 10},
	{Title: "TP/LT", Width: 9},
	{Title: "Adj TP/LT", Width: 9},
	{Title: "Cash end", Width: 14},
	{Title: "Delta", Width: 13},
	{Title: "Adj delta", Width: 13},
}

func newPeriodTable() table.Model {
	return table.New(
		table.WithColumns(periodColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
}

// periodRows renders the adjusted series as table rows, in series order.
func periodRows(adjusted []model.AdjustedMetrics) []table.Row {
	rows := make([]table.Row, 0, len(adjusted))
	for _, am := range adjusted {
		rows = append(rows, table.Row{
			periodName(am.PeriodMetrics),
			strconv.Itoa(am.ValidItems),
			strconv.Itoa(am.ExcludedItems),
			cli.FormatAmount(am.ShippedThroughput),
			cli.FormatAmount(am.WeightedLeadTime),
			cli.FormatProductivity(am.Productivity),
			cli.FormatProductivity(am.AdjustedProductivity),
			cli.FormatOptional(am.CashEnd),
			cli.FormatSigned(am.CashDelta),
			cli.FormatSigned(am.AdjustedCashDelta),
		})
	}
	return rows
}

func (a App) renderPeriodsTab(cw, h int) string {
	t := theme.Active

	if len(a.adjusted) == 0 {
		return components.ContentCard("Periods",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No periods in this input"), cw)
	}

	detailH := 9
	tableH := max(h-detailH-3, 3)

	inner := components.CardInnerWidth(cw)
	tbl := a.periods
	tbl.SetColumns(fitPeriodColumns(inner))
	tbl.SetWidth(inner)
	tbl.SetHeight(tableH)
	tbl.SetStyles(periodTableStyles())

	title := fmt.Sprintf("Periods · %d rows · %s weighting", len(a.adjusted), a.opts.Weighting)
	out := components.ContentCard(title, tbl.View(), cw)

	cursor := tbl.Cursor()
	if cursor >= 0 && cursor < len(a.adjusted) {
		out += "\n" + a.periodDetail(a.adjusted[cursor], cw)
	}
	return out
}

// periodDropOrder lists the columns hidden first when the table is too wide.
var periodDropOrder = []int{4, 3, 2, 6, 1}

// fitPeriodColumns hides columns until the table fits width. Hidden columns
// keep their slot with zero width so rows stay aligned.
func fitPeriodColumns(width int) []table.Column {
	cols := make([]table.Column, len(periodColumns))
	copy(cols, periodColumns)

	total := func() int {
		n := 0
		for _, c := range cols {
			if c.Width > 0 {
				n += c.Width + 2 // cell padding
			}
		}
		return n
	}

	for _, i := range periodDropOrder {
		if total() <= width {
			break
		}
		cols[i].Width = 0
	}
	return cols
}

func periodTableStyles() table.Styles {
	t := theme.Active
	s := table.DefaultStyles()
	s.Header = s.Header.
		Foreground(t.Accent).
		Background(t.Surface).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Surface).
		BorderBottom(true).
		Bold(true)
	s.Cell = s.Cell.Foreground(t.TextPrimary).Background(t.Surface)
	s.Selected = s.Selected.Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	return s
}

func (a App) periodDetail(am model.AdjustedMetrics, cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	row := func(label, value string, color lipgloss.Color) string {
		vs := valueStyle
		if color != "" {
			vs = vs.Foreground(color)
		}
		return labelStyle.Render(fmt.Sprintf("%-16s", label)) + spaceStyle.Render(" ") + vs.Render(value)
	}

	left := []string{
		row("Items", fmt.Sprintf("%d valid, %d excluded", am.ValidItems, am.ExcludedItems), ""),
		row("Σ TP", a.amount(am.TotalThroughput), ""),
		row("Σ TP×qty", a.amount(am.ShippedThroughput), ""),
		row("Σ LT×qty", cli.FormatAmount(am.WeightedLeadTime)+" days", ""),
		row("TP/LT", cli.FormatProductivity(am.Productivity)+" → "+cli.FormatProductivity(am.AdjustedProductivity), ""),
	}
	right := []string{
		row("Cash start", a.amountOpt(am.CashStart), ""),
		row("Cash end", a.amountOpt(am.CashEnd), signedColor(am.CashEnd)),
		row("Delta", a.signed(am.CashDelta), signedColor(am.CashDelta)),
		row("Adjusted delta", a.signed(am.AdjustedCashDelta), signedColor(am.AdjustedCashDelta)),
	}

	halves := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		components.ContentCard(periodName(am.PeriodMetrics), strings.Join(left, "\n"), halves[0]),
		components.ContentCard(cli.FormatScenario(a.opts.Scenario), strings.Join(right, "\n"), halves[1]),
	})
}

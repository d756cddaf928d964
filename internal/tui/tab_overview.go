package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	// Row 1: headline metrics
	var proj pipeline.Projection
	if a.result != nil {
		proj = a.result.Projection
	}

	excluded := 0
	for _, pm := range a.series {
		excluded += pm.ExcludedItems
	}

	meanColor := lipgloss.Color("")
	if proj.MeanDelta != nil {
		meanColor = t.Signed(*proj.MeanDelta)
	}

	shortfall := components.Metric{Label: "Shortfall", Value: cli.Placeholder}
	if a.result != nil {
		shortfall.Value = cli.FormatMonthIndex(a.result.Verdict.MonthIndex)
		shortfall.Color = t.Tier(a.result.Verdict.Tier)
		shortfall.Delta = a.opts.Projection.String()
	}

	metrics := []components.Metric{
		{Label: "Last balance", Value: a.amountOpt(proj.StartBalance)},
		{Label: "Mean delta", Value: a.signed(proj.MeanDelta), Color: meanColor, Delta: "per period"},
		{Label: "Runway", Value: cli.FormatMonths(proj.RunwayMonths)},
		shortfall,
		{
			Label: "Excluded",
			Value: fmt.Sprintf("%d / %d", excluded, a.input.ItemCount()),
			Delta: a.opts.Weighting.String() + " filter",
		},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:3], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[3:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: verdict and runway gauge
	halves := components.LayoutRow(cw, 2)
	var verdict string
	if a.runErr != nil {
		verdict = errorCard(a.runErr, halves[0])
	} else if a.result != nil {
		verdict = components.VerdictCard(a.result.Verdict, halves[0])
	}

	gaugeW := components.CardInnerWidth(halves[1])
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	gauge := components.RunwayBar(proj.RunwayMonths, pipeline.Horizon, gaugeW) + "\n" +
		mutedStyle.Render(fmt.Sprintf("%d-period horizon, %s", pipeline.Horizon, cli.FormatScenario(a.opts.Scenario)))
	b.WriteString(components.CardRow([]string{
		verdict,
		components.ContentCard("Runway", gauge, halves[1]),
	}))
	b.WriteString("\n")

	// Row 3: trajectory and productivity/cash scatter
	chartH := 10
	if a.isCompactLayout() {
		b.WriteString(a.trajectoryCard(cw, chartH))
		b.WriteString("\n")
		b.WriteString(a.scatterCard(cw, chartH))
	} else {
		b.WriteString(components.CardRow([]string{
			a.trajectoryCard(halves[0], chartH),
			a.scatterCard(halves[1], chartH),
		}))
	}

	return b.String()
}

func (a App) trajectoryCard(w, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	if a.result == nil || len(a.result.Projection.Trajectory) == 0 {
		msg := "Needs a known balance and at least one cash delta."
		return components.ContentCard("Projected balance",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), w)
	}

	traj := a.result.Projection.Trajectory
	labels := make([]string, len(traj))
	for i := range traj {
		labels[i] = strconv.Itoa(i)
	}

	title := "Projected balance"
	if end, ok := a.result.Projection.EndBalance(); ok {
		title += " · end " + a.amount(end)
	}
	return components.ContentCard(title, components.SignedBarChart(traj, labels, inner, h), w)
}

func (a App) scatterCard(w, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	var xs, ys []float64
	for _, pm := range a.series {
		if pm.CashDelta == nil || pm.ValidItems == 0 {
			continue
		}
		xs = append(xs, pm.Productivity)
		ys = append(ys, *pm.CashDelta)
	}

	if len(xs) == 0 {
		msg := "No period has both included items and a cash delta."
		return components.ContentCard("TP/LT vs cash delta",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), w)
	}

	var trend func(float64) float64
	title := "TP/LT vs cash delta"
	if a.fit != nil {
		trend = a.fit.At
		title += fmt.Sprintf(" · slope %s", cli.FormatProductivity(a.fit.Slope))
	}
	return components.ContentCard(title, components.Scatter(xs, ys, trend, inner, h), w)
}

// errorCard renders a failed computation in place of the verdict.
func errorCard(err error, w int) string {
	t := theme.Active

	hint := "Check the input file and the projection mode."
	switch {
	case errors.Is(err, pipeline.ErrNoBalance):
		hint = "Add cash balances, or press m for detect mode."
	case errors.Is(err, pipeline.ErrNoPeriods):
		hint = "The input holds no periods."
	}

	head := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true).
		Render(err.Error())
	body := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(hint)
	return components.ContentCard("Verdict", head+"\n"+body, w)
}

// amount formats v with the configured unit label.
func (a App) amount(v float64) string {
	return a.cfg.FormatAmount(cli.FormatAmount(v))
}

func (a App) amountOpt(v *float64) string {
	if v == nil {
		return cli.Placeholder
	}
	return a.amount(*v)
}

func (a App) signed(v *float64) string {
	if v == nil {
		return cli.Placeholder
	}
	return a.cfg.FormatAmount(cli.FormatSigned(v))
}

// signedColor picks a color for an optional delta.
func signedColor(v *float64) lipgloss.Color {
	if v == nil {
		return theme.Active.TextMuted
	}
	return theme.Active.Signed(*v)
}

// periodName returns a display label for a series row.
func periodName(pm model.PeriodMetrics) string {
	if pm.Label == "" {
		return cli.Placeholder
	}
	return pm.Label
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// customPreset is the preset choice that enables the free-form fields.
const customPreset = "custom"

// scenarioValues holds the scenario form answers.
type scenarioValues struct {
	Preset    string
	Rate      string // percent
	Injection string
}

func (a App) startScenarioForm() (tea.Model, tea.Cmd) {
	sc := a.opts.Scenario
	v := a.scenarioVals
	v.Preset = customPreset
	for _, p := range a.cfg.Presets() {
		if p.ImprovementRate == sc.ImprovementRate && p.CashInjection == sc.CashInjection {
			v.Preset = p.Name
			break
		}
	}
	v.Rate = strconv.FormatFloat(sc.ImprovementRate*100, 'f', -1, 64)
	v.Injection = strconv.FormatFloat(sc.CashInjection, 'f', -1, 64)

	a.scenarioForm = a.newScenarioForm(v)
	a.scenarioForm.WithWidth(min(a.contentWidth()-8, 70))
	return a, a.scenarioForm.Init()
}

func (a App) newScenarioForm(v *scenarioValues) *huh.Form {
	options := make([]huh.Option[string], 0, len(a.cfg.Presets())+1)
	for _, p := range a.cfg.Presets() {
		options = append(options, huh.NewOption(p.Name+"  "+cli.FormatScenario(p), p.Name))
	}
	options = append(options, huh.NewOption("custom  enter rate and injection", customPreset))

	custom := func() bool { return v.Preset != customPreset }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Scenario").
				Options(options...).
				Value(&v.Preset),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("TP/LT improvement (%)").
				Description("Applied uniformly to every period, e.g. 15 or -5").
				Value(&v.Rate).
				Validate(func(s string) error {
					_, err := config.ParsePercent(s)
					return err
				}),
			huh.NewInput().
				Title("Cash injection").
				Description("Lump sum spread evenly over the series").
				Value(&v.Injection).
				Validate(validateAmount),
		).WithHideFunc(custom),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func validateAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if model.IsMissing(source.ParseNumber(s)) {
		return fmt.Errorf("not a number: %q", s)
	}
	return nil
}

// scenarioFromValues resolves the form answers to a scenario.
func scenarioFromValues(cfg config.Config, v *scenarioValues) model.Scenario {
	if v.Preset != customPreset {
		if sc, ok := cfg.LookupPreset(v.Preset); ok {
			return sc
		}
	}

	rate, _ := config.ParsePercent(v.Rate)
	injection := 0.0
	if strings.TrimSpace(v.Injection) != "" {
		if n := source.ParseNumber(v.Injection); !model.IsMissing(n) {
			injection = n
		}
	}

	sc := model.Scenario{Name: customPreset, ImprovementRate: rate, CashInjection: injection}
	if sc.IsBase() {
		sc.Name = model.BaseScenario().Name
	}
	return sc
}

func (a App) updateScenarioForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := updateForm(a.scenarioForm, msg)
	a.scenarioForm = form

	switch a.scenarioForm.State {
	case huh.StateCompleted:
		a.scenarioForm = nil
		a.opts.Scenario = scenarioFromValues(a.cfg, a.scenarioVals)
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.scenarioForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) renderSensitivityTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	halves := components.LayoutRow(cw, 2)

	// Row 1: current scenario (or its editor) and the productivity effect
	var left string
	if a.scenarioForm != nil {
		left = components.ContentCard("Edit scenario", a.scenarioForm.View(), halves[0])
	} else {
		hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("[e] edit  [0] reset to base")
		val := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).
			Render(a.opts.Scenario.Name + "  " + cli.FormatScenario(a.opts.Scenario))
		left = components.ContentCard("Scenario", val+"\n"+hint, halves[0])
	}
	b.WriteString(components.CardRow([]string{left, a.effectCard(halves[1])}))
	b.WriteString("\n")

	// Row 2: preset comparison
	b.WriteString(components.ContentCard("Scenario comparison · "+a.opts.Projection.String(),
		a.comparisonTable(components.CardInnerWidth(cw)), cw))

	return b.String()
}

func (a App) effectCard(w int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	base := pipeline.MeanProductivity(pipeline.Adjust(a.series, model.BaseScenario()))
	adj := pipeline.MeanProductivity(a.adjusted)

	lines := []string{
		labelStyle.Render("Mean TP/LT  ") + valueStyle.Render(cli.FormatProductivity(base)+" → "+cli.FormatProductivity(adj)),
	}

	if a.fit != nil {
		before := pipeline.ImpliedDelta(*a.fit, base)
		after := pipeline.ImpliedDelta(*a.fit, adj)
		diff := after - before
		lines = append(lines,
			labelStyle.Render("Fitted delta ")+
				lipgloss.NewStyle().Foreground(t.Signed(after)).Background(t.Surface).Bold(true).
					Render(a.signed(&after))+
				dimStyle.Render(" ("+a.signed(&diff)+" vs base)"),
			dimStyle.Render(fmt.Sprintf("least squares over %d periods", a.fit.Points)),
		)
	} else {
		lines = append(lines, dimStyle.Render("Too few periods to fit TP/LT against cash delta"))
	}

	return components.ContentCard("Effect", strings.Join(lines, "\n"), w)
}

func (a App) comparisonTable(w int) string {
	t := theme.Active

	if len(a.outcomes) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No scenarios")
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	activeStyle := cellStyle.Foreground(t.AccentBright).Bold(true)

	cols := []struct {
		title string
		width int
		right bool
	}{
		{"Scenario", 12, false},
		{"Rate", 7, true},
		{"Injection", 14, true},
		{"Mean delta", 14, true},
		{"End balance", 15, true},
		{"Shortfall", 16, true},
		{"Tier", 10, true},
	}

	pad := func(s string, width int, right bool) string {
		s = truncStr(s, width)
		gap := max(width-lipgloss.Width(s), 0)
		if right {
			return strings.Repeat(" ", gap) + s
		}
		return s + strings.Repeat(" ", gap)
	}

	// Drop trailing columns that do not fit.
	visible, used := 0, 0
	for i, c := range cols {
		need := c.width
		if i > 0 {
			need++
		}
		if used+need > w {
			break
		}
		used += need
		visible++
	}
	visible = max(visible, 1)

	var b strings.Builder
	var header strings.Builder
	for i, c := range cols[:visible] {
		if i > 0 {
			header.WriteString(" ")
		}
		header.WriteString(pad(c.title, c.width, c.right))
	}
	b.WriteString(headerStyle.Render(header.String()))

	for _, o := range a.outcomes {
		end := cli.Placeholder
		if v, ok := o.Projection.EndBalance(); ok {
			end = cli.FormatAmount(v)
		}
		shortfall, tier := cli.Placeholder, cli.Placeholder
		tierColor := t.TextMuted
		if o.Err != nil {
			shortfall = "error"
		} else {
			shortfall = cli.FormatMonthIndex(o.Verdict.MonthIndex)
			tier = o.Verdict.Tier.String()
			tierColor = t.Tier(o.Verdict.Tier)
		}

		cells := []string{
			o.Scenario.Name,
			cli.FormatRate(o.Scenario.ImprovementRate),
			cli.FormatAmount(o.Scenario.CashInjection),
			cli.FormatSigned(o.Projection.MeanDelta),
			end,
			shortfall,
			tier,
		}

		style := cellStyle
		if o.Scenario.ImprovementRate == a.opts.Scenario.ImprovementRate &&
			o.Scenario.CashInjection == a.opts.Scenario.CashInjection {
			style = activeStyle
		}
		tierStyle := lipgloss.NewStyle().Foreground(tierColor).Background(t.Surface).Bold(true)

		b.WriteString("\n")
		for i := range cells[:visible] {
			if i > 0 {
				b.WriteString(cellStyle.Render(" "))
			}
			st := style
			if i == len(cols)-1 {
				st = tierStyle
			}
			b.WriteString(st.Render(pad(cells[i], cols[i].width, cols[i].right)))
		}
	}
	return b.String()
}

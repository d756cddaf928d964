package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) startSettingsForm() (tea.Model, tea.Cmd) {
	a.settingsVals = NewSetupValues(a.cfg)
	a.settingsVals.Weighting = a.opts.Weighting.String()
	a.settingsVals.Projection = a.opts.Projection.String()
	a.settingsVals.Theme = theme.Active.Name

	a.settingsForm = newSettingsForm(a.settingsVals)
	a.settingsForm.WithWidth(min(a.contentWidth()-8, 80))
	a.settingsMsg = ""
	return a, a.settingsForm.Init()
}

func (a App) updateSettingsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := updateForm(a.settingsForm, msg)
	a.settingsForm = form

	switch a.settingsForm.State {
	case huh.StateCompleted:
		a.settingsForm = nil
		a.settingsVals.DataDir = a.cfg.General.DataDir
		a.settingsVals.Apply(&a.cfg)
		a.applyEngineValues(a.settingsVals)
		a.settingsErr = config.SaveTo(a.configPath, a.cfg)
		if a.settingsErr != nil {
			logging.Log.WithError(a.settingsErr).Warn("saving settings failed")
			a.settingsMsg = ""
		} else {
			a.settingsMsg = "Saved"
		}
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.settingsForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	field := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-18s ", label+":")) + valueStyle.Render(value)
	}

	var b strings.Builder

	if a.settingsForm != nil {
		b.WriteString(components.ContentCard("Settings", a.settingsForm.View(), cw))
	} else {
		unit := a.cfg.General.UnitLabel
		if unit == "" {
			unit = "(none)"
		}

		var formBody strings.Builder
		for _, line := range []string{
			field("Weighting", a.opts.Weighting.String()+"  "+a.opts.Weighting.Description()),
			field("Projection", a.opts.Projection.String()+"  "+a.opts.Projection.Description()),
			field("Scenario", cli.FormatScenario(a.opts.Scenario)),
			field("Theme", theme.Active.Name),
			field("Unit label", unit),
			field("Export BOM", fmt.Sprint(a.cfg.Export.BOM)),
		} {
			formBody.WriteString(line)
			formBody.WriteString("\n")
		}

		if a.settingsErr != nil {
			formBody.WriteString("\n")
			formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settingsErr)))
			formBody.WriteString("\n")
		} else if a.settingsMsg != "" {
			formBody.WriteString("\n")
			formBody.WriteString(greenStyle.Render(a.settingsMsg))
			formBody.WriteString("\n")
		}

		formBody.WriteString("\n")
		formBody.WriteString(labelStyle.Render("[e] edit  [w] weighting  [m] projection"))
		b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	}
	b.WriteString("\n")

	// Input and environment info
	info := []string{
		field("Input file", a.inputPath),
		field("Data directory", a.dataDir),
		field("Config file", a.configPath),
		field("Load time", fmt.Sprintf("%.2fs", a.loadTime.Seconds())),
	}
	if a.balancesPath != "" {
		info = append(info, field("Balance file", a.balancesPath))
	}
	if p := a.parsed; p != nil {
		qty := "yes"
		if !p.HasQuantity {
			qty = "no (throughput weighting only)"
		}
		info = append(info,
			field("Layout", p.Layout.String()),
			field("Encoding", p.Encoding),
			field("Rows", fmt.Sprintf("%s read, %s skipped",
				cli.FormatNumber(int64(p.Rows)), cli.FormatNumber(int64(p.SkippedRows)))),
			field("Quantity column", qty),
			field("Balances", a.input.Balance.String()),
		)
	}

	b.WriteString(components.ContentCard("Input", strings.Join(info, "\n"), cw))
	return b.String()
}

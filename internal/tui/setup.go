package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// SetupValues holds the answers of the setup wizard and the settings form.
type SetupValues struct {
	DataDir    string
	Weighting  string
	Projection string
	Theme      string
	UnitLabel  string
}

// NewSetupValues pre-fills the wizard from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		DataDir:    cfg.General.DataDir,
		Weighting:  cfg.Engine.Weighting,
		Projection: cfg.Engine.Projection,
		Theme:      cfg.Appearance.Theme,
		UnitLabel:  cfg.General.UnitLabel,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.DataDir = strings.TrimSpace(v.DataDir)
	cfg.General.UnitLabel = strings.TrimSpace(v.UnitLabel)
	cfg.Engine.Weighting = v.Weighting
	cfg.Engine.Projection = v.Projection
	cfg.Appearance.Theme = v.Theme
}

// NewSetupForm builds the first-run wizard. summary is an optional line
// shown under the welcome title.
func NewSetupForm(vals *SetupValues, summary string) *huh.Form {
	desc := "Let's set up a few things. Settings are saved to " + config.ConfigPath() + "."
	if summary != "" {
		desc = summary + "\n\n" + desc
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to runway").
				Description(desc),
			huh.NewInput().
				Title("Data directory").
				Description("Folder holding your .csv and .toml inputs (blank for the working directory)").
				Placeholder("~/ledgers").
				Value(&vals.DataDir).
				Validate(validateDir),
		),
		engineGroup(vals),
		appearanceGroup(vals),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func newSettingsForm(vals *SetupValues) *huh.Form {
	return huh.NewForm(
		engineGroup(vals),
		appearanceGroup(vals),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func engineGroup(vals *SetupValues) *huh.Group {
	weightings := make([]huh.Option[string], 0, len(model.WeightingModes))
	for _, m := range model.WeightingModes {
		weightings = append(weightings, huh.NewOption(m.String()+"  "+m.Description(), m.String()))
	}
	projections := make([]huh.Option[string], 0, len(model.ProjectionModes))
	for _, m := range model.ProjectionModes {
		projections = append(projections, huh.NewOption(m.String()+"  "+m.Description(), m.String()))
	}

	return huh.NewGroup(
		huh.NewSelect[string]().
			Title("Weighting mode").
			Description("How item lead times are weighted into TP/LT").
			Options(weightings...).
			Value(&vals.Weighting),
		huh.NewSelect[string]().
			Title("Projection mode").
			Options(projections...).
			Value(&vals.Projection),
	)
}

func appearanceGroup(vals *SetupValues) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[string]().
			Title("Color theme").
			Options(huh.NewOptions(theme.Names()...)...).
			Value(&vals.Theme),
		huh.NewInput().
			Title("Unit label").
			Description("Appended to amounts, e.g. JPY or k¥ (optional)").
			CharLimit(12).
			Value(&vals.UnitLabel),
	)
}

// formTheme matches the huh theme to the active dashboard theme.
func formTheme() *huh.Theme {
	switch theme.Active.Name {
	case theme.CatppuccinMocha.Name:
		return huh.ThemeCatppuccin()
	case theme.Terminal.Name:
		return huh.ThemeBase16()
	default:
		return huh.ThemeCharm()
	}
}

func validateDir(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	cfg := config.Config{General: config.GeneralConfig{DataDir: strings.TrimSpace(s)}}
	info, err := os.Stat(cfg.DataDir())
	if err != nil {
		return fmt.Errorf("cannot open %s", s)
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

// applyEngineValues updates the engine modes from the form answers.
func (a *App) applyEngineValues(v *SetupValues) {
	if w, err := model.ParseWeightingMode(v.Weighting); err == nil {
		a.opts.Weighting = w
	}
	if p, err := model.ParseProjectionMode(v.Projection); err == nil {
		a.opts.Projection = p
	}
	theme.SetActive(v.Theme)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := updateForm(a.setupForm, msg)
	a.setupForm = form

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.Apply(&a.cfg)
		a.applyEngineValues(a.setupVals)
		a.dataDir = a.cfg.DataDir()
		a.settingsErr = config.SaveTo(a.configPath, a.cfg)
		a.setupForm = nil
		return a.beginLoad()

	case huh.StateAborted:
		a.setupForm = nil
		return a.beginLoad()
	}

	return a, cmd
}

// beginLoad starts the initial load once the wizard is out of the way.
func (a App) beginLoad() (tea.Model, tea.Cmd) {
	a.scanning = a.inputPath == ""
	a.opening = a.inputPath != ""
	a.pending = a.inputPath
	return a, tea.Batch(a.startLoad(), a.spinner.Tick)
}

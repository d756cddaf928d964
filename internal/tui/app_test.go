package tui

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
)

func testInput() model.Input {
	periods := model.BoundaryPeriods(
		[]string{"2024-01", "2024-02", "2024-03"},
		[]float64{450, 400, 350, 300},
	)
	for i := range periods {
		periods[i].Items = []model.Item{
			{Product: "A", Throughput: 100, LeadTime: 10, Quantity: 5},
			{Product: "B", Throughput: 0, LeadTime: 10, Quantity: 5},
		}
	}
	return model.Input{Periods: periods, Balance: model.BalanceBoundary, Source: "ledger.csv"}
}

func newTestApp(t *testing.T, o Options) App {
	t.Helper()
	o.Config = config.DefaultConfig()
	o.ConfigPath = filepath.Join(t.TempDir(), "config.toml")
	o.Engine = pipeline.Options{Scenario: model.BaseScenario()}
	return NewApp(o)
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	out, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedApp(t *testing.T) App {
	t.Helper()
	a := newTestApp(t, Options{InputPath: "ledger.csv"})
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 45})
	return update(t, a, InputLoadedMsg{
		Path:     "ledger.csv",
		Result:   &source.ParseResult{Input: testInput(), Layout: source.LayoutLedger, Encoding: source.EncodingUTF8, Rows: 6, HasQuantity: true},
		LoadTime: 10 * time.Millisecond,
	})
}

func TestInputLoadedComputesResult(t *testing.T) {
	a := loadedApp(t)

	if !a.loaded || a.opening {
		t.Fatalf("loaded=%v opening=%v after InputLoadedMsg", a.loaded, a.opening)
	}
	if a.runErr != nil {
		t.Fatalf("runErr = %v", a.runErr)
	}
	if a.result == nil {
		t.Fatal("result is nil")
	}

	v := a.result.Verdict
	if v.MonthIndex == nil || *v.MonthIndex != 6 || v.Tier != model.TierAdvisory {
		t.Errorf("verdict = %+v, want ADVISORY at 6", v)
	}
	if len(a.periods.Rows()) != 3 {
		t.Errorf("period rows = %d, want 3", len(a.periods.Rows()))
	}
	if len(a.outcomes) != len(a.cfg.Presets()) {
		t.Errorf("outcomes = %d, want one per preset", len(a.outcomes))
	}
	if len(a.products) != 1 || a.products[0].Product != "A" {
		t.Errorf("products = %+v, want only A", a.products)
	}
}

func TestInputErrorReopensPicker(t *testing.T) {
	a := newTestApp(t, Options{DataDir: t.TempDir()})
	if !a.scanning {
		t.Fatal("app without an input should start scanning")
	}

	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a = update(t, a, CatalogLoadedMsg{Result: &pipeline.LoadResult{
		Entries: []pipeline.CatalogEntry{{
			File:   source.DiscoveredFile{Path: "/data/a.csv", Name: "a.csv", Format: "csv"},
			Result: &source.ParseResult{Input: testInput()},
		}},
		TotalFiles:  1,
		ParsedFiles: 1,
	}})
	if a.openForm == nil {
		t.Fatal("catalog with entries should open the file picker")
	}

	a.openForm = nil
	a = update(t, a, InputLoadedMsg{Path: "/data/a.csv", Err: errors.New("required columns missing")})
	if a.loadErr == nil {
		t.Error("loadErr not set")
	}
	if a.openForm == nil {
		t.Error("failed load should reopen the picker")
	}
	if a.loaded {
		t.Error("failed load marked the app loaded")
	}
}

func TestEmptyCatalogShowsNotice(t *testing.T) {
	a := newTestApp(t, Options{DataDir: "/nowhere"})
	a = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	a = update(t, a, CatalogLoadedMsg{Result: &pipeline.LoadResult{}})

	if a.openForm != nil || a.scanning {
		t.Fatalf("openForm=%v scanning=%v, want neither", a.openForm != nil, a.scanning)
	}
	if a.View() == "" {
		t.Error("empty catalog rendered nothing")
	}
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t)

	steps := []struct {
		key  string
		want int
	}{
		{"p", tabPeriods},
		{"right", tabSensitivity},
		{"x", tabSettings},
		{"right", tabOverview},
		{"left", tabSettings},
		{"i", tabItems},
		{"o", tabOverview},
	}
	for _, s := range steps {
		a = update(t, a, key(s.key))
		if a.activeTab != s.want {
			t.Fatalf("after %q activeTab = %d, want %d", s.key, a.activeTab, s.want)
		}
	}
}

func TestModeKeysRecompute(t *testing.T) {
	a := loadedApp(t)

	a = update(t, a, key("w"))
	if a.opts.Weighting != model.WeightingThroughput {
		t.Fatalf("weighting = %s, want throughput", a.opts.Weighting)
	}
	if a.result == nil || a.result.Options.Weighting != model.WeightingThroughput {
		t.Error("result not recomputed for the new weighting")
	}

	a = update(t, a, key("m"))
	if a.opts.Projection != model.ProjectionDetect {
		t.Fatalf("projection = %s, want detect", a.opts.Projection)
	}
	// Every balance in the sample stays positive.
	if a.result == nil || a.result.Verdict.Tier != model.TierSafe {
		t.Errorf("detect verdict = %+v, want SAFE", a.result)
	}
}

func TestResetScenario(t *testing.T) {
	a := loadedApp(t)
	a.opts.Scenario = model.Scenario{Name: "custom", ImprovementRate: 0.2}
	a.activeTab = tabSensitivity

	a = update(t, a, key("0"))
	if !a.opts.Scenario.IsBase() {
		t.Errorf("scenario = %+v, want base", a.opts.Scenario)
	}
}

func TestEscClosesForms(t *testing.T) {
	a := loadedApp(t)
	a.activeTab = tabSensitivity

	a = update(t, a, key("e"))
	if a.scenarioForm == nil {
		t.Fatal("e on the sensitivity tab should open the scenario form")
	}
	a = update(t, a, key("esc"))
	if a.scenarioForm != nil {
		t.Error("esc left the scenario form open")
	}

	a.activeTab = tabSettings
	a = update(t, a, key("e"))
	if a.settingsForm == nil {
		t.Fatal("e on the settings tab should open the settings form")
	}
	a = update(t, a, key("esc"))
	if a.settingsForm != nil {
		t.Error("esc left the settings form open")
	}
}

func TestFirstRunSkipsWizardOnEsc(t *testing.T) {
	a := newTestApp(t, Options{FirstRun: true})
	if a.setupForm == nil {
		t.Fatal("first run should show the setup wizard")
	}
	if a.scanning {
		t.Error("scan started before the wizard finished")
	}

	a = update(t, a, key("esc"))
	if a.setupForm != nil || !a.scanning {
		t.Errorf("setupForm=%v scanning=%v, want wizard closed and scanning", a.setupForm != nil, a.scanning)
	}
}

func TestQuitBeforeLoad(t *testing.T) {
	a := newTestApp(t, Options{})
	_, cmd := a.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q before load should quit")
	}
}

func TestScenarioFromValues(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		vals scenarioValues
		want model.Scenario
	}{
		{"preset", scenarioValues{Preset: "light"}, model.Scenario{Name: "light", ImprovementRate: 0.10}},
		{"custom", scenarioValues{Preset: customPreset, Rate: "15", Injection: "1,000"},
			model.Scenario{Name: customPreset, ImprovementRate: 0.15, CashInjection: 1000}},
		{"custom zero is base", scenarioValues{Preset: customPreset, Rate: "0"}, model.BaseScenario()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scenarioFromValues(cfg, &tt.vals)
			if got.Name != tt.want.Name || !approxEq(got.ImprovementRate, tt.want.ImprovementRate) ||
				got.CashInjection != tt.want.CashInjection {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewFillsTerminal(t *testing.T) {
	for _, width := range []int{100, 140} {
		a := loadedApp(t)
		a = update(t, a, tea.WindowSizeMsg{Width: width, Height: 40})

		for tab := range 5 {
			a.activeTab = tab
			view := a.View()
			if h := lipgloss.Height(view); h != 40 {
				t.Errorf("width=%d tab=%d: view height = %d, want 40", width, tab, h)
			}
		}

		a.showHelp = true
		if a.View() == "" {
			t.Errorf("width=%d: help view is empty", width)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	if h := lipgloss.Height(a.View()); h != 20 {
		t.Errorf("narrow view height = %d, want 20", h)
	}
}

func TestViewComputationError(t *testing.T) {
	a := newTestApp(t, Options{InputPath: "empty.csv"})
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a = update(t, a, InputLoadedMsg{Path: "empty.csv", Result: &source.ParseResult{}})

	if !errors.Is(a.runErr, pipeline.ErrNoPeriods) {
		t.Fatalf("runErr = %v, want ErrNoPeriods", a.runErr)
	}
	if a.View() == "" {
		t.Error("error state rendered nothing")
	}
}

func approxEq(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestFitPeriodColumns(t *testing.T) {
	for _, c := range fitPeriodColumns(200) {
		if c.Width == 0 {
			t.Errorf("column %q hidden at width 200", c.Title)
		}
	}

	cols := fitPeriodColumns(76)
	used := 0
	for _, c := range cols {
		if c.Width > 0 {
			used += c.Width + 2
		}
	}
	if used > 76 {
		t.Errorf("columns use %d cells, want at most 76", used)
	}
	if cols[0].Width == 0 || cols[len(cols)-1].Width == 0 {
		t.Error("period label and adjusted delta must stay visible")
	}
	if len(cols) != len(periodColumns) {
		t.Error("hidden columns must keep their slot")
	}
}

// Package tui provides the interactive Bubble Tea dashboard for runway.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// CatalogLoadedMsg is sent when the data directory has been scanned and parsed.
type CatalogLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// InputLoadedMsg is sent when the selected input file has been read.
type InputLoadedMsg struct {
	Path     string
	Result   *source.ParseResult
	Err      error
	LoadTime time.Duration
}

// Options configures a new dashboard.
type Options struct {
	Config       config.Config
	ConfigPath   string
	Engine       pipeline.Options
	DataDir      string
	InputPath    string // opened directly, skipping the file picker
	BalancesPath string
	FirstRun     bool // show the setup wizard before loading
}

// App is the root Bubble Tea model.
type App struct {
	cfg        config.Config
	configPath string
	opts       pipeline.Options

	// Data
	input        model.Input
	parsed       *source.ParseResult
	inputPath    string
	balancesPath string
	dataDir      string
	loaded       bool
	loadTime     time.Duration

	// Computed for the current input and options
	result   *pipeline.Result
	runErr   error
	series   []model.PeriodMetrics
	adjusted []model.AdjustedMetrics
	outcomes []pipeline.ScenarioOutcome
	products []pipeline.ProductStats
	trends   []pipeline.ProductTrend
	fit      *pipeline.Fit

	// File catalog
	catalog  *pipeline.LoadResult
	scanning bool
	opening  bool
	pending  string // file being opened
	loadErr  error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	periods   table.Model

	// Forms (huh). Values live behind pointers so the bindings survive
	// the value copies Bubble Tea makes of App.
	setupForm    *huh.Form
	setupVals    *SetupValues
	openForm     *huh.Form
	openVals     *openValues
	scenarioForm *huh.Form
	scenarioVals *scenarioValues
	settingsForm *huh.Form
	settingsVals *SetupValues
	settingsMsg  string
	settingsErr  error

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabPeriods
	tabSensitivity
	tabItems
	tabSettings
)

// NewApp creates a new TUI app model.
func NewApp(o Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	configPath := o.ConfigPath
	if configPath == "" {
		configPath = config.ConfigPath()
	}

	a := App{
		cfg:          o.Config,
		configPath:   configPath,
		opts:         o.Engine,
		dataDir:      o.DataDir,
		inputPath:    o.InputPath,
		balancesPath: o.BalancesPath,
		periods:      newPeriodTable(),
		openVals:     &openValues{Balances: o.BalancesPath},
		scenarioVals: &scenarioValues{},
		spinner:      sp,
		loadSub:      make(chan tea.Msg, 1),
	}

	if o.FirstRun {
		a.setupVals = NewSetupValues(o.Config)
		a.setupForm = NewSetupForm(a.setupVals, "")
	} else {
		a.scanning = o.InputPath == ""
		a.opening = o.InputPath != ""
		a.pending = o.InputPath
	}

	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, a.spinner.Tick}
	if a.setupForm != nil {
		return tea.Batch(append(cmds, a.setupForm.Init())...)
	}
	return tea.Batch(append(cmds, a.startLoad())...)
}

// startLoad opens the input given on the command line, or catalogs the
// data directory for the file picker.
func (a App) startLoad() tea.Cmd {
	if a.inputPath != "" {
		return loadInputCmd(a.inputPath, a.balancesPath)
	}
	return loadCatalogCmd(a.dataDir, a.loadSub)
}

// recompute runs the engine and the supplementary analytics for the
// current input and options.
func (a *App) recompute() {
	a.result, a.runErr = pipeline.Run(a.input, a.opts)
	if a.runErr != nil {
		logging.Log.WithError(a.runErr).Debug("dashboard computation failed")
	}

	a.series = pipeline.BuildSeries(a.input, a.opts.Weighting)
	a.adjusted = pipeline.Adjust(a.series, a.opts.Scenario)
	a.outcomes = pipeline.CompareScenarios(a.series, a.opts.Projection, a.cfg.Presets())
	a.products = pipeline.ProductStatistics(a.input, a.opts.Weighting)
	a.trends = pipeline.ProductTrends(a.input, a.opts.Weighting)

	a.fit = nil
	if f, err := pipeline.FitSeries(a.series); err == nil {
		a.fit = &f
	}

	a.periods.SetRows(periodRows(a.adjusted))
	if a.periods.Cursor() >= len(a.adjusted) {
		a.periods.SetCursor(max(0, len(a.adjusted)-1))
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		for _, f := range []*huh.Form{a.setupForm, a.openForm} {
			if f != nil {
				f.WithWidth(min(msg.Width-8, 90)).WithHeight(msg.Height - 6)
			}
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.formActive() {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabPeriods {
				a.periods.MoveUp(1)
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == tabPeriods {
				a.periods.MoveDown(1)
			}
			return a, nil

		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if key == "esc" && a.formActive() {
			return a.cancelForm()
		}

		switch {
		case a.setupForm != nil:
			return a.updateSetupForm(msg)
		case a.openForm != nil:
			return a.updateOpenForm(msg)
		case a.scenarioForm != nil:
			return a.updateScenarioForm(msg)
		case a.settingsForm != nil:
			return a.updateSettingsForm(msg)
		}

		if !a.loaded {
			switch key {
			case "q", "esc":
				return a, tea.Quit
			case "f", "enter":
				return a.rescan()
			}
			return a, nil
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "f":
			return a.rescan()
		case "w":
			a.opts.Weighting = nextWeighting(a.opts.Weighting)
			a.recompute()
			return a, nil
		case "m":
			a.opts.Projection = nextProjection(a.opts.Projection)
			a.recompute()
			return a, nil
		}

		switch a.activeTab {
		case tabPeriods:
			switch key {
			case "j", "k", "up", "down", "g", "G", "home", "end", "pgup", "pgdown", "ctrl+d", "ctrl+u":
				var cmd tea.Cmd
				a.periods, cmd = a.periods.Update(msg)
				return a, cmd
			}
		case tabSensitivity:
			switch key {
			case "e", "enter":
				return a.startScenarioForm()
			case "0":
				a.opts.Scenario = model.BaseScenario()
				a.recompute()
				return a, nil
			}
		case tabSettings:
			if key == "e" || key == "enter" {
				return a.startSettingsForm()
			}
		}

		switch key {
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if r := []rune(key); len(r) == 1 {
				if idx := components.TabIdxByKey(r[0]); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil

	case CatalogLoadedMsg:
		a.scanning = false
		a.catalog = msg.Result
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		if a.catalog == nil || len(a.catalog.Entries) == 0 {
			return a, nil
		}
		a.openForm = newOpenForm(a.catalog, a.openVals, a.loadErr)
		a.sizeForm(a.openForm)
		return a, a.openForm.Init()

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case InputLoadedMsg:
		a.opening = false
		if msg.Err != nil {
			logging.Log.WithError(msg.Err).WithField("path", msg.Path).Warn("input failed to load")
			a.loadErr = fmt.Errorf("opening %s: %w", filepath.Base(msg.Path), msg.Err)
			if a.catalog != nil && len(a.catalog.Entries) > 0 {
				a.openForm = newOpenForm(a.catalog, a.openVals, a.loadErr)
				a.sizeForm(a.openForm)
				return a, a.openForm.Init()
			}
			return a, nil
		}

		a.loadErr = nil
		a.parsed = msg.Result
		a.input = msg.Result.Input
		a.inputPath = msg.Path
		a.loadTime = msg.LoadTime
		a.loaded = true
		a.recompute()
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.scanning || a.opening {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.) to the active form.
	switch {
	case a.setupForm != nil:
		return a.updateSetupForm(msg)
	case a.openForm != nil:
		return a.updateOpenForm(msg)
	case a.scenarioForm != nil:
		return a.updateScenarioForm(msg)
	case a.settingsForm != nil:
		return a.updateSettingsForm(msg)
	}

	return a, nil
}

// rescan catalogs the data directory again; the picker opens when it finishes.
func (a App) rescan() (tea.Model, tea.Cmd) {
	if a.scanning {
		return a, nil
	}
	a.scanning = true
	a.progress, a.progressMax = 0, 0
	return a, tea.Batch(loadCatalogCmd(a.dataDir, a.loadSub), a.spinner.Tick)
}

// cancelForm closes the active form without applying it. Skipping the setup
// wizard keeps the defaults; leaving the file picker before anything is
// loaded quits.
func (a App) cancelForm() (tea.Model, tea.Cmd) {
	switch {
	case a.setupForm != nil:
		a.setupForm = nil
		return a.beginLoad()
	case a.openForm != nil:
		a.openForm = nil
		if !a.loaded {
			return a, tea.Quit
		}
		a.loadErr = nil
	case a.scenarioForm != nil:
		a.scenarioForm = nil
	case a.settingsForm != nil:
		a.settingsForm = nil
	}
	return a, nil
}

func (a App) formActive() bool {
	return a.setupForm != nil || a.openForm != nil || a.scenarioForm != nil || a.settingsForm != nil
}

func (a App) sizeForm(f *huh.Form) {
	if f != nil && a.width > 0 {
		f.WithWidth(min(a.width-8, 90)).WithHeight(a.height - 6)
	}
}

// updateForm forwards msg to a huh form and returns the updated form.
func updateForm(f *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	m, cmd := f.Update(msg)
	if updated, ok := m.(*huh.Form); ok {
		f = updated
	}
	return f, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.setupForm != nil {
		return a.viewForm("◈ runway setup", a.setupForm)
	}
	if a.openForm != nil {
		return a.viewForm("◈ Open input", a.openForm)
	}

	if !a.loaded {
		switch {
		case a.scanning || a.opening:
			return a.viewLoading()
		case a.loadErr != nil:
			return a.viewNotice("Could not load input", a.loadErr.Error())
		default:
			return a.viewNotice("No input files",
				fmt.Sprintf("No .csv or .toml files found in %s.\nPass --input or set data_dir in the config.", a.dataDir))
		}
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  runway needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm(title string, f *huh.Form) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	card := cardStyle.Render(titleStyle.Render(title) + "\n\n" + f.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	countStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ runway"))
	b.WriteString(subtitleStyle.Render(" · TP/LT cash runway"))
	b.WriteString("\n\n")

	switch {
	case a.opening:
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading " + filepath.Base(a.pending)))
	case a.progressMax > 0:
		barW := max(20, min(40, w-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing input files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	default:
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Scanning " + a.dataDir))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewNotice(title, body string) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Orange).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	card := cardStyle.Render(titleStyle.Render(title) + "\n\n" +
		bodyStyle.Render(body) + "\n\n" +
		hintStyle.Render("[f] scan again  [q] quit"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o p s i x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through periods"},
		}},
		{"Engine", []struct{ key, desc string }{
			{"w", "Cycle weighting mode"},
			{"m", "Toggle projection mode"},
			{"e", "Edit scenario / settings"},
			{"0", "Reset scenario to base"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"f", "Open another input file"},
			{"Esc", "Cancel form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar plus the active options
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	sep := pillStyle.Render(" │ ")
	filterStr := pillStyle.Render(" ") +
		accentStyle.Render(a.opts.Weighting.String()) + sep +
		accentStyle.Render(a.opts.Projection.String()) + sep +
		accentStyle.Render(cli.FormatScenario(a.opts.Scenario))
	if a.parsed != nil {
		filterStr += sep + pillStyle.Render(fmt.Sprintf("%s, %s, %d periods",
			a.parsed.Layout, a.input.Balance, len(a.input.Periods)))
	}
	if a.scanning {
		filterStr += sep + pillStyle.Render(a.spinner.View()+" scanning")
	}

	filterRowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w).MaxWidth(w).MaxHeight(1)

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		filterRowStyle.Render(filterStr)
	if a.loadErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
		header += "\n" + filterRowStyle.Render(errStyle.Render(" "+truncStr(a.loadErr.Error(), w-2)))
	}

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, filepath.Base(a.inputPath),
		fmt.Sprintf("%.2fs", a.loadTime.Seconds()))

	// 3. Content zone height
	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := max(h-headerH-statusH, minContentHeight)

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabPeriods:
		content = a.renderPeriodsTab(cw, contentH)
	case tabSensitivity:
		content = a.renderSensitivityTab(cw)
	case tabItems:
		content = a.renderItemsTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate and pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Center the content zone when the terminal is wider than cw
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

// loadCatalogCmd scans and parses the data directory in a background
// goroutine. It streams ProgressMsg updates and a final CatalogLoadedMsg
// through sub.
func loadCatalogCmd(dataDir string, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			result, err := pipeline.Load(dataDir, progressFn)
			sub <- CatalogLoadedMsg{Result: result, Err: err, LoadTime: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// loadInputCmd reads one input file, merging a balance file when given.
func loadInputCmd(path, balancesPath string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		var (
			res *source.ParseResult
			err error
		)
		if balancesPath != "" {
			res, err = source.LoadWithBalances(path, balancesPath)
		} else {
			res, err = source.LoadFile(path)
		}
		return InputLoadedMsg{Path: path, Result: res, Err: err, LoadTime: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func nextWeighting(m model.WeightingMode) model.WeightingMode {
	modes := model.WeightingModes
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func nextProjection(m model.ProjectionMode) model.ProjectionMode {
	modes := model.ProjectionModes
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

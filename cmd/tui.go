package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/tui"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive runway dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	opts, err := engineOptions()
	if err != nil {
		return err
	}

	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The alt screen owns the terminal; stray log lines would corrupt it.
	restore := logging.Silence()
	defer restore()

	_, statErr := os.Stat(cfgPath)

	app := tui.NewApp(tui.Options{
		Config:       cfg,
		ConfigPath:   cfgPath,
		Engine:       opts,
		DataDir:      cfg.DataDir(),
		InputPath:    flagInput,
		BalancesPath: flagBalances,
		FirstRun:     os.IsNotExist(statErr),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

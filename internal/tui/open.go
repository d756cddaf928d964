package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/runway/internal/pipeline"
)

// openValues holds the file picker answers.
type openValues struct {
	Path     string
	Balances string
}

// newOpenForm lists the cataloged input files. lastErr, when set, is shown
// above the list so the user can pick another file.
func newOpenForm(catalog *pipeline.LoadResult, vals *openValues, lastErr error) *huh.Form {
	options := make([]huh.Option[string], 0, len(catalog.Entries))
	for _, e := range catalog.Entries {
		options = append(options, huh.NewOption(entryLabel(e), e.File.Path))
	}

	desc := fmt.Sprintf("%d files, %d parsed", catalog.TotalFiles, catalog.ParsedFiles)
	if catalog.FileErrors > 0 {
		desc += fmt.Sprintf(", %d unreadable", catalog.FileErrors)
	}
	if lastErr != nil {
		desc = "Last attempt failed: " + lastErr.Error() + "\n" + desc
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Input file").
				Description(desc).
				Options(options...).
				Height(min(len(options)+2, 12)).
				Value(&vals.Path),
			huh.NewInput().
				Title("Balance file").
				Description("Optional CSV with cash balances per period").
				Placeholder("balances.csv").
				Value(&vals.Balances).
				Validate(validateOptionalFile),
		),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func entryLabel(e pipeline.CatalogEntry) string {
	if e.Err != nil {
		return fmt.Sprintf("%s  (unreadable: %s)", e.File.Name, truncStr(e.Err.Error(), 40))
	}
	r := e.Result
	return fmt.Sprintf("%s  (%s, %d periods, %s, %s)",
		e.File.Name, r.Layout, e.Periods(),
		humanize.Bytes(uint64(max(e.File.Size, 0))),
		humanize.Time(e.File.ModTime))
}

func validateOptionalFile(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot open %s", s)
	}
	if info.IsDir() {
		return errors.New("is a directory")
	}
	return nil
}

func (a App) updateOpenForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := updateForm(a.openForm, msg)
	a.openForm = form

	switch a.openForm.State {
	case huh.StateCompleted:
		a.openForm = nil
		a.balancesPath = strings.TrimSpace(a.openVals.Balances)
		a.pending = a.openVals.Path
		a.opening = true
		return a, tea.Batch(loadInputCmd(a.pending, a.balancesPath), a.spinner.Tick)

	case huh.StateAborted:
		a.openForm = nil
		if !a.loaded {
			return a, tea.Quit
		}
		a.loadErr = nil
		return a, nil
	}

	return a, cmd
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	vals := tui.NewSetupValues(cfg)
	// Aliases such as "b" would leave the select without a match.
	if m, err := model.ParseWeightingMode(vals.Weighting); err == nil {
		vals.Weighting = m.String()
	}
	if m, err := model.ParseProjectionMode(vals.Projection); err == nil {
		vals.Projection = m.String()
	}

	summary := ""
	if files, _ := source.ScanDir(cfg.DataDir()); len(files) > 0 {
		summary = fmt.Sprintf("Found %s input files in %s.",
			cli.FormatNumber(int64(len(files))), cfg.DataDir())
	}

	if err := tui.NewSetupForm(vals, summary).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing saved.")
			return nil
		}
		return err
	}

	vals.Apply(&cfg)
	if err := config.SaveTo(cfgPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", cfgPath)
	fmt.Println("  Run `runway setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

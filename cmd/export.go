package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/export"
)

var (
	flagExportOut        string
	flagExportTrajectory bool
	flagExportNoBOM      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the adjusted series (or trajectory) as CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Output CSV path (default: a dated file in export.dir)")
	exportCmd.Flags().BoolVar(&flagExportTrajectory, "trajectory", false, "Export the projected trajectory instead of the series")
	exportCmd.Flags().BoolVar(&flagExportNoBOM, "no-bom", false, "Omit the UTF-8 byte order mark")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	parsed, res, err := compute()
	if err != nil {
		return err
	}

	out := flagExportOut
	if out == "" {
		out = filepath.Join(cfg.ExportDir(), defaultExportName(parsed.Input.Source, flagExportTrajectory))
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	opts := export.Options{BOM: cfg.Export.BOM && !flagExportNoBOM}
	if err := export.WriteFile(out, res, flagExportTrajectory, opts); err != nil {
		return err
	}

	if !flagQuiet {
		what := fmt.Sprintf("%d periods", len(res.Adjusted))
		if flagExportTrajectory {
			what = fmt.Sprintf("%d trajectory steps", len(res.Projection.Trajectory))
		}
		fmt.Fprintf(os.Stderr, "  Wrote %s to %s\n", what, out)
	}
	return nil
}

func defaultExportName(source string, trajectory bool) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "runway"
	}
	kind := "series"
	if trajectory {
		kind = "trajectory"
	}
	return fmt.Sprintf("%s-%s-%s.csv", base, kind, time.Now().Format("20060102"))
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Month-by-month balance trajectory",
	RunE:  runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

func runProject(_ *cobra.Command, _ []string) error {
	_, res, err := compute()
	if err != nil {
		return err
	}

	proj := res.Projection

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TRAJECTORY  %s", cli.FormatScenario(res.Options.Scenario))))
	fmt.Println()

	if len(proj.Trajectory) == 0 {
		fmt.Println(cli.RenderMuted("  No trajectory: the series has no start balance or mean delta."))
		fmt.Println()
		fmt.Println(cli.RenderVerdict(res.Verdict))
		return nil
	}

	crossing := -1
	if res.Verdict.MonthIndex != nil && proj.Mode == model.ProjectionExtrapolate {
		crossing = *res.Verdict.MonthIndex
	}

	rows := make([][]string, 0, len(proj.Trajectory))
	for k, bal := range proj.Trajectory {
		mark := ""
		switch {
		case k == crossing:
			mark = "◀ shortfall"
		case bal <= 0:
			mark = "·"
		}
		rows = append(rows, []string{strconv.Itoa(k), amount(bal), mark})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Mean delta %s per month", cfg.FormatAmount(cli.FormatSigned(proj.MeanDelta))),
		Headers: []string{"Month", "Balance", ""},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Println(cli.RenderVerdict(res.Verdict))
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Period series, projection and shortfall verdict",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	parsed, res, err := compute()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CASH RUNWAY  %s", parsed.Input.Source)))
	fmt.Println()

	rows := make([][]string, 0, len(res.Adjusted))
	for _, am := range res.Adjusted {
		rows = append(rows, []string{
			am.Label,
			strconv.Itoa(am.ValidItems),
			cli.FormatProductivity(am.Productivity),
			cli.FormatProductivity(am.AdjustedProductivity),
			cli.FormatOptional(am.CashEnd),
			cli.FormatSigned(am.CashDelta),
			cli.FormatSigned(am.AdjustedCashDelta),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Periods  %s weighting", res.Options.Weighting),
		Headers: []string{"Period", "Items", "TP/LT", "Adj TP/LT", "Cash end", "Delta", "Adj delta"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Projection",
		Headers: []string{"Metric", "Value"},
		Rows:    projectionRows(res),
	}))

	if spark := trajectorySparkline(res.Projection); spark != "" {
		fmt.Println()
		fmt.Printf("  Balance  %s\n", spark)
	}

	fmt.Println()
	fmt.Println(cli.RenderVerdict(res.Verdict))

	if res.Excluded > 0 && !flagQuiet {
		fmt.Fprintf(os.Stderr, "\n  %d of %d items excluded (non-positive TP, LT or quantity)\n",
			res.Excluded, res.ItemCount)
	}
	return nil
}

func projectionRows(res *pipeline.Result) [][]string {
	proj := res.Projection
	rows := [][]string{
		{"Mode", proj.Mode.String()},
		{"Scenario", cli.FormatScenario(res.Options.Scenario)},
		{"---"},
		{"Start balance", amountOpt(proj.StartBalance)},
		{"Mean delta", cfg.FormatAmount(cli.FormatSigned(proj.MeanDelta))},
	}
	if end, ok := proj.EndBalance(); ok {
		rows = append(rows, []string{fmt.Sprintf("Balance in %d months", pipeline.Horizon), amount(end)})
	}
	rows = append(rows,
		[]string{"Runway", cli.FormatMonths(proj.RunwayMonths)},
		[]string{"Shortfall", cli.FormatMonthIndex(res.Verdict.MonthIndex)},
	)
	return rows
}

func trajectorySparkline(proj pipeline.Projection) string {
	if len(proj.Trajectory) == 0 {
		return ""
	}
	return cli.RenderSparkline(proj.Trajectory)
}

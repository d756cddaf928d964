package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Compare improvement presets side by side",
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(_ *cobra.Command, _ []string) error {
	_, res, err := compute()
	if err != nil {
		return err
	}

	scenarios := cfg.Presets()
	active := res.Options.Scenario
	if !active.IsBase() && !containsScenario(scenarios, active) {
		scenarios = append(scenarios, active)
	}
	outcomes := pipeline.CompareScenarios(res.Series, res.Options.Projection, scenarios)

	fmt.Println()
	fmt.Println(cli.RenderTitle("SCENARIOS"))
	fmt.Println()

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			rows = append(rows, []string{o.Scenario.Name, cli.FormatRate(o.Scenario.ImprovementRate),
				amount(o.Scenario.CashInjection), cli.Placeholder, cli.Placeholder, cli.Placeholder, "error"})
			continue
		}
		end := cli.Placeholder
		if v, ok := o.Projection.EndBalance(); ok {
			end = amount(v)
		}
		rows = append(rows, []string{
			o.Scenario.Name,
			cli.FormatRate(o.Scenario.ImprovementRate),
			amount(o.Scenario.CashInjection),
			cli.FormatSigned(o.Projection.MeanDelta),
			end,
			cli.FormatMonthIndex(o.Verdict.MonthIndex),
			o.Verdict.Tier.String(),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("%s projection", res.Options.Projection),
		Headers: []string{"Scenario", "Rate", "Injection", "Mean delta", "End balance", "Shortfall", "Tier"},
		Rows:    rows,
	}))

	// Regression what-if for the active scenario.
	fit, err := pipeline.FitSeries(res.Series)
	if err != nil {
		fmt.Println()
		fmt.Println(cli.RenderMuted("  Trend line unavailable: " + err.Error()))
		return nil
	}
	base := pipeline.MeanProductivity(pipeline.Adjust(res.Series, model.BaseScenario()))
	adjusted := pipeline.MeanProductivity(res.Adjusted)

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Trend what-if  " + cli.FormatScenario(active),
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Fit", fmt.Sprintf("delta = %.2f × TP/LT %+.2f (%d points)", fit.Slope, fit.Intercept, fit.Points)},
			{"Mean TP/LT", cli.FormatProductivity(base) + " → " + cli.FormatProductivity(adjusted)},
			{"Implied delta", amount(pipeline.ImpliedDelta(fit, base)) + " → " + amount(pipeline.ImpliedDelta(fit, adjusted))},
		},
	}))
	return nil
}

func containsScenario(list []model.Scenario, sc model.Scenario) bool {
	for _, s := range list {
		if s.ImprovementRate == sc.ImprovementRate && s.CashInjection == sc.CashInjection {
			return true
		}
	}
	return false
}

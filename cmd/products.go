package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var flagProductsTop int

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Per-product TP and TP/LT statistics",
	RunE:  runProducts,
}

func init() {
	productsCmd.Flags().IntVarP(&flagProductsTop, "top", "n", 0, "Show only the top N products by mean TP/LT")
	rootCmd.AddCommand(productsCmd)
}

func runProducts(_ *cobra.Command, _ []string) error {
	opts, err := engineOptions()
	if err != nil {
		return err
	}
	parsed, err := loadInput()
	if err != nil {
		return err
	}

	stats := pipeline.ProductStatistics(parsed.Input, opts.Weighting)
	if len(stats) == 0 {
		fmt.Println("\n  No included items in this input.")
		return nil
	}
	if flagProductsTop > 0 && flagProductsTop < len(stats) {
		stats = stats[:flagProductsTop]
	}

	trends := make(map[string][]float64)
	for _, tr := range pipeline.ProductTrends(parsed.Input, opts.Weighting) {
		vals := make([]float64, len(tr.Points))
		for i, p := range tr.Points {
			vals[i] = p.Productivity
		}
		trends[tr.Product] = vals
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PRODUCTS  %s weighting", opts.Weighting)))
	fmt.Println()

	rows := make([][]string, 0, len(stats))
	for _, ps := range stats {
		rows = append(rows, []string{
			ps.Product,
			strconv.Itoa(ps.Count),
			cli.FormatNumber(int64(ps.Quantity)),
			cli.FormatAmount(ps.Throughput.Mean),
			cli.FormatProductivity(ps.Productivity.Mean),
			cli.FormatProductivity(ps.Productivity.Min),
			cli.FormatProductivity(ps.Productivity.Max),
			cli.FormatProductivity(ps.Productivity.Std),
			cli.RenderSparkline(trends[ps.Product]),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Product", "Items", "Qty", "Mean TP", "TP/LT", "Min", "Max", "Std", "Trend"},
		Rows:    rows,
	}))
	return nil
}

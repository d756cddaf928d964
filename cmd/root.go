// Package cmd implements the runway CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
)

var (
	flagInput      string
	flagBalances   string
	flagWeighting  string
	flagProjection string
	flagImprove    string
	flagInject     float64
	flagConfig     string
	flagLogLevel   string
	flagQuiet      bool
)

// cfg is the resolved configuration: file, then .env and environment, then flags.
var (
	cfg     = config.DefaultConfig()
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "runway",
	Short: "TP/LT cash-runway projection",
	Long: "Project when cash runs out from throughput, lead time and period balances,\n" +
		"and see how TP/LT improvements move the shortfall.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runReport,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagInput, "input", "i", "", "Input file (.csv or .toml); newest file in the data directory when empty")
	rootCmd.PersistentFlags().StringVar(&flagBalances, "balances", "", "Separate cash balance file merged by period label")
	rootCmd.PersistentFlags().StringVar(&flagWeighting, "weighting", "", "Weighting mode: quantity, throughput or shipped")
	rootCmd.PersistentFlags().StringVar(&flagProjection, "projection", "", "Projection mode: extrapolate or detect")
	rootCmd.PersistentFlags().StringVar(&flagImprove, "improve", "", "TP/LT improvement rate in percent, or a preset name")
	rootCmd.PersistentFlags().Float64Var(&flagInject, "inject", 0, "Cash injection spread evenly over the periods")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// setup resolves configuration and logging before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfgPath = flagConfig
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}
	loaded, err := config.LoadFrom(cfgPath)
	if err != nil {
		return err
	}
	cfg = loaded
	config.ApplyEnv(&cfg)

	level := cfg.General.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return logging.SetLevel(level)
}

// engineOptions merges the configured modes and scenario with the flags.
func engineOptions() (pipeline.Options, error) {
	var opts pipeline.Options
	var err error

	if flagWeighting != "" {
		opts.Weighting, err = model.ParseWeightingMode(flagWeighting)
	} else {
		opts.Weighting, err = cfg.Weighting()
	}
	if err != nil {
		return opts, err
	}

	if flagProjection != "" {
		opts.Projection, err = model.ParseProjectionMode(flagProjection)
	} else {
		opts.Projection, err = cfg.Projection()
	}
	if err != nil {
		return opts, err
	}

	opts.Scenario, err = scenarioFromFlags()
	return opts, err
}

func scenarioFromFlags() (model.Scenario, error) {
	injectSet := rootCmd.PersistentFlags().Changed("inject")
	if flagImprove == "" && !injectSet {
		return cfg.DefaultScenario(), nil
	}

	sc := cfg.DefaultScenario()
	if flagImprove != "" {
		if preset, ok := cfg.LookupPreset(flagImprove); ok {
			sc = preset
		} else {
			rate, err := config.ParsePercent(flagImprove)
			if err != nil {
				return sc, fmt.Errorf("--improve: %w", err)
			}
			sc = model.Scenario{Name: "custom", ImprovementRate: rate, CashInjection: sc.CashInjection}
		}
	}
	if injectSet {
		sc.CashInjection = flagInject
		sc.Name = "custom"
	}
	if sc.IsBase() {
		sc.Name = "base"
	}
	return sc, nil
}

var errNoInput = errors.New("no input file found; pass --input or set general.data_dir")

// inputPath is --input, or the newest input file in the data directory.
func inputPath() (string, error) {
	if flagInput != "" {
		return flagInput, nil
	}

	dir := cfg.DataDir()
	files, err := source.ScanDir(dir)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return "", errNoInput
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Using %s (newest of %d files in %s)\n", files[0].Name, len(files), dir)
	}
	return files[0].Path, nil
}

// loadInput is the shared data loading path used by all commands.
func loadInput() (*source.ParseResult, error) {
	path, err := inputPath()
	if err != nil {
		return nil, err
	}

	res, err := source.LoadWithBalances(path, flagBalances)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Read %s rows (%s layout, %s)",
			cli.FormatNumber(int64(res.Rows)), res.Layout, res.Encoding)
		if res.SkippedRows > 0 {
			fmt.Fprintf(os.Stderr, ", skipped %d without a period", res.SkippedRows)
		}
		fmt.Fprintln(os.Stderr)
	}
	return res, nil
}

// compute loads the input and runs the engine with the resolved options.
func compute() (*source.ParseResult, *pipeline.Result, error) {
	opts, err := engineOptions()
	if err != nil {
		return nil, nil, err
	}
	parsed, err := loadInput()
	if err != nil {
		return nil, nil, err
	}
	res, err := pipeline.Run(parsed.Input, opts)
	if err != nil {
		return parsed, nil, err
	}
	return parsed, res, nil
}

func amount(v float64) string {
	return cfg.FormatAmount(cli.FormatAmount(v))
}

func amountOpt(v *float64) string {
	if v == nil {
		return cli.Placeholder
	}
	return amount(*v)
}

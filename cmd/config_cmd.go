package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
)

var flagConfigTOML bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigTOML, "toml", false, "Print the resolved configuration as TOML")
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagConfigTOML {
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	}

	fmt.Printf("  Config file: %s\n", cfgPath)
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	opts, err := engineOptions()
	if err != nil {
		return err
	}

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", cfg.DataDir())
	if cfg.General.UnitLabel != "" {
		fmt.Printf("    Unit label:     %s\n", cfg.General.UnitLabel)
	}
	fmt.Printf("    Log level:      %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [Engine]")
	fmt.Printf("    Weighting:  %s  (%s)\n", opts.Weighting, opts.Weighting.Description())
	fmt.Printf("    Projection: %s  (%s)\n", opts.Projection, opts.Projection.Description())
	fmt.Printf("    Scenario:   %s\n", cli.FormatScenario(opts.Scenario))
	fmt.Println()

	fmt.Println("  [Scenario presets]")
	for _, sc := range cfg.Presets() {
		fmt.Printf("    %-10s %s\n", sc.Name, cli.FormatScenario(sc))
	}
	fmt.Println()

	fmt.Println("  [Export]")
	fmt.Printf("    Directory: %s\n", cfg.ExportDir())
	fmt.Printf("    BOM:       %v\n", cfg.Export.BOM)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Printf("  Environment overrides: %s, %s, %s, %s\n",
		config.EnvWeighting, config.EnvProjection, config.EnvLogLevel, config.EnvDataDir)
	fmt.Println("  Run `runway setup` to reconfigure.")
	return nil
}

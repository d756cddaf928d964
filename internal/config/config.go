// Package config loads runway settings from TOML, .env files, and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"

	"github.com/theirongolddev/runway/internal/model"
)

// Environment variables that override file settings.
const (
	EnvWeighting  = "RUNWAY_WEIGHTING"
	EnvProjection = "RUNWAY_PROJECTION"
	EnvLogLevel   = "RUNWAY_LOG_LEVEL"
	EnvDataDir    = "RUNWAY_DATA_DIR"
)

// Config holds all runway configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Engine     EngineConfig     `toml:"engine"`
	Scenario   ScenarioConfig   `toml:"scenario"`
	Export     ExportConfig     `toml:"export"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir   string `toml:"data_dir,omitempty"`
	UnitLabel string `toml:"unit_label,omitempty"`
	LogLevel  string `toml:"log_level"`
}

// EngineConfig selects the computation modes.
type EngineConfig struct {
	Weighting  string `toml:"weighting"`
	Projection string `toml:"projection"`
}

// ScenarioConfig holds the default sensitivity scenario and extra presets.
// Rates are fractions: 0.1 is +10 %.
type ScenarioConfig struct {
	ImprovementRate float64        `toml:"improvement_rate"`
	CashInjection   float64        `toml:"cash_injection"`
	Presets         []PresetConfig `toml:"presets,omitempty"`
}

// PresetConfig is one user-defined comparison scenario.
type PresetConfig struct {
	Name            string  `toml:"name"`
	ImprovementRate float64 `toml:"improvement_rate"`
	CashInjection   float64 `toml:"cash_injection"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	BOM bool   `toml:"bom"`
	Dir string `toml:"dir,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "warn",
		},
		Engine: EngineConfig{
			Weighting:  model.WeightingQuantity.String(),
			Projection: model.ProjectionExtrapolate.String(),
		},
		Export: ExportConfig{
			BOM: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := homedir.Dir()
	return filepath.Join(home, ".config", "runway")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the default config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from RUNWAY_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvWeighting)); v != "" {
		cfg.Engine.Weighting = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProjection)); v != "" {
		cfg.Engine.Projection = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.General.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
}

// DataDir returns the input directory with "~" expanded. It defaults to the
// working directory.
func (c Config) DataDir() string {
	dir := c.General.DataDir
	if dir == "" {
		return "."
	}
	if expanded, err := homedir.Expand(dir); err == nil {
		return expanded
	}
	return dir
}

// ExportDir returns the export directory with "~" expanded.
func (c Config) ExportDir() string {
	dir := c.Export.Dir
	if dir == "" {
		return "."
	}
	if expanded, err := homedir.Expand(dir); err == nil {
		return expanded
	}
	return dir
}

// Weighting parses the configured weighting mode.
func (c Config) Weighting() (model.WeightingMode, error) {
	return model.ParseWeightingMode(c.Engine.Weighting)
}

// Projection parses the configured projection mode.
func (c Config) Projection() (model.ProjectionMode, error) {
	return model.ParseProjectionMode(c.Engine.Projection)
}

// DefaultScenario is the scenario applied when no flag overrides it.
func (c Config) DefaultScenario() model.Scenario {
	sc := model.Scenario{
		Name:            "configured",
		ImprovementRate: c.Scenario.ImprovementRate,
		CashInjection:   c.Scenario.CashInjection,
	}
	if sc.IsBase() {
		sc.Name = "base"
	}
	return sc
}

// FormatAmount appends the configured unit label, if any.
func (c Config) FormatAmount(s string) string {
	if c.General.UnitLabel == "" {
		return s
	}
	return s + " " + c.General.UnitLabel
}

// ParsePercent parses a percentage such as "10", "+10%" or "-5.5" into a
// fraction.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	return v / 100, nil
}

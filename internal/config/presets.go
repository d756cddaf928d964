package config

import (
	"strings"

	"github.com/theirongolddev/runway/internal/model"
)

// DefaultPresets are the built-in comparison scenarios.
var DefaultPresets = []model.Scenario{
	{Name: "base"},
	{Name: "light", ImprovementRate: 0.10},
	{Name: "medium", ImprovementRate: 0.20},
	{Name: "high", ImprovementRate: 0.30},
}

// Presets returns the built-in scenarios followed by the configured ones.
// A configured preset with a built-in name replaces it in place.
func (c Config) Presets() []model.Scenario {
	out := make([]model.Scenario, len(DefaultPresets))
	copy(out, DefaultPresets)

	pos := make(map[string]int, len(out))
	for i, sc := range out {
		pos[sc.Name] = i
	}

	for _, p := range c.Scenario.Presets {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		sc := model.Scenario{
			Name:            name,
			ImprovementRate: p.ImprovementRate,
			CashInjection:   p.CashInjection,
		}
		if i, ok := pos[strings.ToLower(name)]; ok {
			out[i] = sc
			continue
		}
		pos[strings.ToLower(name)] = len(out)
		out = append(out, sc)
	}
	return out
}

// LookupPreset finds a scenario by name, case-insensitively.
func (c Config) LookupPreset(name string) (model.Scenario, bool) {
	for _, sc := range c.Presets() {
		if strings.EqualFold(sc.Name, name) {
			return sc, true
		}
	}
	return model.Scenario{}, false
}

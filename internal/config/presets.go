package config

import (
	"sort"

	"github.com/san-kum/simrec/internal/episode"
)

type Preset struct {
	Description string
	Scenario    episode.Scenario
}

func scenario(slope, targetX episode.Range) episode.Scenario {
	sc := episode.DefaultScenario()
	sc.SlopeRange = slope
	sc.TargetX = targetX
	return sc
}

var Presets = map[string]Preset{
	"default": {
		Description: "slope in [-0.25, 0.75), target x in [0, 0.8)",
		Scenario:    episode.DefaultScenario(),
	},
	"steep": {
		Description: "steep approach lines, slope in [0.5, 0.75)",
		Scenario:    scenario(episode.Range{0.5, 0.75}, episode.Range{0, 0.8}),
	},
	"shallow": {
		Description: "nearly horizontal lines, slope in [-0.1, 0.1)",
		Scenario:    scenario(episode.Range{-0.1, 0.1}, episode.Range{0, 0.8}),
	},
	"near_miss": {
		Description: "target close to the anchor, x in [0.6, 0.8)",
		Scenario:    scenario(episode.Range{-0.25, 0.75}, episode.Range{0.6, 0.8}),
	},
}

// GetPreset returns the default configuration with the preset's scenario,
// or nil for an unknown name.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Scenario = p.Scenario
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

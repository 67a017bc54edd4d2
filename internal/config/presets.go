package config

import "sort"

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"stable": {
		Dynamics: ModelConfig{X1Dot: "-x1 + x2", X2Dot: "-x1 - x2 + u"},
		LQR:      DefaultConfig().LQR,
		Workers:  DefaultWorkers,
	},
	"uncontrollable": {
		Dynamics: ModelConfig{X1Dot: "x1 - x1^3", X2Dot: "-x2 + u"},
		LQR:      DefaultConfig().LQR,
		Workers:  DefaultWorkers,
	},
	"inconsistent": {
		Dynamics: ModelConfig{X1Dot: "x1 + x2", X2Dot: "x1 + x2 + 1"},
		LQR:      DefaultConfig().LQR,
		Workers:  DefaultWorkers,
	},
	"pitchfork": {
		Dynamics: ModelConfig{
			X1Dot:  "mu*x1 - x1^3 + x2",
			X2Dot:  "-x2 + u",
			Params: map[string]Rational{"mu": NewRational(2, 1)},
		},
		LQR:     DefaultConfig().LQR,
		Workers: DefaultWorkers,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

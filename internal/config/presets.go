package config

import "sort"

var Presets = map[string]*Config{
	"soft": {
		Lattice:    LatticeConfig{Size: 6, Spacing: 1.0, Anchor: "center"},
		Physics:    PhysicsConfig{SpringConstant: 4.0, Mass: 1.0, Damping: 0.2, StepRate: 50},
		Integrator: "symplectic", Workers: 1, Duration: 10.0,
		Perturb: PerturbConfig{StretchX: 0.1},
	},
	"stiff": {
		Lattice:    LatticeConfig{Size: 6, Spacing: 1.0, Anchor: "center"},
		Physics:    PhysicsConfig{SpringConstant: 80.0, Mass: 1.0, Damping: 0.5, StepRate: 200},
		Integrator: "symplectic", Workers: 1, Duration: 5.0,
		Perturb: PerturbConfig{StretchX: 0.05, StretchY: 0.05},
	},
	"drop": {
		Lattice:    LatticeConfig{Size: 8, Spacing: 1.0, Anchor: "center"},
		Physics:    PhysicsConfig{SpringConstant: 10.0, Mass: 1.0, Damping: 0.3, StepRate: 50},
		Integrator: "symplectic", Workers: 1, Duration: 20.0,
		DropTest: DropTestConfig{Enabled: true, Threshold: 0.05, Interval: 2.0, Impulse: 3.0},
	},
	"tiny": {
		Lattice:    LatticeConfig{Size: 3, Spacing: 1.0, Anchor: "corner"},
		Physics:    PhysicsConfig{SpringConstant: 10.0, Mass: 1.0, StepRate: 50},
		Integrator: "euler", Workers: 1, Duration: 2.0,
		Perturb: PerturbConfig{StretchX: 0.1},
	},
}

// GetPreset returns a copy so callers may override fields.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.DropTest.Threshold == 0 {
		cfg.DropTest = DefaultConfig().DropTest
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

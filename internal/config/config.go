package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/lattice"
)

const (
	DefaultSize           = 10
	DefaultSpacing        = 1.0
	DefaultSpringConstant = 10.0
	DefaultStepRate       = 50.0
	DefaultMass           = 1.0
	DefaultDuration       = 10.0
	DefaultThreshold      = 0.05
	DefaultDropInterval   = 2.0
	DefaultImpulse        = 3.0
)

type Config struct {
	Lattice    LatticeConfig  `yaml:"lattice"`
	Physics    PhysicsConfig  `yaml:"physics"`
	Integrator string         `yaml:"integrator"`
	Workers    int            `yaml:"workers"`
	Duration   float64        `yaml:"duration"`
	Perturb    PerturbConfig  `yaml:"perturb"`
	DropTest   DropTestConfig `yaml:"drop_test"`
}

type LatticeConfig struct {
	Size    int     `yaml:"size"`
	Spacing float64 `yaml:"spacing"`
	Anchor  string  `yaml:"anchor"`
}

type PhysicsConfig struct {
	SpringConstant float64    `yaml:"spring_constant"`
	Mass           float64    `yaml:"mass"`
	Damping        float64    `yaml:"damping"`
	Gravity        [3]float64 `yaml:"gravity"`
	StepRate       float64    `yaml:"step_rate"`
}

// PerturbConfig deforms the body before the first step. Stretch is a
// fractional strain per axis; Jitter is a random displacement amplitude in
// units of spacing.
type PerturbConfig struct {
	StretchX float64 `yaml:"stretch_x"`
	StretchY float64 `yaml:"stretch_y"`
	StretchZ float64 `yaml:"stretch_z"`
	Jitter   float64 `yaml:"jitter"`
	Seed     int64   `yaml:"seed"`
}

type DropTestConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
	Interval  float64 `yaml:"interval"`
	Impulse   float64 `yaml:"impulse"`
}

func DefaultConfig() *Config {
	return &Config{
		Lattice: LatticeConfig{
			Size:    DefaultSize,
			Spacing: DefaultSpacing,
			Anchor:  lattice.AnchorCenter.String(),
		},
		Physics: PhysicsConfig{
			SpringConstant: DefaultSpringConstant,
			Mass:           DefaultMass,
			StepRate:       DefaultStepRate,
		},
		Integrator: "symplectic",
		Workers:    1,
		Duration:   DefaultDuration,
		DropTest: DropTestConfig{
			Threshold: DefaultThreshold,
			Interval:  DefaultDropInterval,
			Impulse:   DefaultImpulse,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dynamo converts the file layout into the simulator configuration.
func (c *Config) Dynamo() (dynamo.Config, error) {
	anchor, err := lattice.ParseAnchor(c.Lattice.Anchor)
	if err != nil {
		return dynamo.Config{}, err
	}
	d := dynamo.DefaultConfig()
	d.Size = c.Lattice.Size
	d.Spacing = c.Lattice.Spacing
	d.Anchor = anchor
	d.SpringConstant = c.Physics.SpringConstant
	d.Mass = c.Physics.Mass
	d.Damping = c.Physics.Damping
	d.Gravity = mgl64.Vec3(c.Physics.Gravity)
	d.StepRate = c.Physics.StepRate
	d.Workers = c.Workers
	return d, d.Validate()
}

func (p PerturbConfig) Stretch() mgl64.Vec3 {
	return mgl64.Vec3{p.StretchX, p.StretchY, p.StretchZ}
}

func (p PerturbConfig) IsZero() bool {
	return p.StretchX == 0 && p.StretchY == 0 && p.StretchZ == 0 && p.Jitter == 0
}

package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springlattice/internal/lattice"
)

// Params are the per-mass physical constants an integrator needs.
type Params struct {
	Mass    float64
	Damping float64
	Gravity mgl64.Vec3
}

// Integrator advances velocity and position from the accumulated forces.
type Integrator interface {
	Name() string
	Integrate(l *lattice.Lattice, p Params, dt float64)
}

// Reading is what a step publishes.
type Reading struct {
	Step               int
	Time               float64
	AverageCompression float64
	Samples            int
	LiveMasses         int
	Degenerate         int
}

// Metric accumulates a run-level statistic from each step.
type Metric interface {
	Name() string
	Observe(l *lattice.Lattice, r Reading)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(l *lattice.Lattice, r Reading)
}

// Sink receives every published reading.
type Sink interface {
	Publish(r Reading)
}

type Config struct {
	Size           int
	Spacing        float64
	SpringConstant float64
	StepRate       float64
	Mass           float64
	Damping        float64
	Gravity        mgl64.Vec3
	Origin         mgl64.Vec3
	Anchor         lattice.Anchor
	Workers        int
	ValidateState  bool
}

func DefaultConfig() Config {
	return Config{
		Size:           10,
		Spacing:        1.0,
		SpringConstant: 10.0,
		StepRate:       50.0,
		Mass:           1.0,
		Anchor:         lattice.AnchorCenter,
		Workers:        1,
		ValidateState:  true,
	}
}

// Dt is the fixed step interval.
func (c Config) Dt() float64 { return 1 / c.StepRate }

func (c Config) Params() Params {
	return Params{Mass: c.Mass, Damping: c.Damping, Gravity: c.Gravity}
}

// Validate checks everything Build does not.
func (c Config) Validate() error {
	if c.StepRate <= 0 || math.IsNaN(c.StepRate) || math.IsInf(c.StepRate, 0) {
		return fmt.Errorf("%w: step rate must be positive, got %v", ErrInvalidConfiguration, c.StepRate)
	}
	if c.Mass <= 0 || math.IsNaN(c.Mass) {
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidConfiguration, c.Mass)
	}
	if c.Damping < 0 || math.IsNaN(c.Damping) {
		return fmt.Errorf("%w: damping must be non-negative, got %v", ErrInvalidConfiguration, c.Damping)
	}
	if math.IsNaN(c.SpringConstant) || math.IsInf(c.SpringConstant, 0) {
		return fmt.Errorf("%w: spring constant must be finite", ErrInvalidConfiguration)
	}
	return nil
}

type Result struct {
	Times       []float64
	Compression []float64
	Metrics     map[string]float64
	StepsTaken  int
	Errors      []error
}

package dynamo

import (
	"errors"
	"fmt"

	"github.com/san-kum/springlattice/internal/lattice"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfiguration indicates a config that cannot build a lattice.
	ErrInvalidConfiguration = lattice.ErrInvalidConfiguration

	// ErrEmptyLattice indicates every mass has been removed.
	ErrEmptyLattice = lattice.ErrEmptyLattice

	// ErrNoSamples indicates a step that produced no spring links.
	ErrNoSamples = errors.New("dynamo: no compression samples")

	// ErrDegenerateSpring marks a link whose endpoints coincide. It is
	// recovered inside the force pass and only counted.
	ErrDegenerateSpring = errors.New("dynamo: degenerate spring (coincident endpoints)")

	// ErrInvalidState indicates a NaN or Inf position or velocity.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

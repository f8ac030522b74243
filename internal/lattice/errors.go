package lattice

import "errors"

var (
	// ErrInvalidConfiguration indicates a size or spacing that cannot form a lattice.
	ErrInvalidConfiguration = errors.New("lattice: invalid configuration")

	// ErrEmptyLattice indicates an operation that needs at least one live mass.
	ErrEmptyLattice = errors.New("lattice: no live masses")
)

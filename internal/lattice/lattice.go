package lattice

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Anchor selects where the lattice sits relative to the build origin.
type Anchor int

const (
	// AnchorCenter places the geometric center of the lattice on the origin.
	AnchorCenter Anchor = iota
	// AnchorCorner places mass (0,0,0) on the origin.
	AnchorCorner
)

// ParseAnchor maps a config name to an Anchor.
func ParseAnchor(name string) (Anchor, error) {
	switch name {
	case "", "center":
		return AnchorCenter, nil
	case "corner":
		return AnchorCorner, nil
	default:
		return AnchorCenter, fmt.Errorf("%w: unknown anchor %q", ErrInvalidConfiguration, name)
	}
}

func (a Anchor) String() string {
	if a == AnchorCorner {
		return "corner"
	}
	return "center"
}

// PointMass is one node of the body. Position is relative to the lattice frame.
type PointMass struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Force    mgl64.Vec3
	Live     bool
}

// Placement pairs a coordinate with a world position.
type Placement struct {
	Coord    Coord
	Position mgl64.Vec3
}

// Lattice is a size³ arena of point masses at fixed spacing.
type Lattice struct {
	size    int
	spacing float64
	origin  mgl64.Vec3
	points  []PointMass
	live    int
}

// Build allocates a size³ lattice with zero velocity on a regular grid.
func Build(size int, spacing float64, origin mgl64.Vec3, anchor Anchor) (*Lattice, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size must be >= 1, got %d", ErrInvalidConfiguration, size)
	}
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		return nil, fmt.Errorf("%w: spacing must be positive and finite, got %v", ErrInvalidConfiguration, spacing)
	}

	var start mgl64.Vec3
	if anchor == AnchorCenter {
		half := float64(size-1) * spacing / 2
		start = mgl64.Vec3{-half, -half, -half}
	}

	l := &Lattice{
		size:    size,
		spacing: spacing,
		origin:  origin,
		points:  make([]PointMass, size*size*size),
		live:    size * size * size,
	}

	for i := range l.points {
		c := l.CoordOf(i)
		l.points[i] = PointMass{
			Position: start.Add(mgl64.Vec3{float64(c.X), float64(c.Y), float64(c.Z)}.Mul(spacing)),
			Live:     true,
		}
	}

	return l, nil
}

func (l *Lattice) Size() int              { return l.size }
func (l *Lattice) Spacing() float64       { return l.spacing }
func (l *Lattice) Len() int               { return len(l.points) }
func (l *Lattice) LiveCount() int         { return l.live }
func (l *Lattice) Origin() mgl64.Vec3     { return l.origin }
func (l *Lattice) Topology() Topology     { return Topology{size: l.size, spacing: l.spacing} }
func (l *Lattice) Point(i int) *PointMass { return &l.points[i] }

// Points exposes the arena for integrators. Callers must not change its length.
func (l *Lattice) Points() []PointMass { return l.points }

// InBounds reports whether c lies inside the lattice.
func (l *Lattice) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < l.size && c.Y >= 0 && c.Y < l.size && c.Z >= 0 && c.Z < l.size
}

// Index flattens c. It does not check bounds.
func (l *Lattice) Index(c Coord) int {
	return (c.X*l.size+c.Y)*l.size + c.Z
}

// CoordOf is the inverse of Index.
func (l *Lattice) CoordOf(i int) Coord {
	z := i % l.size
	i /= l.size
	return Coord{X: i / l.size, Y: i % l.size, Z: z}
}

// IsLive reports whether c is in bounds and its mass has not been removed.
func (l *Lattice) IsLive(c Coord) bool {
	return l.InBounds(c) && l.points[l.Index(c)].Live
}

// Remove takes a mass out of the simulation. Removing twice is a no-op.
func (l *Lattice) Remove(c Coord) bool {
	if !l.IsLive(c) {
		return false
	}
	p := &l.points[l.Index(c)]
	p.Live = false
	p.Velocity = mgl64.Vec3{}
	p.Force = mgl64.Vec3{}
	l.live--
	return true
}

// World returns the world position of mass i.
func (l *Lattice) World(i int) mgl64.Vec3 {
	return l.origin.Add(l.points[i].Position)
}

// Positions snapshots the world position of every live mass in index order.
func (l *Lattice) Positions() []Placement {
	out := make([]Placement, 0, l.live)
	for i := range l.points {
		if !l.points[i].Live {
			continue
		}
		out = append(out, Placement{Coord: l.CoordOf(i), Position: l.World(i)})
	}
	return out
}

// Displace moves the mass at c by d without touching its velocity.
func (l *Lattice) Displace(c Coord, d mgl64.Vec3) {
	if !l.IsLive(c) {
		return
	}
	p := &l.points[l.Index(c)]
	p.Position = p.Position.Add(d)
}

// ResetForces zeroes the accumulated force of every mass.
func (l *Lattice) ResetForces() {
	for i := range l.points {
		l.points[i].Force = mgl64.Vec3{}
	}
}

// Centroid returns the world-space mean position of live masses.
func (l *Lattice) Centroid() (mgl64.Vec3, error) {
	m, err := l.localMean()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return l.origin.Add(m), nil
}

func (l *Lattice) localMean() (mgl64.Vec3, error) {
	if l.live == 0 {
		return mgl64.Vec3{}, ErrEmptyLattice
	}
	var sum mgl64.Vec3
	for i := range l.points {
		if l.points[i].Live {
			sum = sum.Add(l.points[i].Position)
		}
	}
	return sum.Mul(1 / float64(l.live)), nil
}

// Recenter moves the frame origin onto the centroid of the live masses and
// shifts every live mass by the opposite amount, so world positions and the
// relative configuration stay fixed. It returns the translation applied to the
// masses. A lattice with a single live mass is left untouched.
func (l *Lattice) Recenter() (mgl64.Vec3, error) {
	if l.live == 0 {
		return mgl64.Vec3{}, ErrEmptyLattice
	}
	if l.live == 1 {
		return mgl64.Vec3{}, nil
	}

	movement, _ := l.localMean()
	l.origin = l.origin.Add(movement)
	shift := movement.Mul(-1)
	for i := range l.points {
		if l.points[i].Live {
			l.points[i].Position = l.points[i].Position.Add(shift)
		}
	}
	return shift, nil
}

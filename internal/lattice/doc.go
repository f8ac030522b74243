// Package lattice holds the point-mass arena of an elastic body.
//
// A [Lattice] is a fixed size³ cube of [PointMass] values stored in one flat
// slice and indexed by [Coord]. The package provides:
//
//   - [Build]: allocate a lattice on a regular cubic grid
//   - [Topology]: the 26-neighbor spring layout and rest lengths
//   - [Lattice.Recenter]: keep the reference frame on the body's centroid
//
// Positions are stored relative to the lattice frame origin; use
// [Lattice.World] or [Lattice.Positions] for world coordinates.
//
// # Thread Safety
//
// A Lattice is not safe for concurrent mutation. The dynamo simulator
// serializes access to the lattice it owns.
package lattice

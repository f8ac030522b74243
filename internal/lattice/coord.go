package lattice

import "fmt"

// Coord is an integer lattice coordinate in [0,size)³.
type Coord struct {
	X, Y, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add offsets c by o.
func (c Coord) Add(o Offset) Coord {
	return Coord{c.X + o.DX, c.Y + o.DY, c.Z + o.DZ}
}

// Offset is a step from one coordinate to a neighbor.
type Offset struct {
	DX, DY, DZ int
}

// Class reports how many axes the offset moves along.
func (o Offset) Class() LinkClass {
	n := 0
	for _, d := range [3]int{o.DX, o.DY, o.DZ} {
		if d != 0 {
			n++
		}
	}
	return LinkClass(n)
}

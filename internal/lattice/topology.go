package lattice

import "math"

// LinkClass is the number of axes a spring spans.
type LinkClass uint8

const (
	Axis          LinkClass = 1
	FaceDiagonal  LinkClass = 2
	SpaceDiagonal LinkClass = 3
)

func (c LinkClass) String() string {
	switch c {
	case Axis:
		return "axis"
	case FaceDiagonal:
		return "face-diagonal"
	case SpaceDiagonal:
		return "space-diagonal"
	default:
		return "none"
	}
}

// RestLength is spacing·√class.
func (c LinkClass) RestLength(spacing float64) float64 {
	return spacing * math.Sqrt(float64(c))
}

// Offsets lists the 26 neighbor steps in the order every walk uses:
// dx outermost, then dy, then dz, each from -1 to 1.
var Offsets = func() [26]Offset {
	var out [26]Offset
	n := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out[n] = Offset{dx, dy, dz}
				n++
			}
		}
	}
	return out
}()

// Neighbor is one in-bounds spring endpoint seen from a coordinate.
type Neighbor struct {
	Coord      Coord
	Index      int
	Class      LinkClass
	RestLength float64
}

// Topology derives spring links from the lattice shape. It holds no mutable
// state. It enumerates every neighbor from both endpoints, so a walk over all
// coordinates sees each spring twice; callers dedupe.
type Topology struct {
	size    int
	spacing float64
}

// NewTopology describes the links of a size³ lattice.
func NewTopology(size int, spacing float64) Topology {
	return Topology{size: size, spacing: spacing}
}

func (t Topology) Size() int        { return t.size }
func (t Topology) Spacing() float64 { return t.spacing }

// NeighborsOf returns the in-bounds neighbors of c in Offsets order.
func (t Topology) NeighborsOf(c Coord) []Neighbor {
	return t.AppendNeighbors(make([]Neighbor, 0, len(Offsets)), c)
}

// AppendNeighbors appends the in-bounds neighbors of c to dst.
func (t Topology) AppendNeighbors(dst []Neighbor, c Coord) []Neighbor {
	for _, o := range Offsets {
		n := c.Add(o)
		if n.X < 0 || n.X >= t.size || n.Y < 0 || n.Y >= t.size || n.Z < 0 || n.Z >= t.size {
			continue
		}
		class := o.Class()
		dst = append(dst, Neighbor{
			Coord:      n,
			Index:      (n.X*t.size+n.Y)*t.size + n.Z,
			Class:      class,
			RestLength: class.RestLength(t.spacing),
		})
	}
	return dst
}

// LinkCounts is the number of unique springs per class.
type LinkCounts struct {
	Axis, Face, Space int
}

func (c LinkCounts) Total() int { return c.Axis + c.Face + c.Space }

// LinkCount is the closed-form count of unique springs in a full size³ lattice.
func LinkCount(size int) LinkCounts {
	if size < 2 {
		return LinkCounts{}
	}
	n, m := size, size-1
	return LinkCounts{
		Axis:  3 * n * n * m,
		Face:  6 * n * m * m,
		Space: 4 * m * m * m,
	}
}

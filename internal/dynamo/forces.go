package dynamo

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springlattice/internal/lattice"
)

// PairFunc observes one processed spring: the two mass indices and the force
// added to a (b receives the negation).
type PairFunc func(a, b int, force mgl64.Vec3)

// Forcer computes spring forces for one step and returns its compression samples.
type Forcer interface {
	Run(l *lattice.Lattice, topo lattice.Topology, k float64) []float64
	Degenerate() int
}

type pairKey struct{ lo, hi int }

func makePairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// ForcePass is the sequential Hooke's-law walk. It keeps a processed-pair set
// so every unordered pair contributes exactly once per step even though the
// topology enumerates it from both endpoints.
type ForcePass struct {
	// OnPair, when set, is called for every processed pair.
	OnPair PairFunc

	processed  map[pairKey]struct{}
	samples    []float64
	neighbors  []lattice.Neighbor
	degenerate int
}

func NewForcePass() *ForcePass {
	return &ForcePass{processed: make(map[pairKey]struct{})}
}

// Degenerate is the number of coincident-endpoint springs seen in the last run.
func (p *ForcePass) Degenerate() int { return p.degenerate }

// Run resets forces, applies every spring once and returns the step's
// compression samples. The returned slice is reused by the next call.
func (p *ForcePass) Run(l *lattice.Lattice, topo lattice.Topology, k float64) []float64 {
	l.ResetForces()
	clear(p.processed)
	p.samples = p.samples[:0]
	p.degenerate = 0

	points := l.Points()
	for i := range points {
		if !points[i].Live {
			continue
		}
		p.neighbors = topo.AppendNeighbors(p.neighbors[:0], l.CoordOf(i))
		for _, n := range p.neighbors {
			if !points[n.Index].Live {
				continue
			}
			key := makePairKey(i, n.Index)
			if _, done := p.processed[key]; done {
				continue
			}
			p.processed[key] = struct{}{}

			force, ratio, degenerate := springForce(points[i].Position, points[n.Index].Position, n.RestLength, k)
			if degenerate {
				p.degenerate++
			}
			points[i].Force = points[i].Force.Add(force)
			points[n.Index].Force = points[n.Index].Force.Sub(force)
			p.samples = append(p.samples, ratio)

			if p.OnPair != nil {
				p.OnPair(i, n.Index, force)
			}
		}
	}

	return p.samples
}

// springForce returns the force on the endpoint at a, the compression ratio,
// and whether the endpoints coincide. Coincident endpoints have no direction,
// so they exert no force and count as fully collapsed.
func springForce(a, b mgl64.Vec3, rest, k float64) (mgl64.Vec3, float64, bool) {
	dir := b.Sub(a)
	dist := dir.Len()
	if dist == 0 {
		return mgl64.Vec3{}, 1.0, true
	}
	stretch := dist - rest
	ratio := stretch / rest
	if ratio < 0 {
		ratio = -ratio
	}
	return dir.Mul(k * stretch / dist), ratio, false
}

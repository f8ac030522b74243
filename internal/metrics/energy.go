package metrics

import (
	"math"

	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/lattice"
)

// MechanicalEnergy is kinetic energy plus spring potential ½k(d−rest)² summed
// over every unique live link.
func MechanicalEnergy(l *lattice.Lattice, k, mass float64) float64 {
	points := l.Points()
	topo := l.Topology()
	energy := 0.0

	var neighbors []lattice.Neighbor
	for i := range points {
		if !points[i].Live {
			continue
		}
		v := points[i].Velocity
		energy += 0.5 * mass * v.Dot(v)

		neighbors = topo.AppendNeighbors(neighbors[:0], l.CoordOf(i))
		for _, n := range neighbors {
			if n.Index < i || !points[n.Index].Live {
				continue
			}
			stretch := points[n.Index].Position.Sub(points[i].Position).Len() - n.RestLength
			energy += 0.5 * k * stretch * stretch
		}
	}

	return energy
}

// EnergyDrift tracks the largest relative change of mechanical energy from
// the first observed step.
type EnergyDrift struct {
	k, mass       float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(k, mass float64) *EnergyDrift {
	return &EnergyDrift{k: k, mass: mass}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(l *lattice.Lattice, _ dynamo.Reading) {
	energy := MechanicalEnergy(l, e.k, e.mass)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Current is the energy at the last observed step.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

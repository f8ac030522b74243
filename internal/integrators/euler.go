package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/lattice"
)

// Euler is the explicit method: position moves with the old velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Integrate(l *lattice.Lattice, p dynamo.Params, dt float64) {
	points := l.Points()
	for i := range points {
		if !points[i].Live {
			continue
		}
		a := acceleration(&points[i], p)
		points[i].Position = points[i].Position.Add(points[i].Velocity.Mul(dt))
		points[i].Velocity = points[i].Velocity.Add(a.Mul(dt))
	}
}

// acceleration is F/m + g - (c/m)·v.
func acceleration(pm *lattice.PointMass, p dynamo.Params) mgl64.Vec3 {
	inv := 1 / p.Mass
	return pm.Force.Mul(inv).
		Add(p.Gravity).
		Sub(pm.Velocity.Mul(p.Damping * inv))
}

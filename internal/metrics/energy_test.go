package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/lattice"
)

func TestMechanicalEnergy_Rest(t *testing.T) {
	l, _ := lattice.Build(3, 1.0, mgl64.Vec3{}, lattice.AnchorCenter)
	if e := MechanicalEnergy(l, 10, 1); e != 0 {
		t.Errorf("expected zero energy at rest, got %v", e)
	}
}

func TestMechanicalEnergy_SingleSpring(t *testing.T) {
	l, _ := lattice.Build(2, 1.0, mgl64.Vec3{}, lattice.AnchorCorner)
	// keep only the x-axis link between (0,0,0) and (1,0,0)
	for i := 0; i < l.Len(); i++ {
		c := l.CoordOf(i)
		if c.Y != 0 || c.Z != 0 {
			l.Remove(c)
		}
	}
	l.Displace(lattice.Coord{X: 1}, mgl64.Vec3{0.5, 0, 0})
	l.Point(0).Velocity = mgl64.Vec3{0, 2, 0}

	want := 0.5*10*0.25 + 0.5*3*4
	if got := MechanicalEnergy(l, 10, 3); math.Abs(got-want) > 1e-12 {
		t.Errorf("energy %v, want %v", got, want)
	}
}

func TestEnergyDriftReset(t *testing.T) {
	l, _ := lattice.Build(2, 1.0, mgl64.Vec3{}, lattice.AnchorCorner)
	m := NewEnergyDrift(10, 1)

	l.Displace(lattice.Coord{X: 1}, mgl64.Vec3{0.1, 0, 0})
	m.Observe(l, dynamo.Reading{})
	l.Displace(lattice.Coord{X: 1}, mgl64.Vec3{0.1, 0, 0})
	m.Observe(l, dynamo.Reading{})

	if m.Value() == 0 {
		t.Error("expected non-zero drift")
	}
	if m.Current() == 0 {
		t.Error("expected non-zero current energy")
	}

	m.Reset()
	if m.Value() != 0 || m.Current() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestCompressionMetrics(t *testing.T) {
	mean := NewMeanCompression()
	peak := NewPeakCompression()
	stab := NewStability(0.15)

	for _, v := range []float64{0.1, 0.3, 0.05, 0.15} {
		r := dynamo.Reading{AverageCompression: v}
		mean.Observe(nil, r)
		peak.Observe(nil, r)
		stab.Observe(nil, r)
	}

	if math.Abs(mean.Value()-0.15) > 1e-12 {
		t.Errorf("mean %v, want 0.15", mean.Value())
	}
	if peak.Value() != 0.3 {
		t.Errorf("peak %v, want 0.3", peak.Value())
	}
	if stab.Value() != 0.75 {
		t.Errorf("stability %v, want 0.75", stab.Value())
	}

	for _, m := range []dynamo.Metric{mean, peak, stab} {
		m.Reset()
	}
	if mean.Value() != 0 || peak.Value() != 0 || stab.Value() != 1 {
		t.Error("unexpected values after reset")
	}
}

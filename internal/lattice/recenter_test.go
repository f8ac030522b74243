package lattice

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func pairwise(l *Lattice) [][]float64 {
	d := make([][]float64, l.Len())
	for i := range d {
		d[i] = make([]float64, l.Len())
		for j := range d[i] {
			d[i][j] = l.World(i).Sub(l.World(j)).Len()
		}
	}
	return d
}

func TestRecenter_PreservesShape(t *testing.T) {
	l, _ := Build(3, 1.0, mgl64.Vec3{}, AnchorCorner)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < l.Len(); i++ {
		l.Displace(l.CoordOf(i), mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}.Mul(0.3))
	}

	before := pairwise(l)
	worldBefore := make([]mgl64.Vec3, l.Len())
	for i := range worldBefore {
		worldBefore[i] = l.World(i)
	}
	centroid, _ := l.Centroid()

	shift, err := l.Recenter()
	if err != nil {
		t.Fatalf("recenter failed: %v", err)
	}
	if shift == (mgl64.Vec3{}) {
		t.Error("expected a non-zero shift for a corner-anchored lattice")
	}

	after := pairwise(l)
	for i := range before {
		for j := range before[i] {
			if diff := before[i][j] - after[i][j]; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("distance %d-%d changed by %g", i, j, diff)
			}
		}
		if !l.World(i).ApproxEqualThreshold(worldBefore[i], 1e-9) {
			t.Errorf("world position of %d moved from %v to %v", i, worldBefore[i], l.World(i))
		}
	}

	if !l.Origin().ApproxEqualThreshold(centroid, 1e-9) {
		t.Errorf("origin %v, want centroid %v", l.Origin(), centroid)
	}
	local, _ := l.localMean()
	if local.Len() > 1e-9 {
		t.Errorf("local mean %v after recenter, want zero", local)
	}
}

func TestRecenter_Idempotent(t *testing.T) {
	l, _ := Build(2, 1.0, mgl64.Vec3{3, 3, 3}, AnchorCorner)
	if _, err := l.Recenter(); err != nil {
		t.Fatal(err)
	}
	shift, err := l.Recenter()
	if err != nil {
		t.Fatal(err)
	}
	if shift.Len() > 1e-12 {
		t.Errorf("second recenter moved masses by %v", shift)
	}
}

func TestRecenter_SingleAndEmpty(t *testing.T) {
	l, _ := Build(1, 1.0, mgl64.Vec3{}, AnchorCenter)
	l.Displace(Coord{}, mgl64.Vec3{1, 0, 0})

	shift, err := l.Recenter()
	if err != nil || shift != (mgl64.Vec3{}) {
		t.Errorf("single mass: shift=%v err=%v, want identity", shift, err)
	}

	l.Remove(Coord{})
	if _, err := l.Recenter(); !errors.Is(err, ErrEmptyLattice) {
		t.Errorf("expected ErrEmptyLattice, got %v", err)
	}
	if _, err := l.Centroid(); !errors.Is(err, ErrEmptyLattice) {
		t.Errorf("expected ErrEmptyLattice from Centroid, got %v", err)
	}
}

func TestRecenter_SkipsRemoved(t *testing.T) {
	l, _ := Build(2, 1.0, mgl64.Vec3{}, AnchorCorner)
	l.Remove(Coord{0, 0, 0})
	removed := l.Point(0).Position

	if _, err := l.Recenter(); err != nil {
		t.Fatal(err)
	}
	if l.Point(0).Position != removed {
		t.Error("removed mass was translated")
	}

	want := mgl64.Vec3{4, 4, 4}.Mul(1.0 / 7)
	if !l.Origin().ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("origin %v, want %v", l.Origin(), want)
	}
}

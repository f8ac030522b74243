package lattice

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBuild_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		spacing float64
	}{
		{"zero size", 0, 1.0},
		{"negative size", -2, 1.0},
		{"zero spacing", 3, 0},
		{"negative spacing", 3, -0.5},
		{"NaN spacing", 3, math.NaN()},
		{"Inf spacing", 3, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Build(tt.size, tt.spacing, mgl64.Vec3{}, AnchorCenter)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
			if l != nil {
				t.Error("expected nil lattice on error")
			}
		})
	}
}

func TestBuild_Layout(t *testing.T) {
	origin := mgl64.Vec3{5, -2, 1}
	l, err := Build(3, 0.5, origin, AnchorCorner)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if l.Len() != 27 || l.LiveCount() != 27 {
		t.Fatalf("expected 27 live masses, got len=%d live=%d", l.Len(), l.LiveCount())
	}

	for i := 0; i < l.Len(); i++ {
		c := l.CoordOf(i)
		want := origin.Add(mgl64.Vec3{float64(c.X), float64(c.Y), float64(c.Z)}.Mul(0.5))
		if !l.World(i).ApproxEqual(want) {
			t.Errorf("mass %v at %v, want %v", c, l.World(i), want)
		}
		if l.Point(i).Velocity != (mgl64.Vec3{}) {
			t.Errorf("mass %v has non-zero initial velocity", c)
		}
	}
}

func TestBuild_CenterAnchor(t *testing.T) {
	origin := mgl64.Vec3{1, 2, 3}
	for _, size := range []int{1, 2, 3, 4} {
		l, err := Build(size, 1.0, origin, AnchorCenter)
		if err != nil {
			t.Fatalf("size %d: build failed: %v", size, err)
		}
		c, err := l.Centroid()
		if err != nil {
			t.Fatalf("size %d: centroid failed: %v", size, err)
		}
		if !c.ApproxEqualThreshold(origin, 1e-12) {
			t.Errorf("size %d: centroid %v, want %v", size, c, origin)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	l, _ := Build(4, 1.0, mgl64.Vec3{}, AnchorCorner)
	for i := 0; i < l.Len(); i++ {
		c := l.CoordOf(i)
		if !l.InBounds(c) {
			t.Fatalf("CoordOf(%d) = %v out of bounds", i, c)
		}
		if got := l.Index(c); got != i {
			t.Errorf("Index(CoordOf(%d)) = %d", i, got)
		}
	}

	// row-major: z varies fastest
	if got := l.Index(Coord{0, 0, 1}); got != 1 {
		t.Errorf("Index(0,0,1) = %d, want 1", got)
	}
	if got := l.Index(Coord{1, 0, 0}); got != 16 {
		t.Errorf("Index(1,0,0) = %d, want 16", got)
	}
}

func TestRemove(t *testing.T) {
	l, _ := Build(2, 1.0, mgl64.Vec3{}, AnchorCorner)
	c := Coord{1, 1, 1}

	if !l.Remove(c) {
		t.Fatal("expected first remove to succeed")
	}
	if l.Remove(c) {
		t.Error("expected second remove to be a no-op")
	}
	if l.IsLive(c) {
		t.Error("removed mass still live")
	}
	if l.LiveCount() != 7 {
		t.Errorf("expected 7 live masses, got %d", l.LiveCount())
	}
	if l.IsLive(Coord{2, 0, 0}) {
		t.Error("out-of-bounds coordinate reported live")
	}
	if got := len(l.Positions()); got != 7 {
		t.Errorf("expected 7 placements, got %d", got)
	}
}

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		name string
		want Anchor
		ok   bool
	}{
		{"", AnchorCenter, true},
		{"center", AnchorCenter, true},
		{"corner", AnchorCorner, true},
		{"middle", AnchorCenter, false},
	}

	for _, tt := range tests {
		got, err := ParseAnchor(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ParseAnchor(%q) err = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseAnchor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

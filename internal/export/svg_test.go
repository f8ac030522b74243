package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/springlattice/internal/lattice"
	"github.com/san-kum/springlattice/internal/viz"
)

func TestBodyToSVG(t *testing.T) {
	l, _ := lattice.Build(2, 1.0, mgl64.Vec3{}, lattice.AnchorCenter)
	edges := viz.LatticeEdges(l.Positions(), 2, 1.0)

	svg := BodyToSVG(edges, viz.NewCamera(), 400, 300, "#00ff88")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if got := strings.Count(svg, "<line "); got != 12 {
		t.Errorf("expected 12 lines, got %d", got)
	}
}

func TestTraceToSVG(t *testing.T) {
	svg := TraceToSVG([]float64{0, 1, 2}, []float64{0.1, 0.05, 0.02}, 200, 100, "#ffcc00")
	if !strings.Contains(svg, "<path") || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path: %s", svg)
	}

	if TraceToSVG([]float64{0}, []float64{1}, 200, 100, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}
	if TraceToSVG([]float64{0, 1}, []float64{1}, 200, 100, "#fff") != "" {
		t.Error("expected empty output for mismatched lengths")
	}
}

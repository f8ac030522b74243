package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/springlattice/internal/lattice"
)

// Camera orbits the body's centroid.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
	Distance   float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: 0.6, Pitch: 0.4, Zoom: 1.0, Distance: 40}
}

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = mgl64.Clamp(c.Pitch+dpitch, -math.Pi/2, math.Pi/2)
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

// Project maps a point relative to the orbit center onto a w x h dot grid.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (int, int, float64, bool) {
	rot := c.view().Mul3x1(p).Mul(c.Zoom)
	if rot.Z() >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z())
	scale := math.Min(float64(w), float64(h)) / 3.0
	sx := int(rot.X()*persp*scale) + w/2
	sy := int(-rot.Y()*persp*scale) + h/2
	return sx, sy, rot.Z(), sx >= 0 && sx < w && sy >= 0 && sy < h
}

var axisOffsets = [3]lattice.Offset{{DX: 1}, {DY: 1}, {DZ: 1}}

type Edge struct {
	A, B mgl64.Vec3
}

// LatticeEdges returns the axis links between live masses, centered on their
// mean and scaled so the body spans roughly two units.
func LatticeEdges(placements []lattice.Placement, size int, spacing float64) []Edge {
	if len(placements) == 0 {
		return nil
	}
	byCoord := make(map[lattice.Coord]mgl64.Vec3, len(placements))
	var center mgl64.Vec3
	for _, p := range placements {
		byCoord[p.Coord] = p.Position
		center = center.Add(p.Position)
	}
	center = center.Mul(1 / float64(len(placements)))

	extent := float64(size-1) * spacing
	if extent <= 0 {
		extent = spacing
	}
	norm := 2 / extent

	edges := make([]Edge, 0, len(placements)*3)
	for _, p := range placements {
		a := p.Position.Sub(center).Mul(norm)
		isolated := true
		for _, off := range axisOffsets {
			if _, ok := byCoord[p.Coord.Add(lattice.Offset{DX: -off.DX, DY: -off.DY, DZ: -off.DZ})]; ok {
				isolated = false
			}
			q, ok := byCoord[p.Coord.Add(off)]
			if !ok {
				continue
			}
			edges = append(edges, Edge{A: a, B: q.Sub(center).Mul(norm)})
			isolated = false
		}
		if isolated {
			edges = append(edges, Edge{A: a, B: a})
		}
	}
	return edges
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render draws edges back to front.
func Render(c *Canvas, edges []Edge, cam *Camera) {
	if c == nil || cam == nil {
		return
	}
	w, h := c.DotsWide(), c.DotsHigh()
	proj := make([]projectedEdge, 0, len(edges))
	for _, e := range edges {
		x1, y1, d1, v1 := cam.Project(e.A, w, h)
		x2, y2, d2, v2 := cam.Project(e.B, w, h)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}

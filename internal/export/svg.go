package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/springlattice/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// BodyToSVG draws the wireframe as seen from cam onto a width x height image.
func BodyToSVG(edges []viz.Edge, cam *viz.Camera, width, height int, strokeColor string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, "<g stroke=%q stroke-width=\"1\" fill=%q>\n", strokeColor, strokeColor)

	for _, e := range edges {
		// Off-canvas endpoints are left to the viewer's clipping.
		x1, y1, _, _ := cam.Project(e.A, width, height)
		x2, y2, _, _ := cam.Project(e.B, width, height)
		if x1 == x2 && y1 == y2 {
			fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"2\"/>\n", x1, y1)
			continue
		}
		fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", x1, y1, x2, y2)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceToSVG plots compression against time as a single path.
func TraceToSVG(times, values []float64, width, height int, strokeColor string) string {
	if len(times) < 2 || len(times) != len(values) {
		return ""
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=%q stroke-width=\"1.5\" d=\"M", strokeColor)

	for i := range times {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

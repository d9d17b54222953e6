package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/viz"
)

// Plane picks two world axes for a flat projection.
type Plane [2]int

var (
	PlaneXY = Plane{0, 1}
	PlaneXZ = Plane{0, 2}
	PlaneYZ = Plane{1, 2}
)

func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "xy", "":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "yz":
		return PlaneYZ, nil
	}
	return Plane{}, fmt.Errorf("unknown plane %q (want xy, xz or yz)", s)
}

func (p Plane) project(v dynamo.Vec3) (float64, float64) {
	return v[p[0]], v[p[1]]
}

func svgHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// CanvasToSVG draws every lit Braille dot as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, float64(canvas.DotWidth())*scale, float64(canvas.DotHeight())*scale)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	r := scale * 0.4
	for y := 0; y < canvas.DotHeight(); y++ {
		for x := 0; x < canvas.DotWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG traces the tracked position through states, projected
// onto plane and fitted to width x height with a 10% margin.
func TrajectoryToSVG(states []dynamo.State, plane Plane, width, height int, stroke string) string {
	if len(states) < 2 {
		return ""
	}

	minX, minY := plane.project(states[0].Position)
	maxX, maxY := minX, minY
	for _, s := range states {
		x, y := plane.project(s.Position)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	svgHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)

	for i, s := range states {
		px, py := plane.project(s.Position)
		x := (px - minX) / rangeX * float64(width)
		y := float64(height) - (py-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

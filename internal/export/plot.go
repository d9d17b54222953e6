package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/physics"
)

const plotDPI = 150

var axisColors = [3]color.RGBA{
	{R: 230, G: 80, B: 80, A: 255},
	{R: 80, G: 200, B: 120, A: 255},
	{R: 80, G: 140, B: 230, A: 255},
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func writePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(plotDPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return bw.Flush()
}

// LatticePNG scatters block centres on plane, darker for denser blocks.
func LatticePNG(w io.Writer, body *physics.RigidBody, plane Plane, title string) error {
	if body.Len() == 0 {
		return fmt.Errorf("lattice plot: %w", dynamo.ErrInvalidBody)
	}

	pts := make(plotter.XYs, 0, body.Len())
	densities := make([]float64, 0, body.Len())
	maxDensity := 0.0
	body.Each(func(c physics.Coord, b physics.Block) {
		x, y := plane.project(c.Vec())
		pts = append(pts, plotter.XY{X: x, Y: y})
		densities = append(densities, b.Density)
		maxDensity = math.Max(maxDensity, b.Density)
	})

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.BoxGlyph{}
	sc.GlyphStyle.Radius = vg.Points(4)
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		style := sc.GlyphStyle
		shade := 1.0
		if maxDensity > 0 {
			shade = densities[i] / maxDensity
		}
		style.Color = color.Gray{Y: uint8(200 - 170*shade)}
		return style
	}

	p := newPlot(title, axisName(plane[0]), axisName(plane[1]))
	p.Add(sc)
	return writePNG(w, p, 6, 6)
}

// ThrustPNG draws each thruster's force as a segment from its block centre.
func ThrustPNG(w io.Writer, body *physics.RigidBody, plane Plane, title string) error {
	if body.Len() == 0 {
		return fmt.Errorf("thrust plot: %w", dynamo.ErrInvalidBody)
	}

	p := newPlot(title, axisName(plane[0]), axisName(plane[1]))

	centres := make(plotter.XYs, 0, body.Len())
	var segErr error
	body.Each(func(c physics.Coord, b physics.Block) {
		x0, y0 := plane.project(c.Vec())
		centres = append(centres, plotter.XY{X: x0, Y: y0})

		f := b.Force()
		if f.Len() == 0 || segErr != nil {
			return
		}
		x1, y1 := plane.project(c.Vec().Add(f.Normalize().Mul(0.8)))
		seg, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
		if err != nil {
			segErr = err
			return
		}
		seg.LineStyle.Width = vg.Points(2)
		seg.LineStyle.Color = axisColors[0]
		p.Add(seg)
	})
	if segErr != nil {
		return segErr
	}

	sc, err := plotter.NewScatter(centres)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Radius = vg.Points(2)
	p.Add(sc)
	return writePNG(w, p, 6, 6)
}

// TrajectoryPNG plots the three position components against time.
func TrajectoryPNG(w io.Writer, states []dynamo.State, times []float64, title string) error {
	if len(states) == 0 || len(states) != len(times) {
		return fmt.Errorf("trajectory plot: %d states, %d times", len(states), len(times))
	}

	p := newPlot(title, "time", "position")
	for axis := 0; axis < 3; axis++ {
		pts := make(plotter.XYs, len(states))
		for i, s := range states {
			pts[i] = plotter.XY{X: times[i], Y: s.Position[axis]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = axisColors[axis]
		p.Add(line)
		p.Legend.Add(axisName(axis), line)
	}
	return writePNG(w, p, 8, 5)
}

func axisName(i int) string {
	return [3]string{"x", "y", "z"}[i]
}

package viz

import (
	"math"
	"sort"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/physics"
)

// Camera orbits the origin and projects world points onto a canvas.
type Camera struct {
	Distance   float64
	Pitch, Yaw float64
	Zoom       float64
	Focus      dynamo.Vec3
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Pitch: -0.5, Yaw: 0.6, Zoom: 1}
}

func (c *Camera) Orbit(dPitch, dYaw float64) {
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dPitch))
	c.Yaw += dYaw
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.05, c.Zoom/1.2) }

func (c *Camera) view(p dynamo.Vec3) dynamo.Vec3 {
	p = p.Sub(c.Focus)
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	p = dynamo.Vec3{p[0]*cy + p[2]*sy, p[1], -p[0]*sy + p[2]*cy}
	cp, sp := math.Cos(c.Pitch), math.Sin(c.Pitch)
	p = dynamo.Vec3{p[0], p[1]*cp - p[2]*sp, p[1]*sp + p[2]*cp}
	return p.Mul(c.Zoom)
}

// Project returns dot coordinates, view depth and whether the point lands
// on a canvas of sw x sh dots.
func (c *Camera) Project(p dynamo.Vec3, sw, sh int) (int, int, float64, bool) {
	v := c.view(p)
	if v[2] >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - v[2])
	unit := float64(min(sw, sh)) / 12
	x := int(math.Round(v[0]*persp*unit)) + sw/2
	y := int(math.Round(-v[1]*persp*unit)) + sh/2
	return x, y, v[2], x >= 0 && x < sw && y >= 0 && y < sh
}

type Edge struct {
	Start, End dynamo.Vec3
}

type Wireframe struct{ Edges []Edge }

func (w *Wireframe) AddEdge(s, e dynamo.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p dynamo.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }

var cubeCorners = [8]dynamo.Vec3{
	{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
	{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
}

var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// LatticeWireframe outlines every block of body as a unit cube posed by x.
// Thrusting blocks also get a line along their thrust force.
func LatticeWireframe(body *physics.RigidBody, x dynamo.State) *Wireframe {
	w := &Wireframe{}
	q := x.Orientation
	pose := func(local dynamo.Vec3) dynamo.Vec3 {
		return q.Rotate(local).Add(x.Position)
	}

	body.Each(func(c physics.Coord, b physics.Block) {
		center := c.Vec()
		for _, e := range cubeEdges {
			w.AddEdge(pose(center.Add(cubeCorners[e[0]])), pose(center.Add(cubeCorners[e[1]])))
		}
		if f := b.Force(); f.Len() > 0 {
			w.AddEdge(pose(center), pose(center.Add(f.Normalize())))
		}
	})
	return w
}

// Render3D draws the wireframe far to near.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}

	type projected struct {
		x1, y1, x2, y2 int
		depth          float64
	}

	sw, sh := c.DotWidth(), c.DotHeight()
	edges := make([]projected, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			edges = append(edges, projected{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}

	sort.SliceStable(edges, func(i, j int) bool { return edges[i].depth < edges[j].depth })
	for _, e := range edges {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}

// FitCamera centres the camera on the body and zooms so its bounding box fits.
func FitCamera(cam *Camera, body *physics.RigidBody, x dynamo.State) {
	lo, hi := body.Bounds()
	mid := lo.Vec().Add(hi.Vec()).Mul(0.5)
	cam.Focus = x.Orientation.Rotate(mid).Add(x.Position)

	extent := hi.Vec().Sub(lo.Vec()).Len() + 1
	cam.Zoom = math.Min(10, 10/extent)
}

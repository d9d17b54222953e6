package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/physics"
	"github.com/san-kum/blocksim/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a sim.Observer that redraws the body on a plain terminal,
// at most frameRate times per second.
type LiveRenderer struct {
	out       io.Writer
	name      string
	body      *physics.RigidBody
	dt        float64
	frameRate int
	lastFrame time.Time
	canvas    *viz.Canvas
	camera    *viz.Camera
	frames    int
}

func NewLiveRenderer(out io.Writer, name string, body *physics.RigidBody, dt float64, frameRate int) *LiveRenderer {
	return &LiveRenderer{
		out:       out,
		name:      name,
		body:      body,
		dt:        dt,
		frameRate: max(frameRate, 1),
		canvas:    viz.NewCanvas(60, 18),
		camera:    viz.NewCamera(),
	}
}

func (r *LiveRenderer) OnStep(x dynamo.State, l dynamo.Loads, tick int) {
	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	r.frames++

	if r.frames == 1 {
		viz.FitCamera(r.camera, r.body, x)
	}
	r.camera.Focus = x.Position

	r.canvas.Clear()
	viz.Render3D(r.canvas, viz.LatticeWireframe(r.body, x), r.camera)

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  tick=%d t=%.2f\n", r.name, tick, float64(tick)*r.dt)
	for _, line := range strings.Split(strings.TrimSuffix(r.canvas.String(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	fmt.Fprintf(&b, "  pos=(%.2f, %.2f, %.2f)  |F|=%.2f  |τ|=%.2f\n",
		x.Position[0], x.Position[1], x.Position[2], l.Force.Len(), l.Torque.Len())

	io.WriteString(r.out, b.String())
}

// Frames reports how many frames have been drawn.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) Start() { io.WriteString(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { io.WriteString(r.out, showCursor) }

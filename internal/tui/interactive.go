package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/sim"
	"github.com/san-kum/blocksim/internal/viz"
)

const (
	historyLen = 60
	orbitStep  = 0.15
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the Bubble Tea live view. It advances the simulator a few ticks
// per frame and redraws the lattice.
type Model struct {
	name     string
	sim      *sim.Simulator
	cfg      dynamo.Config
	initial  dynamo.State
	state    dynamo.State
	loads    dynamo.Loads
	tick     int
	paused   bool
	speed    float64
	camera   *viz.Camera
	history  []float64
	err      error
	quitting bool

	width  int
	height int
}

func NewModel(name string, s *sim.Simulator, x0 dynamo.State, cfg dynamo.Config) Model {
	m := Model{
		name:    name,
		sim:     s,
		cfg:     cfg,
		initial: x0,
		speed:   1,
		camera:  viz.NewCamera(),
		width:   80,
		height:  24,
	}
	m.reset()
	return m
}

func (m *Model) reset() {
	m.state = m.initial
	m.loads = dynamo.Loads{}
	m.tick = 0
	m.err = nil
	m.history = m.history[:0]
	viz.FitCamera(m.camera, m.sim.Body(), m.initial)
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) State() dynamo.State { return m.state }
func (m Model) Tick() int           { return m.tick }
func (m Model) Paused() bool        { return m.paused }
func (m Model) Speed() float64      { return m.speed }
func (m Model) Err() error          { return m.err }

// done reports whether the run reached its configured tick count.
func (m Model) done() bool {
	return m.cfg.Ticks > 0 && m.tick >= m.cfg.Ticks
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if !m.paused && m.err == nil && !m.done() {
			steps := max(1, int(m.speed))
			for i := 0; i < steps && m.err == nil && !m.done(); i++ {
				m.advance()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	next, loads, err := m.sim.Step(m.state, m.cfg.Dt)
	if err == nil && m.cfg.ValidateState && !next.IsValid() {
		err = dynamo.ErrInvalidState
	}
	if err != nil {
		m.err = &dynamo.SimulationError{
			Step:    m.tick,
			Time:    float64(m.tick) * m.cfg.Dt,
			State:   m.state,
			Wrapped: err,
		}
		return
	}
	m.state, m.loads = next, loads
	m.tick++
	m.camera.Focus = m.state.Position

	m.history = append(m.history, loads.Torque.Len())
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case " ", "space", "p":
		m.paused = !m.paused
	case "r":
		m.reset()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = math.Min(m.speed*2, 64)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 1)
	case "left", "h":
		m.camera.Orbit(0, -orbitStep)
	case "right", "l":
		m.camera.Orbit(0, orbitStep)
	case "up", "k":
		m.camera.Orbit(-orbitStep, 0)
	case "down", "j":
		m.camera.Orbit(orbitStep, 0)
	case "z":
		m.camera.ZoomIn()
	case "x":
		m.camera.ZoomOut()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	canvas := viz.NewCanvas(max(40, m.width-6), max(10, m.height-10))
	viz.Render3D(canvas, viz.LatticeWireframe(m.sim.Body(), m.state), m.camera)

	var b strings.Builder

	status := viz.StatusRunning.Render("● running")
	switch {
	case m.err != nil:
		status = viz.StatusFailed.Render("✗ failed")
	case m.done():
		status = viz.Subtle.Render("■ done")
	case m.paused:
		status = viz.StatusPaused.Render("○ paused")
	}
	fmt.Fprintf(&b, "\n   %s  %s  %s\n", viz.Title.Render(m.name), status,
		viz.Subtle.Render(fmt.Sprintf("tick %d  t=%.2f  x%.0f", m.tick, float64(m.tick)*m.cfg.Dt, m.speed)))
	if m.cfg.Ticks > 0 {
		b.WriteString("   " + viz.ProgressBar(float64(m.tick)/float64(m.cfg.Ticks), 36) + "\n")
	}
	b.WriteString("\n")

	for _, line := range strings.Split(strings.TrimSuffix(canvas.String(), "\n"), "\n") {
		b.WriteString("   " + line + "\n")
	}

	p := m.state.Position
	q := m.state.Orientation
	fmt.Fprintf(&b, "\n   %s (%.3f, %.3f, %.3f)   %s (%.3f, %.3f, %.3f, %.3f)\n",
		viz.MetricLabel.Render("pos"), p[0], p[1], p[2],
		viz.MetricLabel.Render("quat"), q.W, q.X, q.Y, q.Z)
	fmt.Fprintf(&b, "   %s   %s   %s\n",
		viz.Metric("|F|", m.loads.Force.Len()),
		viz.Metric("|τ|", m.loads.Torque.Len()),
		viz.Metric("mass", m.sim.Body().Mass()))
	fmt.Fprintf(&b, "   %s %s\n", viz.MetricLabel.Render("τ"), viz.Sparkline(m.history, 24))

	if m.err != nil {
		msg := m.err.Error()
		var simErr *dynamo.SimulationError
		if errors.As(m.err, &simErr) {
			msg = simErr.Wrapped.Error()
		}
		b.WriteString("\n   " + viz.StatusFailed.Render(msg) + "\n")
	}

	b.WriteString("\n" + viz.KeyHint.Render("   space pause  ±speed  ←↑↓→ orbit  z/x zoom  r reset  q quit") + "\n")
	return b.String()
}

// Run starts the live view in the alternate screen and blocks until quit.
func Run(name string, s *sim.Simulator, x0 dynamo.State, cfg dynamo.Config) error {
	p := tea.NewProgram(NewModel(name, s, x0, cfg), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}

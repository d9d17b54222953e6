package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3-component vector. Add, Sub, Mul (scale) and Cross come from mgl64.
type Vec3 = mgl64.Vec3

// DivVec divides every component of v by s.
func DivVec(v Vec3, s float64) Vec3 {
	return Vec3{v[0] / s, v[1] / s, v[2] / s}
}

// Finite reports whether no component of v is NaN or Inf.
func Finite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// State is the simulated body's pose in the world frame.
type State struct {
	Position    Vec3
	Orientation Quaternion
}

// NewState returns a state at position p with identity orientation.
func NewState(p Vec3) State {
	return State{Position: p, Orientation: Identity()}
}

func (s State) IsValid() bool {
	return Finite(s.Position) && s.Orientation.finite()
}

func (s State) String() string {
	p, q := s.Position, s.Orientation
	return fmt.Sprintf("position=(%.6g, %.6g, %.6g) orientation=(%.6g, %.6g, %.6g, %.6g)",
		p[0], p[1], p[2], q.W, q.X, q.Y, q.Z)
}

// Loads is the reduction of a body for one tick.
type Loads struct {
	Force  Vec3
	Torque Vec3
	Mass   float64
}

// Accelerations returns force/mass and torque/mass. Mass stands in for the
// rotational inertia tensor.
func (l Loads) Accelerations() (linear, angular Vec3, err error) {
	if !(l.Mass > 0) || math.IsInf(l.Mass, 0) {
		return Vec3{}, Vec3{}, fmt.Errorf("%w: total mass %g", ErrInvalidBody, l.Mass)
	}
	return DivVec(l.Force, l.Mass), DivVec(l.Torque, l.Mass), nil
}

type Integrator interface {
	Step(x State, l Loads, dt float64) (State, error)
}

type Config struct {
	Dt            float64
	Ticks         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		Ticks:         10,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Loads      []Loads
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return State{}
	}
	return r.States[len(r.States)-1]
}

package integrators

import (
	"github.com/san-kum/blocksim/internal/dynamo"
)

// Euler advances a body by explicit Euler. Position moves by the linear
// acceleration times dt; orientation moves by q ⊗ (0, α) scaled by
// RateScale and dt, then is renormalized.
//
// RateScale 1 drops the ½ of the kinematic equation dq/dt = ½ q ⊗ ω and
// feeds angular acceleration straight into the derivative, which doubles the
// turn rate per unit torque relative to the classical form. A zero
// RateScale means 1, so the zero value is the default integrator.
type Euler struct {
	RateScale float64
}

// NewEuler returns the default integrator (RateScale 1).
func NewEuler() *Euler {
	return &Euler{RateScale: 1}
}

// NewHalfAngleEuler returns the classical dq/dt = ½ q ⊗ ω variant.
func NewHalfAngleEuler() *Euler {
	return &Euler{RateScale: 0.5}
}

func (e *Euler) Step(x dynamo.State, l dynamo.Loads, dt float64) (dynamo.State, error) {
	lin, ang, err := l.Accelerations()
	if err != nil {
		return dynamo.State{}, err
	}

	pos := x.Position.Add(lin.Mul(dt))

	dq := x.Orientation.Mul(dynamo.PureQuaternion(ang))
	if e.RateScale != 0 && e.RateScale != 1 {
		dq = dq.Scale(e.RateScale)
	}
	q, err := x.Orientation.Add(dq.Scale(dt)).Normalize()
	if err != nil {
		return dynamo.State{}, err
	}

	return dynamo.State{Position: pos, Orientation: q}, nil
}

package physics

import (
	"fmt"

	"github.com/san-kum/blocksim/internal/dynamo"
)

// Accumulate sums block thrust into net force and net torque about ref,
// and block density into total mass. Each block at c contributes
// force = ThrustDir*ThrustForce and torque = (c - ref) × force.
func Accumulate(body *RigidBody, ref dynamo.Vec3) (dynamo.Loads, error) {
	var l dynamo.Loads
	body.Each(func(c Coord, b Block) {
		f := b.Force()
		r := c.Vec().Sub(ref)
		l.Force = l.Force.Add(f)
		l.Torque = l.Torque.Add(r.Cross(f))
		l.Mass += b.Density
	})
	if !(l.Mass > 0) {
		return dynamo.Loads{}, fmt.Errorf("%w: total mass %g over %d blocks", dynamo.ErrInvalidBody, l.Mass, body.Len())
	}
	return l, nil
}

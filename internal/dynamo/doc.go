// Package dynamo provides the numerical primitives of the block simulator.
//
// The package defines the value types threaded through every tick:
//
//   - [Vec3]: 3-component vector (an alias of mgl64.Vec3)
//   - [Quaternion]: scalar-first (w, x, y, z) orientation
//   - [State]: body position and orientation
//   - [Loads]: net force, net torque and total mass for one tick
//   - [Integrator]: advances a [State] by one fixed tick
//
// All types are plain values. A [State] returned by an integrator is a new
// value; callers treat it as authoritative and never share it mutably.
//
// # Example
//
//	q := dynamo.Identity()
//	spin := dynamo.PureQuaternion(dynamo.Vec3{0, 0, 1})
//	next, err := q.Add(q.Mul(spin).Scale(dt)).Normalize()
//
// # Thread Safety
//
// Every function in this package is pure and safe for concurrent use.
package dynamo

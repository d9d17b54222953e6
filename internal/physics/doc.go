// Package physics models a body as a fixed lattice of thrust blocks.
//
//   - [Block]: one mass/thrust element, fixed in the body frame
//   - [RigidBody]: immutable arena of blocks keyed by [Coord]
//   - [Accumulate]: reduces a body to net force, torque and mass
//   - [Box], [Bar]: lattice builders
//
// Torque is taken about the reference position handed to [Accumulate],
// which the simulator sets to the body's tracked world position. No center
// of mass is derived from the geometry.
//
// # Determinism
//
// A [RigidBody] iterates its blocks in lexicographic coordinate order, so
// floating-point sums are reproducible across runs and platforms:
//
//	body, _ := physics.NewRigidBody(physics.Bar(0, 4, physics.Block{
//	    ThrustDir: dynamo.Vec3{1, 0, 0}, ThrustForce: 1, Density: 1,
//	}))
//	loads, err := physics.Accumulate(body, dynamo.Vec3{})
package physics

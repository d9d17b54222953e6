package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quaternion is a scalar-first (w, x, y, z) quaternion.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity returns the no-rotation quaternion (1, 0, 0, 0).
func Identity() Quaternion { return Quaternion{W: 1} }

// PureQuaternion embeds v as (0, v.x, v.y, v.z).
func PureQuaternion(v Vec3) Quaternion {
	return Quaternion{X: v[0], Y: v[1], Z: v[2]}
}

// FromQuat converts an mgl64 quaternion.
func FromQuat(q mgl64.Quat) Quaternion {
	return Quaternion{W: q.W, X: q.V[0], Y: q.V[1], Z: q.V[2]}
}

// Quat converts q to an mgl64 quaternion.
func (q Quaternion) Quat() mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

func (q Quaternion) Vector() Vec3 { return Vec3{q.X, q.Y, q.Z} }

func (q Quaternion) Magnitude() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Mul returns the Hamilton product q ⊗ r. The product is not commutative.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

func (q Quaternion) Add(r Quaternion) Quaternion {
	return Quaternion{W: q.W + r.W, X: q.X + r.X, Y: q.Y + r.Y, Z: q.Z + r.Z}
}

func (q Quaternion) Scale(s float64) Quaternion {
	return Quaternion{W: q.W * s, X: q.X * s, Y: q.Y * s, Z: q.Z * s}
}

func (q Quaternion) Dot(r Quaternion) float64 {
	return q.W*r.W + q.X*r.X + q.Y*r.Y + q.Z*r.Z
}

// Normalize divides every component by the magnitude. A zero or non-finite
// magnitude is reported as ErrDegenerateOrientation; it is never replaced by
// the identity.
func (q Quaternion) Normalize() (Quaternion, error) {
	m := q.Magnitude()
	if m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return Quaternion{}, ErrDegenerateOrientation
	}
	return Quaternion{W: q.W / m, X: q.X / m, Y: q.Y / m, Z: q.Z / m}, nil
}

// Rotate returns v rotated by q, computed as q ⊗ (0, v) ⊗ q*. q is assumed
// to be a unit quaternion.
func (q Quaternion) Rotate(v Vec3) Vec3 {
	return q.Mul(PureQuaternion(v)).Mul(q.Conjugate()).Vector()
}

// AngleTo returns the rotation angle in radians between two unit quaternions.
func (q Quaternion) AngleTo(r Quaternion) float64 {
	d := math.Abs(q.Dot(r))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// ApproxEqual compares component-wise within eps.
func (q Quaternion) ApproxEqual(r Quaternion, eps float64) bool {
	return math.Abs(q.W-r.W) <= eps && math.Abs(q.X-r.X) <= eps &&
		math.Abs(q.Y-r.Y) <= eps && math.Abs(q.Z-r.Z) <= eps
}

func (q Quaternion) finite() bool {
	for _, c := range [4]float64{q.W, q.X, q.Y, q.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

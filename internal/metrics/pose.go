package metrics

import (
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
)

// NormDrift is the largest deviation of |orientation| from 1 seen.
type NormDrift struct {
	maxDrift float64
}

func NewNormDrift() *NormDrift { return &NormDrift{} }

func (n *NormDrift) Name() string { return "norm_drift" }

func (n *NormDrift) Observe(x dynamo.State, _ dynamo.Loads, _ int) {
	n.maxDrift = math.Max(n.maxDrift, math.Abs(x.Orientation.Magnitude()-1))
}

func (n *NormDrift) Value() float64 { return n.maxDrift }
func (n *NormDrift) Reset()         { n.maxDrift = 0 }

// Displacement is the straight-line distance from the first observed
// position to the latest one.
type Displacement struct {
	origin  dynamo.Vec3
	current dynamo.Vec3
	samples int
}

func NewDisplacement() *Displacement { return &Displacement{} }

func (d *Displacement) Name() string { return "displacement" }

func (d *Displacement) Observe(x dynamo.State, _ dynamo.Loads, _ int) {
	if d.samples == 0 {
		d.origin = x.Position
	}
	d.current = x.Position
	d.samples++
}

func (d *Displacement) Value() float64 {
	return d.current.Sub(d.origin).Len()
}

func (d *Displacement) Reset() {
	d.origin, d.current = dynamo.Vec3{}, dynamo.Vec3{}
	d.samples = 0
}

// Rotation is the angle in radians between the first observed orientation
// and the latest one.
type Rotation struct {
	origin  dynamo.Quaternion
	current dynamo.Quaternion
	samples int
}

func NewRotation() *Rotation { return &Rotation{} }

func (r *Rotation) Name() string { return "rotation" }

func (r *Rotation) Observe(x dynamo.State, _ dynamo.Loads, _ int) {
	if r.samples == 0 {
		r.origin = x.Orientation
	}
	r.current = x.Orientation
	r.samples++
}

func (r *Rotation) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.origin.AngleTo(r.current)
}

func (r *Rotation) Reset() {
	r.origin, r.current = dynamo.Quaternion{}, dynamo.Quaternion{}
	r.samples = 0
}

// PeakTorque is the largest net torque magnitude seen.
type PeakTorque struct {
	peak float64
}

func NewPeakTorque() *PeakTorque { return &PeakTorque{} }

func (p *PeakTorque) Name() string { return "peak_torque" }

func (p *PeakTorque) Observe(_ dynamo.State, l dynamo.Loads, _ int) {
	p.peak = math.Max(p.peak, l.Torque.Len())
}

func (p *PeakTorque) Value() float64 { return p.peak }
func (p *PeakTorque) Reset()         { p.peak = 0 }

// Package metrics provides run summaries that plug into sim.Simulator.
package metrics

import "github.com/san-kum/blocksim/internal/sim"

var (
	_ sim.Metric = (*NormDrift)(nil)
	_ sim.Metric = (*Displacement)(nil)
	_ sim.Metric = (*Rotation)(nil)
	_ sim.Metric = (*PeakTorque)(nil)
	_ sim.Metric = (*Stability)(nil)
)

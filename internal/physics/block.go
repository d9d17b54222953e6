package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
)

// Coord is an integer lattice coordinate in the body frame.
type Coord [3]int

// Vec returns c as a float vector.
func (c Coord) Vec() dynamo.Vec3 {
	return dynamo.Vec3{float64(c[0]), float64(c[1]), float64(c[2])}
}

// Less orders coordinates lexicographically by x, then y, then z.
func (c Coord) Less(o Coord) bool {
	if c[0] != o[0] {
		return c[0] < o[0]
	}
	if c[1] != o[1] {
		return c[1] < o[1]
	}
	return c[2] < o[2]
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c[0], c[1], c[2])
}

// Block is one lattice element. ThrustDir need not be normalized; the
// applied force scales with its length.
type Block struct {
	ThrustDir     dynamo.Vec3 `json:"thrust_dir" yaml:"thrust_dir"`
	ThrustForce   float64     `json:"thrust_force" yaml:"thrust_force"`
	Density       float64     `json:"density" yaml:"density"`
	AirResistance float64     `json:"air_resistance" yaml:"air_resistance"`
}

// Force returns ThrustDir scaled by ThrustForce.
func (b Block) Force() dynamo.Vec3 {
	return b.ThrustDir.Mul(b.ThrustForce)
}

// WithThrust returns a copy of b pointing along dir with magnitude f.
func (b Block) WithThrust(dir dynamo.Vec3, f float64) Block {
	b.ThrustDir = dir
	b.ThrustForce = f
	return b
}

func (b Block) validate() error {
	if math.IsNaN(b.Density) || math.IsInf(b.Density, 0) || b.Density < 0 {
		return fmt.Errorf("density %g must be finite and non-negative", b.Density)
	}
	if !dynamo.Finite(b.ThrustDir) || math.IsNaN(b.ThrustForce) || math.IsInf(b.ThrustForce, 0) {
		return fmt.Errorf("thrust %v * %g must be finite", b.ThrustDir, b.ThrustForce)
	}
	return nil
}

package config

import "sort"

var Presets = map[string]*Config{
	// five pushers in a row, the reference parity scenario
	"line5": DefaultConfig(),
	// rear thruster section of a long bar; the front is inert cargo
	"pusher": {
		Name: "pusher", Integrator: "euler", Dt: 1, Ticks: 10, ValidateState: true,
		Initial: InitialConfig{Orientation: [4]float64{1, 0, 0, 0}},
		Body: BodyConfig{
			Shape: "bar", From: -5, To: 19,
			Template:  BlockConfig{ThrustDir: [3]float64{1, 0, 0}, Density: 1, AirResistance: 0.1},
			Overrides: rearThrusters(-5, -1, 2, 0.1),
		},
	},
	// lateral thrust along a bar of seven with the tail block pushing back
	"pinwheel": {
		Name: "pinwheel", Integrator: "euler", Dt: 0.1, Ticks: 10, ValidateState: true,
		Initial: InitialConfig{Orientation: [4]float64{1, 0, 0, 0}},
		Body: BodyConfig{
			Shape: "bar", From: -3, To: 3,
			Template: BlockConfig{ThrustDir: [3]float64{0, 1, 0}, ThrustForce: 10, Density: 1},
			Overrides: []BlockConfig{
				{At: [3]int{-3, 0, 0}, ThrustDir: [3]float64{-1, 0, 0}, ThrustForce: 10, Density: 1},
			},
		},
	},
	// opposed pair: no net force, pure torque about the origin
	"spinner": {
		Name: "spinner", Integrator: "euler", Dt: 0.05, Ticks: 40, ValidateState: true,
		Initial: InitialConfig{Orientation: [4]float64{1, 0, 0, 0}},
		Body: BodyConfig{
			Shape: "custom",
			Blocks: []BlockConfig{
				{At: [3]int{-1, 0, 0}, ThrustDir: [3]float64{0, 1, 0}, ThrustForce: 1, Density: 1},
				{At: [3]int{1, 0, 0}, ThrustDir: [3]float64{0, -1, 0}, ThrustForce: 1, Density: 1},
			},
		},
	},
	// 8x2x2 slab, every block pushing sideways; x spans [-4, 3] and y, z
	// span [-1, 0], the floor-divided extents of a 7x1x1 request
	"slab": {
		Name: "slab", Integrator: "euler", Dt: 0.1, Ticks: 10, ValidateState: true,
		Initial: InitialConfig{Orientation: [4]float64{1, 0, 0, 0}},
		Body: BodyConfig{
			Shape: "box", Origin: [3]int{-4, -1, -1}, Size: [3]int{8, 2, 2},
			Template: BlockConfig{ThrustDir: [3]float64{0, 1, 0}, ThrustForce: 10, Density: 1},
		},
	},
	// a 3x3x3 cube with one corner thruster
	"cube": {
		Name: "cube", Integrator: "euler-half", Dt: 0.05, Ticks: 100, ValidateState: true,
		Initial: InitialConfig{Orientation: [4]float64{1, 0, 0, 0}},
		Body: BodyConfig{
			Shape: "box", Origin: [3]int{-1, -1, -1}, Size: [3]int{3, 3, 3},
			Template: BlockConfig{ThrustDir: [3]float64{0, 0, 1}, Density: 1},
			Overrides: []BlockConfig{
				{At: [3]int{1, 1, 1}, ThrustDir: [3]float64{0, 0, 1}, ThrustForce: 5, Density: 1},
			},
		},
	},
}

func rearThrusters(from, to int, force, drag float64) []BlockConfig {
	out := make([]BlockConfig, 0, to-from+1)
	for x := from; x <= to; x++ {
		out = append(out, BlockConfig{
			At: [3]int{x, 0, 0}, ThrustDir: [3]float64{1, 0, 0},
			ThrustForce: force, Density: 1, AirResistance: drag,
		})
	}
	return out
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	cp.Body.Overrides = append([]BlockConfig(nil), cfg.Body.Overrides...)
	cp.Body.Blocks = append([]BlockConfig(nil), cfg.Body.Blocks...)
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

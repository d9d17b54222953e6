package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/physics"
)

const (
	DefaultDt         = 0.1
	DefaultTicks      = 10
	DefaultIntegrator = "euler"
	DefaultShape      = "bar"
)

type Config struct {
	Name          string        `yaml:"name" toml:"name"`
	Integrator    string        `yaml:"integrator" toml:"integrator"`
	Dt            float64       `yaml:"dt" toml:"dt"`
	Ticks         int           `yaml:"ticks" toml:"ticks"`
	ValidateState bool          `yaml:"validate_state" toml:"validate_state"`
	Initial       InitialConfig `yaml:"initial" toml:"initial"`
	Body          BodyConfig    `yaml:"body" toml:"body"`
}

type InitialConfig struct {
	Position    [3]float64 `yaml:"position" toml:"position"`
	Orientation [4]float64 `yaml:"orientation" toml:"orientation"`
}

// BodyConfig describes a lattice. Shape "bar" spans x in [From, To];
// "box" fills Size blocks from Origin; "custom" uses Blocks only. Overrides
// replace blocks of the shape, Blocks are added on top.
type BodyConfig struct {
	Shape     string        `yaml:"shape" toml:"shape"`
	From      int           `yaml:"from" toml:"from"`
	To        int           `yaml:"to" toml:"to"`
	Origin    [3]int        `yaml:"origin" toml:"origin"`
	Size      [3]int        `yaml:"size" toml:"size"`
	Template  BlockConfig   `yaml:"template" toml:"template"`
	Overrides []BlockConfig `yaml:"overrides,omitempty" toml:"overrides,omitempty"`
	Blocks    []BlockConfig `yaml:"blocks,omitempty" toml:"blocks,omitempty"`
}

type BlockConfig struct {
	At            [3]int     `yaml:"at" toml:"at"`
	ThrustDir     [3]float64 `yaml:"thrust_dir" toml:"thrust_dir"`
	ThrustForce   float64    `yaml:"thrust_force" toml:"thrust_force"`
	Density       float64    `yaml:"density" toml:"density"`
	AirResistance float64    `yaml:"air_resistance" toml:"air_resistance"`
}

func (b BlockConfig) Block() physics.Block {
	return physics.Block{
		ThrustDir:     dynamo.Vec3(b.ThrustDir),
		ThrustForce:   b.ThrustForce,
		Density:       b.Density,
		AirResistance: b.AirResistance,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:          "line5",
		Integrator:    DefaultIntegrator,
		Dt:            DefaultDt,
		Ticks:         DefaultTicks,
		ValidateState: true,
		Initial: InitialConfig{
			Orientation: [4]float64{1, 0, 0, 0},
		},
		Body: BodyConfig{
			Shape: DefaultShape,
			From:  0,
			To:    4,
			Template: BlockConfig{
				ThrustDir:   [3]float64{1, 0, 0},
				ThrustForce: 1,
				Density:     1,
			},
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Name = ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cfg, nil
}

// Save writes cfg as TOML when path ends in .toml, YAML otherwise.
func Save(path string, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt must be positive and finite, got %f", c.Dt)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative, got %d", c.Ticks)
	}
	q := c.Initial.Orientation
	if q == [4]float64{} {
		return fmt.Errorf("initial orientation must be non-zero")
	}
	switch c.Body.Shape {
	case "bar", "box", "custom":
	default:
		return fmt.Errorf("unknown body shape: %s", c.Body.Shape)
	}
	return nil
}

// SimConfig returns the driver settings.
func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{Dt: c.Dt, Ticks: c.Ticks, ValidateState: c.ValidateState}
}

// InitialState returns the starting pose; the orientation is normalized.
func (c *Config) InitialState() (dynamo.State, error) {
	o := c.Initial.Orientation
	q, err := dynamo.Quaternion{W: o[0], X: o[1], Y: o[2], Z: o[3]}.Normalize()
	if err != nil {
		return dynamo.State{}, fmt.Errorf("initial orientation: %w", err)
	}
	return dynamo.State{Position: dynamo.Vec3(c.Initial.Position), Orientation: q}, nil
}

// Blocks expands the body description into a coordinate map.
func (c *Config) Blocks() map[physics.Coord]physics.Block {
	b := c.Body
	tmpl := b.Template.Block()

	var base map[physics.Coord]physics.Block
	switch b.Shape {
	case "box":
		base = physics.Box(physics.Coord(b.Origin), b.Size, tmpl)
	case "custom":
		base = map[physics.Coord]physics.Block{}
	default:
		base = physics.Bar(b.From, b.To, tmpl)
	}

	for _, o := range b.Overrides {
		if _, ok := base[physics.Coord(o.At)]; ok {
			base[physics.Coord(o.At)] = o.Block()
		}
	}
	for _, extra := range b.Blocks {
		base[physics.Coord(extra.At)] = extra.Block()
	}
	return base
}

func (c *Config) BuildBody() (*physics.RigidBody, error) {
	return physics.NewRigidBody(c.Blocks())
}

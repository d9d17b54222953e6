package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/blocksim/internal/config"
	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/physics"
	"github.com/san-kum/blocksim/internal/sim"
)

// Experiment is a fully assembled run: body, integrator, initial state and
// metrics built from a config.
type Experiment struct {
	cfg       *config.Config
	body      *physics.RigidBody
	initial   dynamo.State
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfg.Name, err)
	}

	body, err := cfg.BuildBody()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", cfg.Name, err)
	}

	x0, err := cfg.InitialState()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", cfg.Name, err)
	}

	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	s := sim.New(body, integ)
	for _, m := range registry.DefaultMetrics() {
		s.AddMetric(m)
	}

	return &Experiment{cfg: cfg, body: body, initial: x0, simulator: s}, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.initial, e.cfg.SimConfig())
}

// Job returns the experiment as an ensemble job with its own metrics.
func (e *Experiment) Job(registry *Registry) sim.Job {
	integ, _ := registry.GetIntegrator(e.cfg.Integrator)
	return sim.Job{
		Name:       e.cfg.Name,
		Body:       e.body,
		Integrator: integ,
		Initial:    e.initial,
		Config:     e.cfg.SimConfig(),
		Metrics:    registry.DefaultMetrics,
	}
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Body() *physics.RigidBody  { return e.body }
func (e *Experiment) Initial() dynamo.State     { return e.initial }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

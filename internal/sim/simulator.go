package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/physics"
)

var defaultIntegrator = integrators.NewEuler()

// Tick advances x by one step of dt: loads are accumulated about
// x.Position, then integrated with the default Euler integrator.
func Tick(body *physics.RigidBody, x dynamo.State, dt float64) (dynamo.State, error) {
	next, _, err := step(body, defaultIntegrator, x, dt)
	return next, err
}

func step(body *physics.RigidBody, integ dynamo.Integrator, x dynamo.State, dt float64) (dynamo.State, dynamo.Loads, error) {
	l, err := physics.Accumulate(body, x.Position)
	if err != nil {
		return dynamo.State{}, dynamo.Loads{}, err
	}
	next, err := integ.Step(x, l, dt)
	if err != nil {
		return dynamo.State{}, l, err
	}
	return next, l, nil
}

// Simulator drives a body through successive ticks. The body is never
// mutated; the simulator itself holds only metrics and observers.
type Simulator struct {
	body       *physics.RigidBody
	integrator dynamo.Integrator
	metrics    []Metric
	observers  []Observer
}

// New returns a simulator for body. A nil integrator selects Euler.
func New(body *physics.RigidBody, integrator dynamo.Integrator) *Simulator {
	if integrator == nil {
		integrator = integrators.NewEuler()
	}
	return &Simulator{
		body:       body,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Body() *physics.RigidBody { return s.body }

// Step performs one tick with the simulator's integrator and returns the
// loads that produced it.
func (s *Simulator) Step(x dynamo.State, dt float64) (dynamo.State, dynamo.Loads, error) {
	return step(s.body, s.integrator, x, dt)
}

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, cfg.Ticks+1),
		Loads:   make([]dynamo.Loads, 0, cfg.Ticks),
		Times:   make([]float64, 0, cfg.Ticks+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0
	result.States = append(result.States, x)
	result.Times = append(result.Times, 0)

	var runErr error
	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			runErr = fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}
		if runErr != nil {
			break
		}

		t := float64(i) * cfg.Dt
		next, l, err := s.Step(x, cfg.Dt)
		if err == nil && cfg.ValidateState && !next.IsValid() {
			err = dynamo.ErrInvalidState
		}
		if err != nil {
			runErr = &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: err}
			break
		}

		for _, m := range s.metrics {
			m.Observe(x, l, i)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, l, i)
		}

		x = next
		result.StepsTaken++
		result.States = append(result.States, x)
		result.Loads = append(result.Loads, l)
		result.Times = append(result.Times, float64(i+1)*cfg.Dt)
	}

	// The last state reached has no tick of its own; it is observed with
	// zero loads so that pose metrics see where the body ended up.
	for _, m := range s.metrics {
		m.Observe(x, dynamo.Loads{}, result.StepsTaken)
		result.Metrics[m.Name()] = m.Value()
	}
	for _, obs := range s.observers {
		obs.OnStep(x, dynamo.Loads{}, result.StepsTaken)
	}

	return result, runErr
}

// RunWithCallback streams each pre-tick state and its loads to callback
// until cfg.Ticks ticks have run or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(dynamo.State, dynamo.Loads, int) bool) (dynamo.State, error) {
	if err := validateConfig(cfg); err != nil {
		return x0, err
	}

	x := x0
	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return x, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		next, l, err := s.Step(x, cfg.Dt)
		if err != nil {
			return x, &dynamo.SimulationError{Step: i, Time: float64(i) * cfg.Dt, State: x, Wrapped: err}
		}
		if !callback(x, l, i) {
			return x, nil
		}
		x = next

		if cfg.ValidateState && !x.IsValid() {
			return x, &dynamo.SimulationError{Step: i, Time: float64(i+1) * cfg.Dt, State: x, Wrapped: dynamo.ErrInvalidState}
		}
	}

	return x, nil
}

func validateConfig(cfg dynamo.Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %f", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative, got %d", dynamo.ErrInvalidConfig, cfg.Ticks)
	}
	return nil
}

package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/metrics"
	"github.com/san-kum/blocksim/internal/sim"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	metrics     map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		metrics:     make(map[string]func() sim.Metric),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["euler-half"] = func() dynamo.Integrator { return integrators.NewHalfAngleEuler() }

	r.metrics["norm_drift"] = func() sim.Metric { return metrics.NewNormDrift() }
	r.metrics["displacement"] = func() sim.Metric { return metrics.NewDisplacement() }
	r.metrics["rotation"] = func() sim.Metric { return metrics.NewRotation() }
	r.metrics["peak_torque"] = func() sim.Metric { return metrics.NewPeakTorque() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(1e6) }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListMetrics() []string {
	return sortedKeys(r.metrics)
}

// DefaultMetrics returns fresh instances of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	names := r.ListMetrics()
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name]())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

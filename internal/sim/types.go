package sim

import "github.com/san-kum/blocksim/internal/dynamo"

// Metric accumulates a scalar summary over a run. Metrics are stateful and
// belong to a single simulator.
type Metric interface {
	Name() string
	Observe(x dynamo.State, l dynamo.Loads, tick int)
	Value() float64
	Reset()
}

// Observer is notified with the pre-tick state and the loads acting on it.
type Observer interface {
	OnStep(x dynamo.State, l dynamo.Loads, tick int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(x dynamo.State, l dynamo.Loads, tick int)

func (f ObserverFunc) OnStep(x dynamo.State, l dynamo.Loads, tick int) { f(x, l, tick) }

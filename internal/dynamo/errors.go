package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidBody indicates a body whose total mass is not positive, or
	// a block with a negative or non-finite attribute.
	ErrInvalidBody = errors.New("dynamo: invalid body")

	// ErrDegenerateOrientation indicates a zero-magnitude quaternion at
	// normalization time. Upstream integration produced garbage.
	ErrDegenerateOrientation = errors.New("dynamo: degenerate orientation (zero magnitude quaternion)")

	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the run was interrupted between ticks.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrInvalidConfig indicates a run configuration the driver refuses.
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

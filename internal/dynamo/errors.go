package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates a tick parameter snapshot that cannot be simulated.
	ErrInvalidParams = errors.New("dynamo: invalid tick parameters")

	// ErrBondIndex indicates a bond referencing a particle outside the store.
	ErrBondIndex = errors.New("dynamo: bond references missing particle")

	// ErrBondGeometry indicates a self-bond or a non-positive rest length.
	ErrBondGeometry = errors.New("dynamo: degenerate bond")

	// ErrKinematic indicates a kinematic record and its particle flag disagree.
	ErrKinematic = errors.New("dynamo: inconsistent kinematic particle")

	// ErrEmptyStore indicates a store with no particles.
	ErrEmptyStore = errors.New("dynamo: store has no particles")

	// ErrUnstable indicates non-finite particle state after a tick.
	ErrUnstable = errors.New("dynamo: simulation unstable (non-finite state)")
)

// SimulationError wraps an error with the tick it happened on.
type SimulationError struct {
	Tick    uint64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

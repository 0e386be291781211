package ecs

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ConstructionError reports a component constructor failure. It is the only
// error ComponentManager.Add returns.
type ConstructionError struct {
	Component string
	Entity    EntityID
	Err       error
}

func newConstructionError(name string, e EntityID, cause error) *ConstructionError {
	return &ConstructionError{
		Component: name,
		Entity:    e,
		Err:       eris.Wrapf(cause, "construct %s", name),
	}
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("entity %d: %v", e.Entity, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

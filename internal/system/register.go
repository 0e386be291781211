package system

import (
	"time"

	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/core/event"
	coresys "github.com/sceneforge/engine/internal/core/system"
)

// Prioritized systems carry their default frame position.
type Prioritized interface {
	coresys.System
	Priority() coresys.Priority
}

// DefaultMaxStep bounds a single movement step after a stalled frame.
const DefaultMaxStep = 250 * time.Millisecond

// Defaults returns the built-in systems sharing one destruction queue.
func Defaults(bus *event.Bus) []Prioritized {
	q := ecs.NewDestroyQueue()
	return []Prioritized{
		NewMovementSystem(DefaultMaxStep),
		NewCollisionSystem(bus),
		NewDeathSystem(q),
		NewCleanupSystem(q),
	}
}

// Register adds each system at its own priority and returns how many were
// accepted.
func Register(m *coresys.Manager, systems ...Prioritized) int {
	n := 0
	for _, s := range systems {
		if m.Register(s, s.Priority()) {
			n++
		}
	}
	return n
}

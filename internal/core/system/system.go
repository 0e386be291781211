package system

import (
	"time"

	"github.com/sceneforge/engine/internal/core/ecs"
)

// Priority orders systems within a frame; higher runs first.
type Priority int

// Preset bands. Any int works; these keep the usual frame order readable.
const (
	PriorityCleanup    Priority = -100 // destroy queued entities
	PriorityPostUpdate Priority = 0    // collisions, reactions
	PriorityUpdate     Priority = 100  // game logic, movement
	PriorityInput      Priority = 200  // input and scripted intent
)

// System is the interface every ECS system implements. A returned error or a
// panic counts as one failed update.
type System interface {
	Update(dt time.Duration, em *ecs.EntityManager, cm *ecs.ComponentManager) error
	// RequiredComponents names the component types the system queries.
	RequiredComponents() []string
}

// Named systems report a readable name in logs and events.
type Named interface {
	Name() string
}

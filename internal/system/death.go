package system

import (
	"time"

	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/core/ecs"
	coresys "github.com/sceneforge/engine/internal/core/system"
)

// DeathSystem queues entities whose health has run out. Destruction happens
// later in the frame, in CleanupSystem.
type DeathSystem struct {
	queue *ecs.DestroyQueue
}

func NewDeathSystem(q *ecs.DestroyQueue) *DeathSystem {
	return &DeathSystem{queue: q}
}

func (s *DeathSystem) Name() string { return "death" }

func (s *DeathSystem) Priority() coresys.Priority { return coresys.PriorityPostUpdate - 10 }

func (s *DeathSystem) RequiredComponents() []string {
	return []string{component.HealthType.Name()}
}

func (s *DeathSystem) Update(_ time.Duration, _ *ecs.EntityManager, cm *ecs.ComponentManager) error {
	ecs.Each1(cm, component.HealthType, func(id ecs.EntityID, h *component.Health) {
		if h.Current <= 0 {
			s.queue.Mark(id)
		}
	})
	return nil
}

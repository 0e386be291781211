package system

import (
	"time"

	"github.com/sceneforge/engine/internal/core/ecs"
	coresys "github.com/sceneforge/engine/internal/core/system"
)

// CleanupSystem flushes the deferred destruction queue at frame end.
type CleanupSystem struct {
	queue *ecs.DestroyQueue
}

func NewCleanupSystem(q *ecs.DestroyQueue) *CleanupSystem {
	return &CleanupSystem{queue: q}
}

func (s *CleanupSystem) Name() string { return "cleanup" }

func (s *CleanupSystem) Priority() coresys.Priority { return coresys.PriorityCleanup }

func (s *CleanupSystem) RequiredComponents() []string { return nil }

func (s *CleanupSystem) Update(_ time.Duration, em *ecs.EntityManager, _ *ecs.ComponentManager) error {
	s.queue.Flush(em)
	return nil
}

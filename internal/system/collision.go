package system

import (
	"time"

	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/core/event"
	coresys "github.com/sceneforge/engine/internal/core/system"
)

// TopicCollision carries a Collision payload.
const TopicCollision = "collision"

// Collision is one overlapping pair; A is always the lower id.
type Collision struct {
	A ecs.EntityID
	B ecs.EntityID
}

// CollisionSystem reports overlapping solid colliders. Boxes are centred on
// the entity's Position. Touching edges do not count as overlap.
type CollisionSystem struct {
	bus *event.Bus

	bodies []body
}

type body struct {
	id                     ecs.EntityID
	minX, minY, maxX, maxY float64
}

func NewCollisionSystem(bus *event.Bus) *CollisionSystem {
	return &CollisionSystem{bus: bus, bodies: make([]body, 0, 64)}
}

func (s *CollisionSystem) Name() string { return "collision" }

func (s *CollisionSystem) Priority() coresys.Priority { return coresys.PriorityPostUpdate }

func (s *CollisionSystem) RequiredComponents() []string {
	return []string{component.PositionType.Name(), component.ColliderType.Name()}
}

func (s *CollisionSystem) Update(_ time.Duration, _ *ecs.EntityManager, cm *ecs.ComponentManager) error {
	s.bodies = s.bodies[:0]
	ids := cm.EntitiesWith(s.RequiredComponents()...).Sorted()
	for _, id := range ids {
		p, _ := ecs.GetAs(cm, id, component.PositionType)
		c, _ := ecs.GetAs(cm, id, component.ColliderType)
		if p == nil || c == nil || !c.Solid {
			continue
		}
		hw, hh := c.Width/2, c.Height/2
		s.bodies = append(s.bodies, body{
			id:   id,
			minX: p.X - hw, minY: p.Y - hh,
			maxX: p.X + hw, maxY: p.Y + hh,
		})
	}

	for i := 0; i < len(s.bodies); i++ {
		a := s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			b := s.bodies[j]
			if a.minX < b.maxX && b.minX < a.maxX && a.minY < b.maxY && b.minY < a.maxY {
				s.bus.Publish(TopicCollision, Collision{A: a.id, B: b.id})
			}
		}
	}
	return nil
}

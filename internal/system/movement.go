package system

import (
	"time"

	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/core/ecs"
	coresys "github.com/sceneforge/engine/internal/core/system"
)

// MovementSystem integrates Position by Velocity every frame. A frame longer
// than maxStep is integrated as maxStep; zero means no limit.
type MovementSystem struct {
	maxStep time.Duration
}

func NewMovementSystem(maxStep time.Duration) *MovementSystem {
	return &MovementSystem{maxStep: maxStep}
}

func (s *MovementSystem) Name() string { return "movement" }

func (s *MovementSystem) Priority() coresys.Priority { return coresys.PriorityUpdate }

func (s *MovementSystem) RequiredComponents() []string {
	return []string{component.PositionType.Name(), component.VelocityType.Name()}
}

func (s *MovementSystem) Update(dt time.Duration, _ *ecs.EntityManager, cm *ecs.ComponentManager) error {
	if s.maxStep > 0 && dt > s.maxStep {
		dt = s.maxStep
	}
	secs := dt.Seconds()
	if secs <= 0 {
		return nil
	}
	ecs.Each2(cm, component.PositionType, component.VelocityType,
		func(_ ecs.EntityID, p *component.Position, v *component.Velocity) {
			p.X += v.VX * secs
			p.Y += v.VY * secs
		})
	return nil
}

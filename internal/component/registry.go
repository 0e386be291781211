package component

import "github.com/sceneforge/engine/internal/core/ecs"

// All lists every built-in component type, for World registration.
func All() []ecs.ComponentType {
	return []ecs.ComponentType{
		PositionType,
		VelocityType,
		ColliderType,
		HealthType,
		PickupType,
		SpriteType,
		TagType,
		PlayerControlType,
		AIControlType,
	}
}

package component

import "github.com/sceneforge/engine/internal/core/ecs"

// Health tracks hit points. Current at or below zero means dead.
type Health struct {
	ecs.Base
	Current int
	Max     int
}

// Pickup is a collectible that grants Value of Kind when touched.
type Pickup struct {
	ecs.Base
	Kind  string
	Value int
}

var HealthType = ecs.NewSchema("Health",
	ecs.Int("current", func(h *Health) *int { return &h.Current }).Default(100),
	ecs.Int("max", func(h *Health) *int { return &h.Max }).Default(100),
)

var PickupType = ecs.NewSchema("Pickup",
	ecs.String("kind", func(p *Pickup) *string { return &p.Kind }).Default("coin"),
	ecs.Int("value", func(p *Pickup) *int { return &p.Value }).Default(1),
)

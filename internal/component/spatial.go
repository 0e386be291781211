package component

import "github.com/sceneforge/engine/internal/core/ecs"

// Position is a point in world units.
type Position struct {
	ecs.Base
	X float64
	Y float64
}

// Velocity is world units per second.
type Velocity struct {
	ecs.Base
	VX float64
	VY float64
}

// Collider is an axis-aligned box centred on the entity's Position.
type Collider struct {
	ecs.Base
	Width  float64
	Height float64
	Solid  bool
}

var PositionType = ecs.NewSchema("Position",
	ecs.Float("x", func(p *Position) *float64 { return &p.X }),
	ecs.Float("y", func(p *Position) *float64 { return &p.Y }),
)

var VelocityType = ecs.NewSchema("Velocity",
	ecs.Float("vx", func(v *Velocity) *float64 { return &v.VX }),
	ecs.Float("vy", func(v *Velocity) *float64 { return &v.VY }),
)

var ColliderType = ecs.NewSchema("Collider",
	ecs.Float("width", func(c *Collider) *float64 { return &c.Width }).Default(32),
	ecs.Float("height", func(c *Collider) *float64 { return &c.Height }).Default(32),
	ecs.Bool("solid", func(c *Collider) *bool { return &c.Solid }).Default(true),
)

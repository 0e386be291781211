package component

import "github.com/sceneforge/engine/internal/core/ecs"

// Sprite is read by the external renderer; nothing in the core draws it.
type Sprite struct {
	ecs.Base
	Texture string
	Width   float64
	Height  float64
	Tint    string
	Layer   int
}

// Tag labels an entity for lookup and for scripts.
type Tag struct {
	ecs.Base
	Label string
}

var SpriteType = ecs.NewSchema("Sprite",
	ecs.String("texture", func(s *Sprite) *string { return &s.Texture }),
	ecs.Float("width", func(s *Sprite) *float64 { return &s.Width }).Default(32),
	ecs.Float("height", func(s *Sprite) *float64 { return &s.Height }).Default(32),
	ecs.String("tint", func(s *Sprite) *string { return &s.Tint }).Default("#ffffff"),
	ecs.Int("layer", func(s *Sprite) *int { return &s.Layer }),
)

var TagType = ecs.NewSchema("Tag",
	ecs.String("label", func(t *Tag) *string { return &t.Label }),
)

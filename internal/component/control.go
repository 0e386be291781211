package component

import "github.com/sceneforge/engine/internal/core/ecs"

// PlayerControl marks an entity steered by input.
type PlayerControl struct {
	ecs.Base
	Speed float64
}

// AIControl drives non-player entities. Behavior is interpreted by scripts.
type AIControl struct {
	ecs.Base
	Behavior       string
	Speed          float64
	DetectionRange float64
}

var PlayerControlType = ecs.NewSchema("PlayerControl",
	ecs.Float("speed", func(p *PlayerControl) *float64 { return &p.Speed }).Default(200),
)

var AIControlType = ecs.NewSchema("AIControl",
	ecs.String("behavior", func(a *AIControl) *string { return &a.Behavior }).Default("patrol"),
	ecs.Float("speed", func(a *AIControl) *float64 { return &a.Speed }).Default(100),
	ecs.Float("detectionRange", func(a *AIControl) *float64 { return &a.DetectionRange }).Default(150),
)

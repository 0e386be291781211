package scripting

import (
	"time"

	"github.com/sceneforge/engine/internal/core/ecs"
	coresys "github.com/sceneforge/engine/internal/core/system"
)

// UpdateFunc is the global a script defines to run once per frame.
const UpdateFunc = "update"

// ScriptSystem calls the Lua update(dt) global every frame, dt in seconds.
// Without an update function it does nothing. A Lua error counts as a
// failed update.
type ScriptSystem struct {
	engine *Engine
}

func NewScriptSystem(e *Engine) *ScriptSystem {
	return &ScriptSystem{engine: e}
}

func (s *ScriptSystem) Name() string { return "script" }

func (s *ScriptSystem) Priority() coresys.Priority { return coresys.PriorityInput }

func (s *ScriptSystem) RequiredComponents() []string { return nil }

func (s *ScriptSystem) Update(dt time.Duration, _ *ecs.EntityManager, _ *ecs.ComponentManager) error {
	if !s.engine.HasFunction(UpdateFunc) {
		return nil
	}
	_, err := s.engine.Call(UpdateFunc, dt.Seconds())
	return err
}

package cli

import (
	"fmt"

	"github.com/sceneforge/engine/internal/command"
	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/config"
	"github.com/sceneforge/engine/internal/scripting"
	"github.com/sceneforge/engine/internal/system"
	"github.com/sceneforge/engine/internal/template"
	"github.com/sceneforge/engine/internal/world"
	"go.uber.org/zap"
)

// Runtime is one fully wired scene: world, built-in systems, templates,
// command history and the optional Lua engine.
type Runtime struct {
	World     *world.World
	Templates *template.Manager
	History   *command.Manager
	Scripts   *scripting.Engine

	log *zap.Logger
}

// NewRuntime wires a Runtime from cfg.
func NewRuntime(cfg *config.Config, log *zap.Logger) (*Runtime, error) {
	w := world.New(nil, log)
	w.RegisterComponents(component.All()...)
	w.Systems().SetMaxConsecutiveErrors(cfg.Systems.MaxConsecutiveErrors)
	n := system.Register(w.Systems(), system.Defaults(w.Bus())...)
	log.Debug("built-in systems registered", zap.Int("count", n))

	tm := template.NewManager(w, log)
	if cfg.Templates.File != "" {
		loaded, err := tm.LoadFile(cfg.Templates.File)
		if err != nil {
			return nil, err
		}
		log.Info("templates loaded", zap.String("file", cfg.Templates.File), zap.Int("count", loaded))
	}

	history := command.NewManager(w.Bus(), log)
	history.SetMaxDepth(cfg.History.MaxDepth)

	rt := &Runtime{World: w, Templates: tm, History: history, log: log}

	if cfg.Scripting.Dir != "" {
		eng := scripting.NewEngine(w, log)
		loaded, err := eng.LoadDir(cfg.Scripting.Dir)
		if err != nil {
			eng.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
		sys := scripting.NewScriptSystem(eng)
		system.Register(w.Systems(), sys)
		rt.Scripts = eng
		log.Info("scripts loaded", zap.String("dir", cfg.Scripting.Dir), zap.Int("count", loaded))
	}
	return rt, nil
}

// Spawn builds one entity per template name through the command history,
// so each spawn can be undone.
func (r *Runtime) Spawn(names ...string) int {
	n := 0
	for _, name := range names {
		cmd := command.NewCreateEntity(r.World, r.Templates, name, nil)
		if err := r.History.Execute(cmd); err != nil {
			continue
		}
		if _, ok := cmd.Entity(); ok {
			n++
		}
	}
	return n
}

func (r *Runtime) Close() {
	if r.Scripts != nil {
		r.Scripts.Close()
	}
	r.World.Close()
}

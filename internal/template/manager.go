package template

import (
	"fmt"
	"os"
	"sort"

	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager builds entities from named templates.
type Manager struct {
	world     *world.World
	templates map[string]*Template
	log       *zap.Logger
}

// NewManager returns a Manager preloaded with player, enemy, obstacle and pickup.
func NewManager(w *world.World, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		world:     w,
		templates: make(map[string]*Template, 8),
		log:       log,
	}
	for _, t := range builtins() {
		m.Register(t)
	}
	return m
}

// Register adds t, replacing any template with the same name.
func (m *Manager) Register(t Template) {
	tt := t
	m.templates[t.Name] = &tt
}

func (m *Manager) Has(name string) bool {
	_, ok := m.templates[name]
	return ok
}

// Get returns a copy of the named template.
func (m *Manager) Get(name string) (Template, bool) {
	t, ok := m.templates[name]
	if !ok {
		return Template{}, false
	}
	return *t, true
}

// Names returns the template names in ascending order.
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.templates))
	for n := range m.templates {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LoadFile registers every template in a yaml list, overriding built-ins of
// the same name. It returns how many were loaded.
func (m *Manager) LoadFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read templates: %w", err)
	}
	var list []Template
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return 0, fmt.Errorf("parse templates: %w", err)
	}
	for i, t := range list {
		if t.Name == "" {
			return 0, fmt.Errorf("parse templates: entry %d has no name", i)
		}
	}
	for _, t := range list {
		m.Register(t)
	}
	return len(list), nil
}

// CreateEntityFromTemplate allocates one entity and attaches the template's
// components, applying defaults and then opts. An unknown name is logged and
// reported with ok false; callers treat that as a no-op.
func (m *Manager) CreateEntityFromTemplate(name string, opts Options) (ecs.EntityID, bool) {
	t, ok := m.templates[name]
	if !ok {
		m.log.Warn("unknown template", zap.String("template", name))
		return 0, false
	}

	cm := m.world.Components()
	id := m.world.CreateEntity()
	for _, p := range t.Parts {
		ct, ok := m.world.ComponentType(p.Component)
		if !ok {
			m.log.Warn("template uses unregistered component",
				zap.String("template", name),
				zap.String("component", p.Component))
			continue
		}
		c, err := cm.Add(id, ct)
		if err != nil {
			m.log.Error("template component construction failed",
				zap.String("template", name),
				zap.Error(err))
			continue
		}
		m.apply(name, ct, c, p, opts)
	}
	return id, true
}

func (m *Manager) apply(name string, ct ecs.ComponentType, c ecs.Component, p Part, opts Options) {
	for _, field := range sortedKeys(p.Fields) {
		if err := ct.Set(c, field, p.Fields[field]); err != nil {
			m.log.Warn("template default rejected",
				zap.String("template", name),
				zap.String("component", p.Component),
				zap.Error(err))
		}
	}
	for _, field := range sortedKeys(p.Options) {
		v, ok := opts[p.Options[field]]
		if !ok {
			continue
		}
		if err := ct.Set(c, field, v); err != nil {
			m.log.Warn("template option rejected",
				zap.String("template", name),
				zap.String("option", p.Options[field]),
				zap.Error(err))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

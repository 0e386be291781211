package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T) (*Manager, *world.World) {
	t.Helper()
	log := zaptest.NewLogger(t)
	w := world.New(nil, log)
	w.RegisterComponents(component.All()...)
	return NewManager(w, log), w
}

func componentNames(w *world.World, id ecs.EntityID) []string {
	var out []string
	for _, nc := range w.Components().ComponentsFor(id) {
		out = append(out, nc.Name)
	}
	return out
}

func TestManager_BuiltinNames(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Equal(t, []string{"enemy", "obstacle", "pickup", "player"}, m.Names())
}

func TestManager_PlayerDefaults(t *testing.T) {
	m, w := newTestManager(t)

	id, ok := m.CreateEntityFromTemplate("player", nil)
	require.True(t, ok)
	assert.Equal(t,
		[]string{"Collider", "Health", "PlayerControl", "Position", "Sprite", "Tag", "Velocity"},
		componentNames(w, id))

	h, _ := ecs.GetAs(w.Components(), id, component.HealthType)
	assert.Equal(t, 100, h.Current)
	assert.Equal(t, 100, h.Max)
	s, _ := ecs.GetAs(w.Components(), id, component.SpriteType)
	assert.Equal(t, "player.png", s.Texture)
	tag, _ := ecs.GetAs(w.Components(), id, component.TagType)
	assert.Equal(t, "player", tag.Label)
}

func TestManager_OptionsOverrideDefaults(t *testing.T) {
	m, w := newTestManager(t)

	id, ok := m.CreateEntityFromTemplate("enemy", Options{
		"x":        10,
		"y":        20.5,
		"health":   75,
		"behavior": "chase",
		"name":     "orc",
		"speed":    "fast", // wrong kind, default kept
	})
	require.True(t, ok)

	p, _ := ecs.GetAs(w.Components(), id, component.PositionType)
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 20.5, p.Y)
	h, _ := ecs.GetAs(w.Components(), id, component.HealthType)
	assert.Equal(t, 75, h.Current)
	assert.Equal(t, 75, h.Max)
	ai, _ := ecs.GetAs(w.Components(), id, component.AIControlType)
	assert.Equal(t, "chase", ai.Behavior)
	assert.Equal(t, 100.0, ai.Speed)
	tag, _ := ecs.GetAs(w.Components(), id, component.TagType)
	assert.Equal(t, "orc", tag.Label)
}

func TestManager_PickupAndObstacle(t *testing.T) {
	m, w := newTestManager(t)

	coin, ok := m.CreateEntityFromTemplate("pickup", Options{"value": 5})
	require.True(t, ok)
	pk, _ := ecs.GetAs(w.Components(), coin, component.PickupType)
	assert.Equal(t, 5, pk.Value)
	col, _ := ecs.GetAs(w.Components(), coin, component.ColliderType)
	assert.False(t, col.Solid)

	wall, ok := m.CreateEntityFromTemplate("obstacle", Options{"width": 128})
	require.True(t, ok)
	col, _ = ecs.GetAs(w.Components(), wall, component.ColliderType)
	assert.Equal(t, 128.0, col.Width)
	assert.Equal(t, 64.0, col.Height)
}

func TestManager_Get(t *testing.T) {
	m, _ := newTestManager(t)

	tpl, ok := m.Get("pickup")
	require.True(t, ok)
	assert.Contains(t, tpl.Components(), "Pickup")

	_, ok = m.Get("dragon")
	assert.False(t, ok)
}

func TestManager_UnknownTemplate(t *testing.T) {
	m, w := newTestManager(t)

	_, ok := m.CreateEntityFromTemplate("dragon", nil)
	assert.False(t, ok)
	assert.Equal(t, 0, w.Entities().ActiveEntities().Len(), "no entity allocated")
}

func TestManager_LoadFile(t *testing.T) {
	m, w := newTestManager(t)
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: turret
  components:
    - component: Position
      options: {x: x, y: y}
    - component: Health
      fields: {current: 30, max: 30}
    - component: Tag
      fields: {label: turret}
- name: pickup
  components:
    - component: Pickup
      fields: {kind: gem, value: 10}
`), 0o644))

	n, err := m.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, m.Has("turret"))

	id, ok := m.CreateEntityFromTemplate("turret", Options{"x": 3})
	require.True(t, ok)
	h, _ := ecs.GetAs(w.Components(), id, component.HealthType)
	assert.Equal(t, 30, h.Current)
	p, _ := ecs.GetAs(w.Components(), id, component.PositionType)
	assert.Equal(t, 3.0, p.X)

	gem, _ := m.CreateEntityFromTemplate("pickup", nil)
	assert.Equal(t, []string{"Pickup"}, componentNames(w, gem), "file overrides the built-in")
}

func TestManager_LoadFileErrors(t *testing.T) {
	m, _ := newTestManager(t)
	dir := t.TempDir()

	_, err := m.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- components: []\n"), 0o644))
	_, err = m.LoadFile(bad)
	assert.Error(t, err)
	assert.Len(t, m.Names(), 4)
}

package world

import (
	"errors"
	"testing"

	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := New(nil, zaptest.NewLogger(t))
	w.RegisterComponents(component.All()...)
	t.Cleanup(w.Close)
	return w
}

func mustAdd(t *testing.T, w *World, e ecs.EntityID, ct ecs.ComponentType, args ...any) {
	t.Helper()
	_, err := w.Components().Add(e, ct, args...)
	require.NoError(t, err)
}

type topicLog struct {
	topics []string
	ids    []any
}

func watch(w *World, topics ...string) *topicLog {
	l := &topicLog{}
	for _, topic := range topics {
		w.Bus().Subscribe(topic, func(ev event.Event) error {
			l.topics = append(l.topics, ev.Topic)
			l.ids = append(l.ids, ev.Payload)
			return nil
		})
	}
	return l
}

func TestWorld_RegisterComponentDuplicate(t *testing.T) {
	w := newTestWorld(t)
	assert.False(t, w.RegisterComponent(component.PositionType))
	ct, ok := w.ComponentType("Health")
	require.True(t, ok)
	assert.Equal(t, "Health", ct.Name())
	assert.Contains(t, w.ComponentTypeNames(), "Sprite")
}

func TestWorld_DestroyCascadesComponentRemoval(t *testing.T) {
	w := newTestWorld(t)
	a := w.CreateEntity()
	b := w.CreateEntity()
	mustAdd(t, w, a, component.PositionType, 1, 2)
	mustAdd(t, w, a, component.HealthType)
	mustAdd(t, w, b, component.PositionType)

	require.True(t, w.DestroyEntity(a))

	assert.Empty(t, w.Components().ComponentsFor(a))
	for name, recs := range w.Components().SerializeState() {
		for _, r := range recs {
			assert.True(t, w.Entities().Alive(r.Entity), "%s retains destroyed entity %d", name, r.Entity)
		}
	}
	assert.Len(t, w.Components().ComponentsFor(b), 1)
}

func TestWorld_Selection(t *testing.T) {
	w := newTestWorld(t)
	log := watch(w, TopicEntitySelected, TopicEntityDeselected)
	id := w.CreateEntity()

	w.Deselect()
	assert.Empty(t, log.topics, "deselect with nothing selected is silent")

	assert.True(t, w.SelectEntity(id))
	got, ok := w.Selected()
	require.True(t, ok)
	assert.Equal(t, id, got)

	assert.False(t, w.SelectEntity(99))
	_, ok = w.Selected()
	assert.False(t, ok, "invalid id falls back to deselect")

	assert.Equal(t, []string{TopicEntitySelected, TopicEntityDeselected}, log.topics)
	assert.Equal(t, []any{id, nil}, log.ids)
}

func TestWorld_DestroyingSelectedEntityDeselects(t *testing.T) {
	w := newTestWorld(t)
	log := watch(w, TopicEntityDeselected)
	keep := w.CreateEntity()
	gone := w.CreateEntity()

	w.SelectEntity(gone)
	w.DestroyEntity(gone)
	_, ok := w.Selected()
	assert.False(t, ok)
	assert.Len(t, log.topics, 1)

	w.SelectEntity(keep)
	w.DestroyEntity(gone)
	sel, ok := w.Selected()
	assert.True(t, ok)
	assert.Equal(t, keep, sel)
}

func TestWorld_FullEntityState(t *testing.T) {
	w := newTestWorld(t)
	id := w.CreateEntity()
	mustAdd(t, w, id, component.HealthType, 80, 100)
	mustAdd(t, w, id, component.TagType, "hero")

	st, ok := w.FullEntityState(id)
	require.True(t, ok)
	assert.Equal(t, id, st.ID)
	assert.Equal(t, []ComponentState{
		{Name: "Health", Data: ecs.Data{"current": 80, "max": 100, ecs.ActiveKey: true}},
		{Name: "Tag", Data: ecs.Data{"label": "hero", ecs.ActiveKey: true}},
	}, st.Components)

	_, ok = w.FullEntityState(42)
	assert.False(t, ok)
}

func TestWorld_CreateEntityFromStateUsesFreshID(t *testing.T) {
	w := newTestWorld(t)
	id := w.CreateEntity()
	mustAdd(t, w, id, component.HealthType, 100, 100)
	st, _ := w.FullEntityState(id)
	w.DestroyEntity(id)

	st.Components = append(st.Components, ComponentState{Name: "Unknown", Data: ecs.Data{"a": 1}})
	restored, err := w.CreateEntityFromState(st)
	require.NoError(t, err)
	assert.NotEqual(t, id, restored)

	h, ok := ecs.GetAs(w.Components(), restored, component.HealthType)
	require.True(t, ok)
	assert.Equal(t, 100, h.Current)
	assert.Equal(t, 100, h.Max)
}

func TestWorld_CreateEntityFromStateDecodeFault(t *testing.T) {
	w := newTestWorld(t)
	before := w.Entities().ActiveEntities().Len()

	_, err := w.CreateEntityFromState(&EntityState{Components: []ComponentState{
		{Name: "Health", Data: ecs.Data{"current": "lots"}},
	}})
	var serr *SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, before, w.Entities().ActiveEntities().Len(), "nothing created")

	_, err = w.CreateEntityFromState(nil)
	assert.Error(t, err)
}

func TestWorld_ProjectStateRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	var ids []ecs.EntityID
	for i := 0; i < 6; i++ {
		ids = append(ids, w.CreateEntity())
	}
	// leave gaps so recorded ids are not 0..N-1
	w.DestroyEntity(ids[0])
	w.DestroyEntity(ids[3])
	mustAdd(t, w, ids[1], component.PositionType, 1, 2)
	mustAdd(t, w, ids[1], component.HealthType, 50, 100)
	mustAdd(t, w, ids[2], component.PositionType, 3, 4)
	mustAdd(t, w, ids[5], component.TagType, "last")
	w.Components().ToggleComponent(ids[2], "Position")

	st, err := w.ProjectState()
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{1, 2, 4, 5}, st.Entities)

	other := newTestWorld(t)
	other.CreateEntity()
	require.NoError(t, other.LoadProjectState(st))

	again, err := other.ProjectState()
	require.NoError(t, err)
	assert.Equal(t, st, again)

	p, ok := ecs.GetAs(other.Components(), 2, component.PositionType)
	require.True(t, ok)
	assert.Equal(t, 3.0, p.X)
	assert.False(t, p.Active())
	assert.Equal(t, ecs.EntityID(6), other.CreateEntity(), "new ids continue after the restored ones")
}

func TestWorld_LoadSkipsUnregisteredAndUnlisted(t *testing.T) {
	w := newTestWorld(t)
	st := &ProjectState{
		Entities: []ecs.EntityID{0},
		Components: map[string][]ecs.ComponentRecord{
			"Position": {
				{Entity: 0, Data: ecs.Data{"x": 1, "y": 1}},
				{Entity: 9, Data: ecs.Data{"x": 2, "y": 2}},
			},
			"Mystery": {{Entity: 0, Data: ecs.Data{"q": 1}}},
		},
	}

	require.NoError(t, w.LoadProjectState(st))
	assert.Equal(t, map[string]int{"Position": 1}, w.Components().Counts())
	assert.True(t, w.Components().Has(0, "Position"))
}

func TestWorld_LoadFaultLeavesWorldUntouched(t *testing.T) {
	w := newTestWorld(t)
	id := w.CreateEntity()
	mustAdd(t, w, id, component.PositionType, 5, 5)
	w.SelectEntity(id)

	err := w.LoadProjectState(&ProjectState{
		Entities: []ecs.EntityID{0},
		Components: map[string][]ecs.ComponentRecord{
			"Position": {{Entity: 0, Data: ecs.Data{"x": true}}},
		},
	})
	var serr *SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "load project state", serr.Op)

	assert.True(t, w.Entities().Alive(id))
	assert.True(t, w.Components().Has(id, "Position"))
	_, selected := w.Selected()
	assert.True(t, selected)

	err = w.LoadProjectState(&ProjectState{Entities: []ecs.EntityID{1, 1}})
	assert.Error(t, err)
	assert.Error(t, w.LoadProjectState(nil))
}

func TestWorld_LoadRejectsReservedID(t *testing.T) {
	w := newTestWorld(t)
	id := w.CreateEntity()

	err := w.LoadProjectState(&ProjectState{Entities: []ecs.EntityID{0, ecs.MaxEntityID}})
	var serr *SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, []ecs.EntityID{id}, w.Entities().ActiveEntities().Sorted(), "world untouched")

	next := w.CreateEntity()
	assert.Greater(t, next, id)
	assert.Equal(t, 2, w.Entities().ActiveEntities().Len())
}

func TestWorld_LoadDeselects(t *testing.T) {
	w := newTestWorld(t)
	id := w.CreateEntity()
	w.SelectEntity(id)

	require.NoError(t, w.LoadProjectState(&ProjectState{Entities: []ecs.EntityID{id}}))
	_, ok := w.Selected()
	assert.False(t, ok)
	assert.True(t, w.Entities().Alive(id))
}

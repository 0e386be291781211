package world

import (
	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/core/event"
	"github.com/sceneforge/engine/internal/core/system"
	"go.uber.org/zap"
)

// Selection topics.
const (
	TopicEntitySelected   = "entity:selected"   // payload: ecs.EntityID
	TopicEntityDeselected = "entity:deselected" // payload: nil
)

// World is the facade over the entity, component and system managers. It
// adds selection, a component type registry for reconstruction, and
// snapshots. One World is one logical scene.
type World struct {
	entities   *ecs.EntityManager
	components *ecs.ComponentManager
	systems    *system.Manager
	types      *ecs.Registry
	bus        *event.Bus
	log        *zap.Logger

	selected    ecs.EntityID
	hasSelected bool
	destroySub  event.Subscription
}

// New builds a World and its managers on bus. Entity destruction cleanup is
// wired here and nowhere else.
func New(bus *event.Bus, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if bus == nil {
		bus = event.NewBus(log)
	}
	em := ecs.NewEntityManager(bus, log)
	cm := ecs.NewComponentManager(log)
	w := &World{
		entities:   em,
		components: cm,
		systems:    system.NewManager(em, cm, bus, log),
		types:      ecs.NewRegistry(),
		bus:        bus,
		log:        log,
	}
	w.destroySub = event.SubscribeTo(bus, ecs.TopicEntityDestroyed, w.onEntityDestroyed)
	return w
}

// Close detaches the World from the bus.
func (w *World) Close() {
	w.bus.Unsubscribe(w.destroySub)
}

func (w *World) onEntityDestroyed(id ecs.EntityID) error {
	if w.hasSelected && w.selected == id {
		w.Deselect()
	}
	w.components.RemoveAll(id)
	return nil
}

func (w *World) Entities() *ecs.EntityManager { return w.entities }
func (w *World) Components() *ecs.ComponentManager { return w.components }
func (w *World) Systems() *system.Manager { return w.systems }
func (w *World) Bus() *event.Bus { return w.bus }
func (w *World) Logger() *zap.Logger { return w.log }

// RegisterComponent makes ct available to snapshot reconstruction. A second
// registration under the same name is logged and ignored.
func (w *World) RegisterComponent(ct ecs.ComponentType) bool {
	if !w.types.Register(ct) {
		w.log.Warn("component type already registered", zap.String("component", ct.Name()))
		return false
	}
	return true
}

func (w *World) RegisterComponents(cts ...ecs.ComponentType) {
	for _, ct := range cts {
		w.RegisterComponent(ct)
	}
}

func (w *World) ComponentType(name string) (ecs.ComponentType, bool) {
	return w.types.Lookup(name)
}

func (w *World) ComponentTypeNames() []string {
	return w.types.Names()
}

func (w *World) CreateEntity() ecs.EntityID {
	return w.entities.CreateEntity()
}

func (w *World) DestroyEntity(id ecs.EntityID) bool {
	return w.entities.DestroyEntity(id)
}

func (w *World) UpdateComponentData(e ecs.EntityID, name, key string, value any) bool {
	return w.components.UpdateComponentData(e, name, key, value)
}

// SelectEntity selects id. An inactive id is rejected and clears the
// selection instead.
func (w *World) SelectEntity(id ecs.EntityID) bool {
	if !w.entities.Alive(id) {
		w.log.Warn("select of inactive entity", zap.Uint64("entity", uint64(id)))
		w.Deselect()
		return false
	}
	w.selected, w.hasSelected = id, true
	w.bus.Publish(TopicEntitySelected, id)
	return true
}

// Deselect clears the selection, publishing only if something was selected.
func (w *World) Deselect() {
	if !w.hasSelected {
		return
	}
	w.selected, w.hasSelected = 0, false
	w.bus.Publish(TopicEntityDeselected, nil)
}

func (w *World) Selected() (ecs.EntityID, bool) {
	return w.selected, w.hasSelected
}

package ecs

import (
	"math"
	"sort"

	"github.com/sceneforge/engine/internal/core/event"
	"go.uber.org/zap"
)

// TopicEntityDestroyed is published after an entity leaves the active set.
// Payload: EntityID.
const TopicEntityDestroyed = "entity:destroyed"

// EntityID is an opaque entity identity. IDs come from a counter starting at
// zero and are never reused within a process lifetime.
type EntityID uint64

// MaxEntityID is never issued or restored; the counter would wrap past it.
const MaxEntityID = EntityID(math.MaxUint64)

// EntityManager allocates entity ids and tracks which of them are alive.
type EntityManager struct {
	active map[EntityID]struct{}
	next   EntityID
	bus    *event.Bus
	log    *zap.Logger
}

func NewEntityManager(bus *event.Bus, log *zap.Logger) *EntityManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityManager{
		active: make(map[EntityID]struct{}, 256),
		bus:    bus,
		log:    log,
	}
}

func (m *EntityManager) CreateEntity() EntityID {
	id := m.next
	m.next++
	m.active[id] = struct{}{}
	return id
}

// DestroyEntity removes id from the active set and publishes
// TopicEntityDestroyed. Component cleanup is left to the subscribers.
func (m *EntityManager) DestroyEntity(id EntityID) bool {
	if _, ok := m.active[id]; !ok {
		m.log.Warn("destroy of inactive entity", zap.Uint64("entity", uint64(id)))
		return false
	}
	delete(m.active, id)
	if m.bus != nil {
		m.bus.Publish(TopicEntityDestroyed, id)
	}
	return true
}

func (m *EntityManager) Alive(id EntityID) bool {
	_, ok := m.active[id]
	return ok
}

// ActiveEntities returns a live view of the active set.
func (m *EntityManager) ActiveEntities() ActiveSet {
	return ActiveSet{m: m.active}
}

// NextID is the id the next CreateEntity call will return.
func (m *EntityManager) NextID() EntityID { return m.next }

// Reset clears the active set and rewinds the counter. Only snapshot loading
// should call this; views returned by ActiveEntities stay valid.
func (m *EntityManager) Reset() {
	clear(m.active)
	m.next = 0
}

// Restore marks a specific id active and moves the counter past it so later
// allocations cannot collide. It returns false if id is already active or
// is MaxEntityID.
func (m *EntityManager) Restore(id EntityID) bool {
	if id == MaxEntityID {
		m.log.Warn("refusing to restore reserved entity id", zap.Uint64("entity", uint64(id)))
		return false
	}
	if _, ok := m.active[id]; ok {
		return false
	}
	m.active[id] = struct{}{}
	if id >= m.next {
		m.next = id + 1
	}
	return true
}

// ActiveSet is a read-only live view of the alive entities.
type ActiveSet struct {
	m map[EntityID]struct{}
}

func (s ActiveSet) Has(id EntityID) bool {
	_, ok := s.m[id]
	return ok
}

func (s ActiveSet) Len() int { return len(s.m) }

func (s ActiveSet) Each(fn func(EntityID)) {
	for id := range s.m {
		fn(id)
	}
}

// Sorted returns the ids in ascending order.
func (s ActiveSet) Sorted() []EntityID {
	return sortedIDs(s.m)
}

// EntitySet is a query result.
type EntitySet map[EntityID]struct{}

func (s EntitySet) Has(id EntityID) bool {
	_, ok := s[id]
	return ok
}

func (s EntitySet) Len() int { return len(s) }

func (s EntitySet) Sorted() []EntityID {
	return sortedIDs(s)
}

func sortedIDs(m map[EntityID]struct{}) []EntityID {
	out := make([]EntityID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

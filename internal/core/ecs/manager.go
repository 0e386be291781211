package ecs

import (
	"sort"

	"go.uber.org/zap"
)

// ComponentManager owns every component instance, keyed by type name and
// then by entity. It never checks entity liveness; the World keeps both in
// step through the destruction event.
type ComponentManager struct {
	stores map[string]*componentStore
	log    *zap.Logger
}

func NewComponentManager(log *zap.Logger) *ComponentManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &ComponentManager{
		stores: make(map[string]*componentStore, 16),
		log:    log,
	}
}

func (m *ComponentManager) store(ct ComponentType) *componentStore {
	s, ok := m.stores[ct.Name()]
	if !ok {
		s = newComponentStore(ct)
		m.stores[ct.Name()] = s
	}
	return s
}

// Add attaches a new ct instance built from args. If e already has one, the
// existing instance is returned untouched. Only a constructor failure is an
// error, always a *ConstructionError.
func (m *ComponentManager) Add(e EntityID, ct ComponentType, args ...any) (Component, error) {
	s := m.store(ct)
	if c, ok := s.data[e]; ok {
		m.log.Warn("component already present",
			zap.Uint64("entity", uint64(e)),
			zap.String("component", ct.Name()))
		return c, nil
	}
	c, err := ct.New(args...)
	if err != nil {
		return nil, newConstructionError(ct.Name(), e, err)
	}
	s.data[e] = c
	return c, nil
}

// Insert stores c for e, replacing any previous instance. Snapshot restore
// uses this to skip the guard in Add.
func (m *ComponentManager) Insert(e EntityID, ct ComponentType, c Component) {
	m.store(ct).data[e] = c
}

func (m *ComponentManager) Get(e EntityID, name string) (Component, bool) {
	s, ok := m.stores[name]
	if !ok {
		return nil, false
	}
	c, ok := s.data[e]
	return c, ok
}

func (m *ComponentManager) Has(e EntityID, name string) bool {
	_, ok := m.Get(e, name)
	return ok
}

// Type returns the ComponentType a store was created with.
func (m *ComponentManager) Type(name string) (ComponentType, bool) {
	s, ok := m.stores[name]
	if !ok {
		return nil, false
	}
	return s.typ, true
}

func (m *ComponentManager) Remove(e EntityID, name string) bool {
	s, ok := m.stores[name]
	if !ok {
		return false
	}
	if _, ok := s.data[e]; !ok {
		return false
	}
	delete(s.data, e)
	return true
}

// RemoveAll clears e from every store.
func (m *ComponentManager) RemoveAll(e EntityID) {
	for _, s := range m.stores {
		delete(s.data, e)
	}
}

// ToggleComponent flips the active flag and reports whether it changed,
// which is false only when the component is missing.
func (m *ComponentManager) ToggleComponent(e EntityID, name string) bool {
	c, ok := m.Get(e, name)
	if !ok {
		m.log.Warn("toggle of missing component",
			zap.Uint64("entity", uint64(e)),
			zap.String("component", name))
		return false
	}
	c.SetActive(!c.Active())
	return true
}

// SetComponentActive forces the active flag and reports whether it changed.
func (m *ComponentManager) SetComponentActive(e EntityID, name string, active bool) bool {
	c, ok := m.Get(e, name)
	if !ok {
		m.log.Warn("toggle of missing component",
			zap.Uint64("entity", uint64(e)),
			zap.String("component", name))
		return false
	}
	if c.Active() == active {
		return false
	}
	c.SetActive(active)
	return true
}

// ComponentsFor lists every component of e ordered by type name.
func (m *ComponentManager) ComponentsFor(e EntityID) []NamedComponent {
	var out []NamedComponent
	for name, s := range m.stores {
		if c, ok := s.data[e]; ok {
			out = append(out, NamedComponent{Name: name, Component: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpdateComponentData assigns one existing field through the type's schema.
func (m *ComponentManager) UpdateComponentData(e EntityID, name, key string, value any) bool {
	s, ok := m.stores[name]
	if !ok {
		m.log.Warn("update of unknown component type", zap.String("component", name))
		return false
	}
	c, ok := s.data[e]
	if !ok {
		m.log.Warn("update of missing component",
			zap.Uint64("entity", uint64(e)),
			zap.String("component", name))
		return false
	}
	if err := s.typ.Set(c, key, value); err != nil {
		m.log.Warn("component field update rejected",
			zap.Uint64("entity", uint64(e)),
			zap.String("component", name),
			zap.String("field", key),
			zap.Error(err))
		return false
	}
	return true
}

// FieldValue reads one field, including ActiveKey.
func (m *ComponentManager) FieldValue(e EntityID, name, key string) (any, bool) {
	s, ok := m.stores[name]
	if !ok {
		return nil, false
	}
	c, ok := s.data[e]
	if !ok {
		return nil, false
	}
	return s.typ.Get(c, key)
}

// Encode returns the structural copy of one component.
func (m *ComponentManager) Encode(e EntityID, name string) (Data, bool) {
	s, ok := m.stores[name]
	if !ok {
		return nil, false
	}
	c, ok := s.data[e]
	if !ok {
		return nil, false
	}
	return s.typ.Encode(c), true
}

// SerializeState copies every instance into records grouped by type name.
// Records within a type are ordered by entity. Types with no instances are
// omitted.
func (m *ComponentManager) SerializeState() map[string][]ComponentRecord {
	out := make(map[string][]ComponentRecord, len(m.stores))
	for name, s := range m.stores {
		if len(s.data) == 0 {
			continue
		}
		recs := make([]ComponentRecord, 0, len(s.data))
		for e, c := range s.data {
			recs = append(recs, ComponentRecord{Entity: e, Data: s.typ.Encode(c)})
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].Entity < recs[j].Entity })
		out[name] = recs
	}
	return out
}

// Counts reports the number of stored instances per type.
func (m *ComponentManager) Counts() map[string]int {
	out := make(map[string]int, len(m.stores))
	for name, s := range m.stores {
		out[name] = len(s.data)
	}
	return out
}

func (m *ComponentManager) Reset() {
	clear(m.stores)
}

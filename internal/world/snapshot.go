package world

import (
	"fmt"
	"sort"

	"github.com/sceneforge/engine/internal/core/ecs"
	"go.uber.org/zap"
)

// EntityState is the full structural copy of one entity, enough to recreate
// it after destruction.
type EntityState struct {
	ID         ecs.EntityID     `json:"id" yaml:"id"`
	Components []ComponentState `json:"components" yaml:"components"`
}

type ComponentState struct {
	Name string   `json:"name" yaml:"name"`
	Data ecs.Data `json:"data" yaml:"data"`
}

// ProjectState is the snapshot exchanged with persistence collaborators.
type ProjectState struct {
	Entities   []ecs.EntityID                   `json:"entities" yaml:"entities"`
	Components map[string][]ecs.ComponentRecord `json:"components" yaml:"components"`
}

// FullEntityState captures every component of id. ok is false if id is not
// active.
func (w *World) FullEntityState(id ecs.EntityID) (*EntityState, bool) {
	if !w.entities.Alive(id) {
		return nil, false
	}
	st := &EntityState{ID: id}
	for _, nc := range w.components.ComponentsFor(id) {
		d, ok := w.components.Encode(id, nc.Name)
		if !ok {
			continue
		}
		st.Components = append(st.Components, ComponentState{Name: nc.Name, Data: d})
	}
	return st, true
}

// CreateEntityFromState recreates an entity under a fresh id; the recorded
// id may have been reissued since. Unregistered component types are skipped.
// Nothing is created if any component fails to decode.
func (w *World) CreateEntityFromState(st *EntityState) (ecs.EntityID, error) {
	if st == nil {
		return 0, newSerializationError("create entity from state", fmt.Errorf("nil state"))
	}
	type built struct {
		ct ecs.ComponentType
		c  ecs.Component
	}
	parts := make([]built, 0, len(st.Components))
	for _, cs := range st.Components {
		ct, ok := w.types.Lookup(cs.Name)
		if !ok {
			w.log.Warn("skipping unregistered component type", zap.String("component", cs.Name))
			continue
		}
		c, err := w.decode(ct, cs.Data)
		if err != nil {
			return 0, newSerializationError("create entity from state", err)
		}
		parts = append(parts, built{ct: ct, c: c})
	}

	id := w.entities.CreateEntity()
	for _, p := range parts {
		w.components.Insert(id, p.ct, p.c)
	}
	return id, nil
}

// ProjectState snapshots every active entity and component.
func (w *World) ProjectState() (st *ProjectState, err error) {
	defer func() {
		if r := recover(); r != nil {
			st, err = nil, newSerializationError("get project state", fmt.Errorf("%v", r))
		}
	}()
	comps := w.components.SerializeState()
	for name, recs := range comps {
		for _, r := range recs {
			if r.Data == nil {
				return nil, newSerializationError("get project state",
					fmt.Errorf("component %s of entity %d did not encode", name, r.Entity))
			}
		}
	}
	return &ProjectState{
		Entities:   w.entities.ActiveEntities().Sorted(),
		Components: comps,
	}, nil
}

// LoadProjectState replaces the world with st. Recorded entity ids are kept
// as they are, so component records attach to the entity they were saved
// with. The snapshot is decoded fully before anything is reset; on error the
// world is left untouched.
func (w *World) LoadProjectState(st *ProjectState) error {
	if st == nil {
		return newSerializationError("load project state", fmt.Errorf("nil state"))
	}

	ids := make(map[ecs.EntityID]struct{}, len(st.Entities))
	for _, id := range st.Entities {
		if id == ecs.MaxEntityID {
			return newSerializationError("load project state", fmt.Errorf("entity id %d is reserved", id))
		}
		if _, dup := ids[id]; dup {
			return newSerializationError("load project state", fmt.Errorf("entity %d listed twice", id))
		}
		ids[id] = struct{}{}
	}

	type placed struct {
		id ecs.EntityID
		ct ecs.ComponentType
		c  ecs.Component
	}
	names := make([]string, 0, len(st.Components))
	for name := range st.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []placed
	for _, name := range names {
		ct, ok := w.types.Lookup(name)
		if !ok {
			w.log.Warn("skipping unregistered component type", zap.String("component", name))
			continue
		}
		for _, rec := range st.Components[name] {
			if _, ok := ids[rec.Entity]; !ok {
				w.log.Warn("skipping component of unlisted entity",
					zap.String("component", name),
					zap.Uint64("entity", uint64(rec.Entity)))
				continue
			}
			c, err := w.decode(ct, rec.Data)
			if err != nil {
				return newSerializationError("load project state",
					fmt.Errorf("entity %d: %w", rec.Entity, err))
			}
			parts = append(parts, placed{id: rec.Entity, ct: ct, c: c})
		}
	}

	w.Deselect()
	w.entities.Reset()
	w.components.Reset()
	for _, id := range st.Entities {
		w.entities.Restore(id)
	}
	for _, p := range parts {
		w.components.Insert(p.id, p.ct, p.c)
	}
	w.log.Info("project state loaded",
		zap.Int("entities", len(st.Entities)),
		zap.Int("components", len(parts)))
	return nil
}

func (w *World) decode(ct ecs.ComponentType, d ecs.Data) (ecs.Component, error) {
	c, err := ct.New()
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", ct.Name(), err)
	}
	if err := ct.Decode(c, d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ct.Name(), err)
	}
	return c, nil
}

package ecs

// EntitiesWith returns the entities holding every named component with each
// of them active. It walks the smallest store and checks the others; that is
// a performance choice only, the result does not depend on it.
func (m *ComponentManager) EntitiesWith(names ...string) EntitySet {
	out := make(EntitySet)
	if len(names) == 0 {
		return out
	}
	stores := make([]*componentStore, 0, len(names))
	for _, n := range names {
		s, ok := m.stores[n]
		if !ok {
			return out
		}
		stores = append(stores, s)
	}

	base := 0
	for i := 1; i < len(stores); i++ {
		if len(stores[i].data) < len(stores[base].data) {
			base = i
		}
	}

	for id, c := range stores[base].data {
		if !c.Active() {
			continue
		}
		match := true
		for i, s := range stores {
			if i == base {
				continue
			}
			o, ok := s.data[id]
			if !ok || !o.Active() {
				match = false
				break
			}
		}
		if match {
			out[id] = struct{}{}
		}
	}
	return out
}

// GetAs returns e's instance of schema s as its concrete type.
func GetAs[T any](m *ComponentManager, e EntityID, s *Schema[T]) (*T, bool) {
	c, ok := m.Get(e, s.Name())
	if !ok {
		return nil, false
	}
	t, ok := any(c).(*T)
	return t, ok
}

// Each1 visits every active instance of A.
func Each1[A any](m *ComponentManager, sa *Schema[A], fn func(EntityID, *A)) {
	st, ok := m.stores[sa.Name()]
	if !ok {
		return
	}
	for id, c := range st.data {
		if !c.Active() {
			continue
		}
		if a, ok := any(c).(*A); ok {
			fn(id, a)
		}
	}
}

// Each2 visits entities that have active A and B, iterating the smaller
// store and probing the larger one.
func Each2[A, B any](m *ComponentManager, sa *Schema[A], sb *Schema[B], fn func(EntityID, *A, *B)) {
	stA, okA := m.stores[sa.Name()]
	stB, okB := m.stores[sb.Name()]
	if !okA || !okB {
		return
	}
	if len(stA.data) <= len(stB.data) {
		for id, ca := range stA.data {
			cb, ok := stB.data[id]
			if !ok || !ca.Active() || !cb.Active() {
				continue
			}
			fn(id, any(ca).(*A), any(cb).(*B))
		}
	} else {
		for id, cb := range stB.data {
			ca, ok := stA.data[id]
			if !ok || !ca.Active() || !cb.Active() {
				continue
			}
			fn(id, any(ca).(*A), any(cb).(*B))
		}
	}
}

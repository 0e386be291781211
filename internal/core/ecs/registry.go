package ecs

import "sort"

// Registry maps component type names to their ComponentType so snapshots can
// be turned back into live instances.
type Registry struct {
	types map[string]ComponentType
}

func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]ComponentType, 16),
	}
}

// Register adds ct under its name. It returns false if the name is taken.
func (r *Registry) Register(ct ComponentType) bool {
	if _, ok := r.types[ct.Name()]; ok {
		return false
	}
	r.types[ct.Name()] = ct
	return true
}

func (r *Registry) Lookup(name string) (ComponentType, bool) {
	ct, ok := r.types[name]
	return ct, ok
}

// Names returns the registered type names in ascending order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

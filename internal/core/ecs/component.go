package ecs

import (
	"fmt"
	"sort"
)

// ActiveKey is the data key carrying a component's active flag.
const ActiveKey = "isActive"

// Component is implemented by every component record, normally by embedding Base.
type Component interface {
	Active() bool
	SetActive(bool)
}

// Base carries the active flag shared by all components.
type Base struct {
	IsActive bool
}

func (b *Base) Active() bool { return b.IsActive }
func (b *Base) SetActive(on bool) { b.IsActive = on }

// Data is the structural form of a component: field name to primitive value.
type Data map[string]any

// ComponentType knows how to build, inspect and (de)serialize one kind of
// component. Schema is the only implementation most code needs.
type ComponentType interface {
	Name() string
	// New builds an active instance. Positional args follow field order.
	New(args ...any) (Component, error)
	Fields() []FieldInfo
	Get(c Component, key string) (any, bool)
	// Set assigns an existing field; it never creates one.
	Set(c Component, key string, v any) error
	Encode(c Component) Data
	Decode(c Component, d Data) error
}

// Schema declares the settable fields of component struct T.
// *T must implement Component.
type Schema[T any] struct {
	name   string
	fields []FieldDef[T]
	index  map[string]int
}

// NewSchema panics on a malformed declaration; schemas are package-level vars.
func NewSchema[T any](name string, defs ...FieldDef[T]) *Schema[T] {
	if _, ok := any(new(T)).(Component); !ok {
		panic(fmt.Sprintf("ecs: *%T does not implement Component", *new(T)))
	}
	s := &Schema[T]{
		name:   name,
		fields: defs,
		index:  make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		if d.name == ActiveKey {
			panic(fmt.Sprintf("ecs: schema %s redeclares %s", name, ActiveKey))
		}
		if _, dup := s.index[d.name]; dup {
			panic(fmt.Sprintf("ecs: schema %s declares %s twice", name, d.name))
		}
		s.index[d.name] = i
	}
	return s
}

func (s *Schema[T]) Name() string { return s.name }

func (s *Schema[T]) New(args ...any) (Component, error) {
	if len(args) > len(s.fields) {
		return nil, fmt.Errorf("%s takes at most %d arguments, got %d", s.name, len(s.fields), len(args))
	}
	t := new(T)
	for _, f := range s.fields {
		if f.def == nil {
			continue
		}
		if err := f.set(t, f.def); err != nil {
			return nil, fmt.Errorf("default %s: %w", f.name, err)
		}
	}
	for i, a := range args {
		if err := s.fields[i].set(t, a); err != nil {
			return nil, err
		}
	}
	c := any(t).(Component)
	c.SetActive(true)
	return c, nil
}

// Zero returns a fresh active instance with defaults applied.
func (s *Schema[T]) Zero() *T {
	c, err := s.New()
	if err != nil {
		panic(err)
	}
	return any(c).(*T)
}

func (s *Schema[T]) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.fields))
	for i, f := range s.fields {
		out[i] = FieldInfo{Name: f.name, Kind: f.kind}
	}
	return out
}

func (s *Schema[T]) Get(c Component, key string) (any, bool) {
	t, ok := any(c).(*T)
	if !ok {
		return nil, false
	}
	if key == ActiveKey {
		return c.Active(), true
	}
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.fields[i].get(t), true
}

func (s *Schema[T]) Set(c Component, key string, v any) error {
	t, ok := any(c).(*T)
	if !ok {
		return fmt.Errorf("%w: %T is not a %s", ErrFieldType, c, s.name)
	}
	if key == ActiveKey {
		on, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants bool, got %T", ErrFieldType, ActiveKey, v)
		}
		c.SetActive(on)
		return nil
	}
	i, ok := s.index[key]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.name, key)
	}
	return s.fields[i].set(t, v)
}

func (s *Schema[T]) Encode(c Component) Data {
	t, ok := any(c).(*T)
	if !ok {
		return nil
	}
	d := make(Data, len(s.fields)+1)
	for _, f := range s.fields {
		d[f.name] = f.get(t)
	}
	d[ActiveKey] = c.Active()
	return d
}

// Decode copies every known key of d into c. Unknown keys are ignored so
// snapshots written by newer schemas still load.
func (s *Schema[T]) Decode(c Component, d Data) error {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, known := s.index[k]; !known && k != ActiveKey {
			continue
		}
		if err := s.Set(c, k, d[k]); err != nil {
			return err
		}
	}
	return nil
}

// componentStore holds every instance of one component type.
type componentStore struct {
	typ  ComponentType
	data map[EntityID]Component
}

func newComponentStore(ct ComponentType) *componentStore {
	return &componentStore{
		typ:  ct,
		data: make(map[EntityID]Component, 64),
	}
}

// ComponentRecord is one serialized component instance.
type ComponentRecord struct {
	Entity EntityID `json:"entity" yaml:"entity"`
	Data   Data     `json:"data" yaml:"data"`
}

// NamedComponent pairs an instance with its type name.
type NamedComponent struct {
	Name      string
	Component Component
}

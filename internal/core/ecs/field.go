package ecs

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrFieldType    = errors.New("field type mismatch")
)

// Kind is the primitive type of a settable component field.
type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// FieldInfo describes one schema field.
type FieldInfo struct {
	Name string
	Kind Kind
}

// FieldDef binds a named field to a struct member of T.
type FieldDef[T any] struct {
	name string
	kind Kind
	get  func(*T) any
	set  func(*T, any) error
	def  any
}

// Default sets the value New assigns before positional arguments.
func (f FieldDef[T]) Default(v any) FieldDef[T] {
	f.def = v
	return f
}

func Float[T any](name string, ref func(*T) *float64) FieldDef[T] {
	return FieldDef[T]{
		name: name,
		kind: KindFloat,
		get:  func(t *T) any { return *ref(t) },
		set: func(t *T, v any) error {
			f, ok := toFloat(v)
			if !ok {
				return fmt.Errorf("%w: %s wants float, got %T", ErrFieldType, name, v)
			}
			*ref(t) = f
			return nil
		},
	}
}

func Int[T any](name string, ref func(*T) *int) FieldDef[T] {
	return FieldDef[T]{
		name: name,
		kind: KindInt,
		get:  func(t *T) any { return *ref(t) },
		set: func(t *T, v any) error {
			n, ok := toInt(v)
			if !ok {
				return fmt.Errorf("%w: %s wants int, got %T", ErrFieldType, name, v)
			}
			*ref(t) = n
			return nil
		},
	}
}

func String[T any](name string, ref func(*T) *string) FieldDef[T] {
	return FieldDef[T]{
		name: name,
		kind: KindString,
		get:  func(t *T) any { return *ref(t) },
		set: func(t *T, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %s wants string, got %T", ErrFieldType, name, v)
			}
			*ref(t) = s
			return nil
		},
	}
}

func Bool[T any](name string, ref func(*T) *bool) FieldDef[T] {
	return FieldDef[T]{
		name: name,
		kind: KindBool,
		get:  func(t *T) any { return *ref(t) },
		set: func(t *T, v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%w: %s wants bool, got %T", ErrFieldType, name, v)
			}
			*ref(t) = b
			return nil
		},
	}
}

// toFloat accepts every numeric Go type; decoders disagree on what a number is.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// intFromFloat accepts integral floats that fit in an int.
func intFromFloat(f float64) (int, bool) {
	// -MinInt is the first float above MaxInt and is exactly representable.
	if f != math.Trunc(f) || f < math.MinInt || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

// toInt accepts integer types and integral floats.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case uint:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float64:
		return intFromFloat(n)
	case float32:
		return intFromFloat(float64(n))
	}
	return 0, false
}

package bdocfilter

import (
	"reflect"
	"sync"
)

// ValueSerializer converts a host-typed literal into the value a BDOC
// document leaf expects. Most Go types need no conversion (the driver's own
// codec handles them at marshal time); register a serializer when a field's
// declared type needs a custom wire representation, e.g. an enum that must
// travel as its underlying string.
type ValueSerializer[T any] func(v T) (any, error)

type anySerializer func(v any) (any, error)

// Registry looks up the value serializer registered for a Go type. A
// Registry is safe for concurrent read and write; rendering never mutates
// it, so the same Registry may be shared across concurrent Render calls.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]anySerializer
}

// NewRegistry returns an empty Registry. Types with no registered serializer
// fall back to passing the literal through unchanged, which is correct for
// every primitive BSON-representable type.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]anySerializer)}
}

// DefaultRegistry is an empty, ready-to-use Registry for callers that have
// no custom field types to register.
var DefaultRegistry = NewRegistry()

// Register installs ser as the serializer for T.
func Register[T any](r *Registry, ser ValueSerializer[T]) {
	t := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = func(v any) (any, error) {
		typed, ok := v.(T)
		if !ok {
			return nil, invalidFilter("value %v is not assignable to registered type %s", v, t)
		}
		return ser(typed)
	}
}

// Get returns the serializer registered for T, if any.
func Get[T any](r *Registry) (anySerializer, bool) {
	return r.byReflectType(reflect.TypeFor[T]())
}

func (r *Registry) byReflectType(t reflect.Type) (anySerializer, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ser, ok := r.byType[t]
	return ser, ok
}

// serializeAs runs v through the registered serializer for T, falling back
// to passing v through unchanged when no serializer is registered.
func serializeAs[T any](r *Registry, v T) (any, error) {
	if ser, ok := Get[T](r); ok {
		return ser(v)
	}
	return v, nil
}

// serializeByType is the runtime analogue of serializeAs used when the
// field's declared type is only known as a reflect.Type (the string
// field-handle path, resolved through a DocumentSerializer).
func serializeByType(r *Registry, t reflect.Type, v any) (any, error) {
	if ser, ok := r.byReflectType(t); ok {
		return ser(v)
	}
	return v, nil
}

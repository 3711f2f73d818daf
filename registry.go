package smartjson

import (
	"fmt"
	"reflect"
	"sync"
)

// Handler converts a value of a type the converter does not recognize into
// something it does. The result is converted again, so a handler may return
// structs, maps or slices.
type Handler func(v any) (any, error)

// Registry maps qualified type names to custom handlers. Populate it before
// passing it to New; New seals it and later registrations fail.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	sealed   bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register installs h for the type called name (see QualifiedTypeName).
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("register handler: empty type name")
	}
	if h == nil {
		return fmt.Errorf("register handler for %s: nil handler", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("register handler for %s: registry is sealed", name)
	}
	if r.handlers == nil {
		r.handlers = make(map[string]Handler)
	}
	if _, dup := r.handlers[name]; dup {
		return fmt.Errorf("register handler for %s: already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// RegisterType installs h for the Go type T.
func RegisterType[T any](r *Registry, h Handler) error {
	return r.Register(QualifiedTypeName(reflect.TypeOf((*T)(nil)).Elem()), h)
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// QualifiedTypeName returns "pkgpath.Name" for named types, prefixed with
// '*' per pointer level. Unnamed types use their Go syntax.
func QualifiedTypeName(rt reflect.Type) string {
	if rt == nil {
		return "nil"
	}
	prefix := ""
	for rt.Kind() == reflect.Pointer && rt.Name() == "" {
		prefix += "*"
		rt = rt.Elem()
	}
	if rt.Name() != "" && rt.PkgPath() != "" {
		return prefix + rt.PkgPath() + "." + rt.Name()
	}
	return prefix + rt.String()
}

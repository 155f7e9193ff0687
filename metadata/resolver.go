package metadata

import (
	"reflect"
	"strings"
	"sync"
)

// TypeResolver resolves declared type names to runtime types. It doubles as
// the module-handle collaborator in the engine's injection pool.
type TypeResolver interface {
	TypeByName(name string) (reflect.Type, bool)
}

// Registry is a TypeResolver backed by explicit registration. Safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]reflect.Type)}
}

// Register binds name to the type of v (not its value). A pointer example
// registers the pointee.
func (r *Registry) Register(name string, v any) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.RegisterType(name, t)
}

// RegisterType binds name to t directly.
func (r *Registry) RegisterType(name string, t reflect.Type) {
	if name == "" || t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = t
}

// TypeByName resolves name against registered entries. A name with no exact
// match is retried as a "pkg.Type" suffix of registered full paths.
func (r *Registry) TypeByName(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.byName[name]; ok {
		return t, true
	}
	for registered, t := range r.byName {
		if strings.HasSuffix(registered, "/"+name) || t.String() == name {
			return t, true
		}
	}
	return nil, false
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

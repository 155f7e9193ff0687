package discover

import (
	"reflect"
	"strings"
)

// worklist is the per-invocation ordered set of candidate types awaiting
// processing. It is local to one ProcessTypes call and never shared.
type worklist struct {
	engine *Engine
	order  []reflect.Type
	member map[reflect.Type]struct{}
}

func newWorklist(e *Engine) *worklist {
	return &worklist{engine: e, member: make(map[reflect.Type]struct{})}
}

// add enqueues t unless it is excluded, already processed, or already
// pending. Pointer, slice and array shells are stripped to their element
// type first.
func (w *worklist) add(t reflect.Type) bool {
	for t != nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array:
			t = t.Elem()
			continue
		}
		break
	}
	if t == nil || w.engine.excluded(t) {
		return false
	}
	if w.engine.isProcessed(t) {
		return false
	}
	if _, pending := w.member[t]; pending {
		return false
	}
	w.member[t] = struct{}{}
	w.order = append(w.order, t)
	return true
}

// next dequeues the oldest pending type.
func (w *worklist) next() (reflect.Type, bool) {
	if len(w.order) == 0 {
		return nil, false
	}
	t := w.order[0]
	w.order = w.order[1:]
	delete(w.member, t)
	return t, true
}

// addReachable walks everything structurally reachable from t and feeds
// named types into the worklist. The visited set is scoped to one type's
// critical section and breaks cycles through self-referential shapes.
func (w *worklist) addReachable(t reflect.Type, visited map[reflect.Type]struct{}) {
	queue := []reflect.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil {
			continue
		}
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}

		if cur.PkgPath() != "" {
			w.add(cur)
		}

		switch cur.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
			queue = append(queue, cur.Elem())
		case reflect.Map:
			queue = append(queue, cur.Key(), cur.Elem())
		case reflect.Struct:
			// Named struct fields are walked inside that type's own
			// critical section; only anonymous shapes are expanded here.
			if cur.PkgPath() == "" {
				for i := 0; i < cur.NumField(); i++ {
					queue = append(queue, cur.Field(i).Type)
				}
			}
		}
	}
}

// excluded reports whether t can never carry metadata: builtin and unnamed
// types, the standard library, and caller-configured package prefixes.
// Exclusion is silent and never an error.
func (e *Engine) excluded(t reflect.Type) bool {
	pkg := t.PkgPath()
	if pkg == "" {
		return true
	}
	if stdlibPackage(pkg) {
		return true
	}
	for _, prefix := range e.excludePrefixes {
		if strings.HasPrefix(pkg, prefix) {
			return true
		}
	}
	return false
}

// stdlibPackage reports whether path belongs to the standard library: its
// first segment carries no dot.
func stdlibPackage(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// primitive reports whether t is a predeclared basic type. Primitives enter
// the processed set but carry no metadata; named basic types (declared
// scalar types) are not primitives and are processed normally.
func primitive(t reflect.Type) bool {
	if t.PkgPath() != "" {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	}
	return false
}

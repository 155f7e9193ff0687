package discover

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/serialmap/serialmap/mapper"
)

// TypedNull is a typed-null argument marker: it binds a zero value of Type
// to a matching constructor parameter.
type TypedNull struct {
	Type reflect.Type
}

// KindRegistry maps converter-kind names to candidate constructors. A
// constructor is any func returning a Converter, optionally with a trailing
// error. Safe for concurrent use.
type KindRegistry struct {
	mu    sync.RWMutex
	kinds map[string][]reflect.Value
}

// NewKindRegistry returns an empty KindRegistry.
func NewKindRegistry() *KindRegistry {
	return &KindRegistry{kinds: make(map[string][]reflect.Value)}
}

var (
	converterType = reflect.TypeOf((*mapper.Converter)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// RegisterKind registers constructor candidates under name. Invalid
// constructor shapes panic; kind registration happens at setup time and a
// bad shape is a programming error.
func (r *KindRegistry) RegisterKind(name string, constructors ...any) {
	if name == "" {
		panic("discover: converter kind name must not be empty")
	}
	values := make([]reflect.Value, 0, len(constructors))
	for _, c := range constructors {
		v := reflect.ValueOf(c)
		t := v.Type()
		if t.Kind() != reflect.Func || t.IsVariadic() {
			panic(fmt.Sprintf("discover: kind %q: constructor must be a non-variadic func, got %T", name, c))
		}
		switch t.NumOut() {
		case 1:
			if !t.Out(0).AssignableTo(converterType) {
				panic(fmt.Sprintf("discover: kind %q: constructor must return a Converter", name))
			}
		case 2:
			if !t.Out(0).AssignableTo(converterType) || t.Out(1) != errorType {
				panic(fmt.Sprintf("discover: kind %q: constructor must return (Converter, error)", name))
			}
		default:
			panic(fmt.Sprintf("discover: kind %q: constructor must return a Converter or (Converter, error)", name))
		}
		values = append(values, v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[name] = append(r.kinds[name], values...)
}

// constructors returns the candidates for name.
func (r *KindRegistry) constructors(name string) []reflect.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kinds[name]
}

// construct builds a converter by choosing the best-matching constructor
// shape: candidates are tried in order of decreasing parameter count, then
// decreasing explicit-argument consumption, and the first fully satisfiable
// one wins. Parameters bind first against the explicit argument vector, then
// against the ambient collaborator pool.
func construct(candidates []reflect.Value, explicit []any, ambient []reflect.Value) (mapper.Converter, error) {
	type scored struct {
		ctor reflect.Value
		in   []reflect.Value
		used int
	}
	var viable []scored

	for _, ctor := range candidates {
		in, used, ok := bindParams(ctor.Type(), explicit, ambient)
		if ok {
			viable = append(viable, scored{ctor: ctor, in: in, used: used})
		}
	}
	if len(viable) == 0 {
		return nil, fmt.Errorf("no constructor matches %d explicit argument(s)", len(explicit))
	}

	sort.SliceStable(viable, func(i, j int) bool {
		if len(viable[i].in) != len(viable[j].in) {
			return len(viable[i].in) > len(viable[j].in)
		}
		return viable[i].used > viable[j].used
	})

	return call(viable[0].ctor, viable[0].in)
}

// bindParams binds every parameter of ctor or reports failure. used counts
// explicit arguments consumed.
func bindParams(ctor reflect.Type, explicit []any, ambient []reflect.Value) ([]reflect.Value, int, bool) {
	in := make([]reflect.Value, ctor.NumIn())
	taken := make([]bool, len(explicit))
	used := 0

	for i := 0; i < ctor.NumIn(); i++ {
		param := ctor.In(i)
		bound := false

		for j, arg := range explicit {
			if taken[j] {
				continue
			}
			v, ok := bindValue(arg, param)
			if !ok {
				continue
			}
			in[i] = v
			taken[j] = true
			used++
			bound = true
			break
		}
		if bound {
			continue
		}

		for _, v := range ambient {
			if v.IsValid() && v.Type().AssignableTo(param) {
				in[i] = v
				bound = true
				break
			}
		}
		if !bound {
			return nil, 0, false
		}
	}
	return in, used, true
}

// bindValue converts one explicit argument to a parameter value.
func bindValue(arg any, param reflect.Type) (reflect.Value, bool) {
	if null, ok := arg.(TypedNull); ok {
		if null.Type != nil && null.Type.AssignableTo(param) {
			return reflect.Zero(param), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(arg)
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	if v.Type().AssignableTo(param) {
		return v, true
	}
	return reflect.Value{}, false
}

// call invokes ctor, turning a panic or a non-nil trailing error into a
// construction error.
func call(ctor reflect.Value, in []reflect.Value) (c mapper.Converter, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("constructor panicked: %v", r)
		}
	}()

	out := ctor.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	if out[0].IsZero() && out[0].Kind() != reflect.Struct {
		return nil, fmt.Errorf("constructor returned nil converter")
	}
	conv, ok := out[0].Interface().(mapper.Converter)
	if !ok {
		return nil, fmt.Errorf("constructor returned %T, not a Converter", out[0].Interface())
	}
	return conv, nil
}

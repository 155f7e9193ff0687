// Package mapper provides the composable chain that decides, for every
// program type and field, which serialized name and structural role applies.
//
// A chain is built by wrapping stages around a terminal stage. Each stage
// holds exactly one inner Mapper and forwards every capability it does not
// alter. Composition order fixes precedence: the outermost stage wins unless
// it delegates.
package mapper

import (
	"reflect"
)

// Mapper is the capability set shared by every stage of the chain. Errors
// surface only from stages whose answers depend on work that can fail, such
// as metadata-driven discovery; plain table stages never return one.
type Mapper interface {
	// SerializedType returns the name the given type serializes under.
	SerializedType(t reflect.Type) (string, error)

	// SerializedMember returns the name the given member of owner
	// serializes under.
	SerializedMember(owner reflect.Type, member string) (string, error)

	// DefaultImplementation returns the concrete type to instantiate for an
	// interface or abstract type, or the type itself if none is registered.
	DefaultImplementation(t reflect.Type) (reflect.Type, error)

	// LocalConverter returns a converter registered for a single field of
	// owner, or nil.
	LocalConverter(owner reflect.Type, field string) (Converter, error)

	// IsIgnoredElement reports whether a serialized name encountered on
	// input should be silently dropped.
	IsIgnoredElement(name string) bool
}

// Default is the terminal stage of a chain. It resolves names by identity.
type Default struct{}

// SerializedType returns the full name of t, package path included.
func (Default) SerializedType(t reflect.Type) (string, error) {
	if t == nil {
		return "", nil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String(), nil
	}
	return t.PkgPath() + "." + t.Name(), nil
}

// SerializedMember echoes the member name unchanged.
func (Default) SerializedMember(_ reflect.Type, member string) (string, error) {
	return member, nil
}

// DefaultImplementation returns t itself.
func (Default) DefaultImplementation(t reflect.Type) (reflect.Type, error) {
	return t, nil
}

// LocalConverter returns nil; the terminal stage registers no converters.
func (Default) LocalConverter(reflect.Type, string) (Converter, error) {
	return nil, nil
}

// IsIgnoredElement returns false; nothing is suppressed by default.
func (Default) IsIgnoredElement(string) bool {
	return false
}

// Wrapper is the default-forwarding base for chain stages. Stages embed it
// and override only the capabilities they change.
type Wrapper struct {
	inner Mapper
}

// Wrap returns a Wrapper around inner.
func Wrap(inner Mapper) Wrapper {
	if inner == nil {
		panic("mapper: cannot wrap a nil inner mapper")
	}
	return Wrapper{inner: inner}
}

// Inner returns the wrapped mapper. FindStage uses it to walk the chain.
func (w Wrapper) Inner() Mapper { return w.inner }

func (w Wrapper) SerializedType(t reflect.Type) (string, error) {
	return w.inner.SerializedType(t)
}

func (w Wrapper) SerializedMember(owner reflect.Type, member string) (string, error) {
	return w.inner.SerializedMember(owner, member)
}

func (w Wrapper) DefaultImplementation(t reflect.Type) (reflect.Type, error) {
	return w.inner.DefaultImplementation(t)
}

func (w Wrapper) LocalConverter(owner reflect.Type, field string) (Converter, error) {
	return w.inner.LocalConverter(owner, field)
}

func (w Wrapper) IsIgnoredElement(name string) bool {
	return w.inner.IsIgnoredElement(name)
}

// chainWalker is implemented by any stage that exposes its inner mapper.
type chainWalker interface {
	Inner() Mapper
}

// FindStage walks the chain from m toward the terminal stage and returns the
// first stage of concrete type T.
func FindStage[T Mapper](m Mapper) (T, bool) {
	for m != nil {
		if s, ok := m.(T); ok {
			return s, true
		}
		w, ok := m.(chainWalker)
		if !ok {
			break
		}
		m = w.Inner()
	}
	var zero T
	return zero, false
}

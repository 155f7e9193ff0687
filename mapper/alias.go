package mapper

import (
	"reflect"
	"sync"
)

// AliasStage substitutes short names for fully qualified type names.
// Safe for concurrent use; discovery registers aliases while queries run.
//
// A class alias binds one exact type. A type alias binds a type together
// with everything assignable to it, checked in registration order.
type AliasStage struct {
	Wrapper
	mu           sync.RWMutex
	classAliases map[reflect.Type]string
	typeAliases  []typeAlias
}

type typeAlias struct {
	name string
	t    reflect.Type
}

// NewAliasStage returns an AliasStage wrapping inner.
func NewAliasStage(inner Mapper) *AliasStage {
	return &AliasStage{
		Wrapper:      Wrap(inner),
		classAliases: make(map[reflect.Type]string),
	}
}

// AddAlias registers name as the serialized form of exactly t.
// Once set, the binding is permanent for the mapper's lifetime.
func (s *AliasStage) AddAlias(name string, t reflect.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classAliases[t] = name
}

// AddTypeAlias registers name for t and any type assignable to it.
func (s *AliasStage) AddTypeAlias(name string, t reflect.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typeAliases = append(s.typeAliases, typeAlias{name: name, t: t})
}

func (s *AliasStage) SerializedType(t reflect.Type) (string, error) {
	s.mu.RLock()
	name, ok := s.classAliases[t]
	if !ok {
		for _, a := range s.typeAliases {
			if t != nil && t.AssignableTo(a.t) {
				name, ok = a.name, true
				break
			}
		}
	}
	s.mu.RUnlock()
	if ok {
		return name, nil
	}
	return s.Wrapper.SerializedType(t)
}

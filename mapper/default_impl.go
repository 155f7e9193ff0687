package mapper

import (
	"reflect"
	"sync"
)

// DefaultImplementationStage binds interface and abstract types to the
// concrete type instantiated for them on input. Safe for concurrent use.
type DefaultImplementationStage struct {
	Wrapper
	mu    sync.RWMutex
	impls map[reflect.Type]reflect.Type
}

// NewDefaultImplementationStage returns a stage wrapping inner.
func NewDefaultImplementationStage(inner Mapper) *DefaultImplementationStage {
	return &DefaultImplementationStage{
		Wrapper: Wrap(inner),
		impls:   make(map[reflect.Type]reflect.Type),
	}
}

// AddDefaultImplementation binds impl as the concrete type for ofType.
func (s *DefaultImplementationStage) AddDefaultImplementation(impl, ofType reflect.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impls[ofType] = impl
}

func (s *DefaultImplementationStage) DefaultImplementation(t reflect.Type) (reflect.Type, error) {
	s.mu.RLock()
	impl, ok := s.impls[t]
	s.mu.RUnlock()
	if ok {
		return impl, nil
	}
	return s.Wrapper.DefaultImplementation(t)
}

package mapper

import (
	"reflect"
	"sync"
)

// LocalConverterStage holds converters scoped to a single field of a single
// declaring type. Safe for concurrent use.
type LocalConverterStage struct {
	Wrapper
	mu         sync.RWMutex
	converters map[fieldKey]Converter
}

// NewLocalConverterStage returns a stage wrapping inner.
func NewLocalConverterStage(inner Mapper) *LocalConverterStage {
	return &LocalConverterStage{
		Wrapper:    Wrap(inner),
		converters: make(map[fieldKey]Converter),
	}
}

// RegisterLocalConverter binds c to owner's field.
func (s *LocalConverterStage) RegisterLocalConverter(owner reflect.Type, field string, c Converter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.converters[fieldKey{owner: owner, field: field}] = c
}

func (s *LocalConverterStage) LocalConverter(owner reflect.Type, field string) (Converter, error) {
	s.mu.RLock()
	c, ok := s.converters[fieldKey{owner: owner, field: field}]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}
	return s.Wrapper.LocalConverter(owner, field)
}

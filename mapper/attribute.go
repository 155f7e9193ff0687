package mapper

import (
	"reflect"
	"sync"
)

// AttributeStage records fields that serialize as attributes of their
// owner's element instead of child elements. Safe for concurrent use.
type AttributeStage struct {
	Wrapper
	mu    sync.RWMutex
	attrs map[fieldKey]struct{}
}

// NewAttributeStage returns a stage wrapping inner.
func NewAttributeStage(inner Mapper) *AttributeStage {
	return &AttributeStage{
		Wrapper: Wrap(inner),
		attrs:   make(map[fieldKey]struct{}),
	}
}

// MarkAsAttribute records owner's field as attribute-shaped.
func (s *AttributeStage) MarkAsAttribute(owner reflect.Type, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[fieldKey{owner: owner, field: field}] = struct{}{}
}

// IsAttribute reports whether owner's field was marked as an attribute.
func (s *AttributeStage) IsAttribute(owner reflect.Type, field string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.attrs[fieldKey{owner: owner, field: field}]
	return ok
}

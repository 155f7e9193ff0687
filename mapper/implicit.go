package mapper

import (
	"reflect"
	"sync"
)

// ImplicitMapping describes a field serialized as a bare sequence or map of
// child elements, without a wrapping element of its own.
type ImplicitMapping struct {
	// FieldName is the declared field on the owner type.
	FieldName string
	// ItemName is the element name for each item, or "" when each item's
	// type name is used instead.
	ItemName string
	// ItemType is the deduced item type, nil when unknown (arrays).
	ItemType reflect.Type
	// KeyName is the explicit key-field name for map-shaped fields, "" for
	// sequences.
	KeyName string
}

// ImplicitCollectionStage records implicit-collection markings per field.
// Safe for concurrent use.
type ImplicitCollectionStage struct {
	Wrapper
	mu       sync.RWMutex
	mappings map[fieldKey]ImplicitMapping
}

// NewImplicitCollectionStage returns a stage wrapping inner.
func NewImplicitCollectionStage(inner Mapper) *ImplicitCollectionStage {
	return &ImplicitCollectionStage{
		Wrapper:  Wrap(inner),
		mappings: make(map[fieldKey]ImplicitMapping),
	}
}

// Add records m for owner's field m.FieldName.
func (s *ImplicitCollectionStage) Add(owner reflect.Type, m ImplicitMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[fieldKey{owner: owner, field: m.FieldName}] = m
}

// ImplicitCollection returns the mapping recorded for owner's field.
func (s *ImplicitCollectionStage) ImplicitCollection(owner reflect.Type, field string) (ImplicitMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[fieldKey{owner: owner, field: field}]
	return m, ok
}

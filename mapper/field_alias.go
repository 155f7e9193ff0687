package mapper

import (
	"reflect"
	"sync"
)

type fieldKey struct {
	owner reflect.Type
	field string
}

// FieldAliasStage substitutes serialized names for individual fields.
// Safe for concurrent use.
type FieldAliasStage struct {
	Wrapper
	mu      sync.RWMutex
	aliases map[fieldKey]string
}

// NewFieldAliasStage returns a stage wrapping inner.
func NewFieldAliasStage(inner Mapper) *FieldAliasStage {
	return &FieldAliasStage{
		Wrapper: Wrap(inner),
		aliases: make(map[fieldKey]string),
	}
}

// AddFieldAlias registers alias as the serialized name of owner's field.
func (s *FieldAliasStage) AddFieldAlias(alias string, owner reflect.Type, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[fieldKey{owner: owner, field: field}] = alias
}

func (s *FieldAliasStage) SerializedMember(owner reflect.Type, member string) (string, error) {
	s.mu.RLock()
	alias, ok := s.aliases[fieldKey{owner: owner, field: member}]
	s.mu.RUnlock()
	if ok {
		return alias, nil
	}
	return s.Wrapper.SerializedMember(owner, member)
}

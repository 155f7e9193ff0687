package mapper

import (
	"reflect"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// ElementIgnoringStage suppresses serialized names on input, either by glob
// pattern or by exact omitted-field registration. Patterns are checked in
// insertion order; a name no stage in the chain suppresses is not ignored.
// Safe for concurrent use.
type ElementIgnoringStage struct {
	Wrapper
	mu       sync.RWMutex
	patterns []string
	omitted  map[fieldKey]struct{}
}

// NewElementIgnoringStage returns a stage wrapping inner.
func NewElementIgnoringStage(inner Mapper) *ElementIgnoringStage {
	return &ElementIgnoringStage{
		Wrapper: Wrap(inner),
		omitted: make(map[fieldKey]struct{}),
	}
}

// AddElementsToIgnore registers a glob pattern; any element whose full name
// matches it is suppressed. Pattern syntax is doublestar's.
func (s *ElementIgnoringStage) AddElementsToIgnore(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, pattern)
}

// OmitField suppresses owner's field entirely.
func (s *ElementIgnoringStage) OmitField(owner reflect.Type, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitted[fieldKey{owner: owner, field: field}] = struct{}{}
}

// IsOmitted reports whether owner's field was registered via OmitField.
func (s *ElementIgnoringStage) IsOmitted(owner reflect.Type, field string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.omitted[fieldKey{owner: owner, field: field}]
	return ok
}

func (s *ElementIgnoringStage) IsIgnoredElement(name string) bool {
	s.mu.RLock()
	for _, p := range s.patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			s.mu.RUnlock()
			return true
		}
	}
	s.mu.RUnlock()
	return s.Wrapper.IsIgnoredElement(name)
}

package mapper

import (
	"reflect"
	"sort"
	"sync"
)

// Converter is a strategy object serializing one value shape. The concrete
// encode/decode surface belongs to the marshaling layer; this core only
// needs the capability probe.
type Converter interface {
	// CanConvert reports whether the converter handles values of type t.
	CanConvert(t reflect.Type) bool
}

// ConverterRegistry accepts converters at a priority. Higher priority wins;
// among equal priorities the latest registration wins.
type ConverterRegistry interface {
	RegisterConverter(c Converter, priority int)
}

// ConverterLookup resolves the converter responsible for a type.
type ConverterLookup interface {
	ConverterFor(t reflect.Type) Converter
}

// PriorityRegistry is a ConverterRegistry and ConverterLookup backed by a
// priority-ordered list. Safe for concurrent use.
type PriorityRegistry struct {
	mu      sync.RWMutex
	entries []registryEntry
}

type registryEntry struct {
	converter Converter
	priority  int
	serial    int
}

// NewPriorityRegistry returns an empty registry.
func NewPriorityRegistry() *PriorityRegistry {
	return &PriorityRegistry{}
}

// RegisterConverter inserts c at the given priority.
func (r *PriorityRegistry) RegisterConverter(c Converter, priority int) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, registryEntry{
		converter: c,
		priority:  priority,
		serial:    len(r.entries),
	})
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].priority != r.entries[j].priority {
			return r.entries[i].priority > r.entries[j].priority
		}
		return r.entries[i].serial > r.entries[j].serial
	})
}

// ConverterFor returns the highest-priority converter accepting t, or nil.
func (r *PriorityRegistry) ConverterFor(t reflect.Type) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.converter.CanConvert(t) {
			return e.converter
		}
	}
	return nil
}

// Len returns the number of registered converters.
func (r *PriorityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

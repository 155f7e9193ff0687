package discover

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/serialmap/serialmap/mapper"
	"github.com/serialmap/serialmap/metadata"
)

// cacheKey identifies a converter instance by kind and by the structural
// encoding of its argument vector. Two declarations with equal literal
// arguments (and equal implicit-target prefix) share one instance.
type cacheKey struct {
	kind string
	args string
}

// converterCache is an append-only, concurrency-safe instance cache.
type converterCache struct {
	mu      sync.Mutex
	entries map[cacheKey]mapper.Converter
}

func newConverterCache() *converterCache {
	return &converterCache{entries: make(map[cacheKey]mapper.Converter)}
}

// get returns the cached instance or constructs one via build and inserts
// it. The winner of a concurrent race is kept; entries are immutable.
func (c *converterCache) get(key cacheKey, build func() (mapper.Converter, error)) (mapper.Converter, error) {
	c.mu.Lock()
	if conv, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return conv, nil
	}
	c.mu.Unlock()

	conv, err := build()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prior, ok := c.entries[key]; ok {
		return prior, nil
	}
	c.entries[key] = conv
	return conv, nil
}

func (c *converterCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// argumentVector flattens a declaration's literal arguments into the fixed
// canonical order, optionally prefixed with the implicit target type.
func argumentVector(decl metadata.ConverterDecl, target reflect.Type) []any {
	var args []any
	if decl.UseImplicitType && target != nil {
		args = append(args, target)
	}
	for _, v := range decl.Bools {
		args = append(args, v)
	}
	for _, v := range decl.Bytes {
		args = append(args, v)
	}
	for _, v := range decl.Chars {
		args = append(args, v)
	}
	for _, v := range decl.Doubles {
		args = append(args, v)
	}
	for _, v := range decl.Floats {
		args = append(args, v)
	}
	for _, v := range decl.Ints {
		args = append(args, v)
	}
	for _, v := range decl.Longs {
		args = append(args, v)
	}
	for _, v := range decl.Shorts {
		args = append(args, v)
	}
	for _, v := range decl.Strings {
		args = append(args, v)
	}
	for _, t := range decl.Types {
		args = append(args, t)
	}
	for _, t := range decl.Nulls {
		args = append(args, TypedNull{Type: t})
	}
	return args
}

// encodeArgs renders an argument vector into a deterministic structural key.
// Every element is length-prefixed so no literal can impersonate a separator
// or a neighboring element; two vectors encode equal iff they are equal.
func encodeArgs(args []any) string {
	var b strings.Builder
	for _, arg := range args {
		var elem string
		switch v := arg.(type) {
		case reflect.Type:
			elem = "type:" + v.String()
		case TypedNull:
			elem = "null:"
			if v.Type != nil {
				elem += v.Type.String()
			}
		default:
			elem = fmt.Sprintf("%T:%v", v, v)
		}
		fmt.Fprintf(&b, "%d:%s;", len(elem), elem)
	}
	return b.String()
}

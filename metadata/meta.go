// Package metadata defines the declarative per-type and per-field mapping
// metadata consumed by the discovery engine, together with readers that
// retrieve it from struct tags or from external YAML declaration tables.
package metadata

import "reflect"

// TypeMeta is the metadata recognized on a type. Every kind is optional and
// occurs at most once.
type TypeMeta struct {
	// Alias registers a short serialized name for the type, optionally with
	// a default implementation.
	Alias *Alias
	// AliasType registers a serialized name for the type and everything
	// assignable to it.
	AliasType *AliasType
	// Converters lists converters to instantiate and register globally.
	Converters []ConverterDecl
	// IncludeAlso names additional types to pull into discovery.
	IncludeAlso []reflect.Type
}

// Alias is a short-name registration, optionally binding a default
// implementation for an interface type.
type Alias struct {
	Name string
	Impl reflect.Type
}

// AliasType aliases a type together with its assignable subtypes.
type AliasType struct {
	Name string
}

// FieldMeta is the metadata recognized on a declared field. Every kind is
// optional and occurs at most once.
type FieldMeta struct {
	// Alias renames the field in serialized form.
	Alias string
	// Attribute marks the field to serialize as an attribute.
	Attribute bool
	// Implicit marks the field as an implicit collection.
	Implicit *Implicit
	// Omit drops the field from serialized form entirely.
	Omit bool
	// Converter scopes a converter to this field alone.
	Converter *ConverterDecl
}

// Implicit configures an implicit-collection marking.
type Implicit struct {
	// ItemName is the element name for each item; "" defers to the item's
	// own type name.
	ItemName string
	// KeyName is the explicit key-field name, meaningful only for
	// map-shaped fields.
	KeyName string
}

// ConverterDecl declares a converter to instantiate. The literal argument
// arrays feed the constructor in a fixed canonical order: bools, bytes,
// chars, doubles, floats, ints, longs, shorts, strings, types, then
// typed-null markers, optionally prefixed with the implicit target type.
type ConverterDecl struct {
	// Kind names a constructor set in the engine's kind registry.
	Kind string
	// Priority passed to the converter registry on registration.
	Priority int
	// UseImplicitType prepends the annotated target type to the argument
	// vector and skips the capability check on registration.
	UseImplicitType bool

	Bools   []bool
	Bytes   []byte
	Chars   []rune
	Doubles []float64
	Floats  []float32
	Ints    []int
	Longs   []int64
	Shorts  []int16
	Strings []string
	Types   []reflect.Type
	// Nulls are typed-null markers: each contributes a typed zero value.
	Nulls []reflect.Type
}

// Reader retrieves metadata for types and fields. Implementations return
// the zero value when nothing is declared; errors are reserved for
// malformed declarations.
type Reader interface {
	TypeMeta(t reflect.Type) (TypeMeta, error)
	FieldMeta(owner reflect.Type, field reflect.StructField) (FieldMeta, error)
}

package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

// TagKey is the struct tag inspected by TagReader.
const TagKey = "serial"

// TagReader reads field metadata from the `serial` struct tag. Struct tags
// attach to fields only, so TypeMeta is always empty; compose with a
// TableReader for type-level declarations.
//
// Tag grammar, comma separated:
//
//	alias=name            rename the field
//	attr                  serialize as attribute
//	omit                  drop the field
//	implicit[=itemName]   implicit collection, optional item element name
//	key=fieldName         key-field name for implicit maps
//	conv=kind             field-scoped converter of the given kind
type TagReader struct{}

func (TagReader) TypeMeta(reflect.Type) (TypeMeta, error) {
	return TypeMeta{}, nil
}

func (TagReader) FieldMeta(owner reflect.Type, field reflect.StructField) (FieldMeta, error) {
	tag, ok := field.Tag.Lookup(TagKey)
	if !ok || tag == "" {
		return FieldMeta{}, nil
	}

	var meta FieldMeta
	var keyName string
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		name, value, hasValue := strings.Cut(opt, "=")
		switch name {
		case "alias":
			meta.Alias = value
		case "attr":
			meta.Attribute = true
		case "omit":
			meta.Omit = true
		case "implicit":
			meta.Implicit = &Implicit{ItemName: value}
		case "key":
			keyName = value
		case "conv":
			if !hasValue || value == "" {
				return FieldMeta{}, fmt.Errorf("field %s.%s: conv tag requires a converter kind", owner, field.Name)
			}
			meta.Converter = &ConverterDecl{Kind: value, UseImplicitType: true}
		case "":
			// tolerate trailing commas
		default:
			return FieldMeta{}, fmt.Errorf("field %s.%s: unknown tag option %q", owner, field.Name, name)
		}
	}

	if keyName != "" {
		if meta.Implicit == nil {
			return FieldMeta{}, fmt.Errorf("field %s.%s: key tag requires implicit", owner, field.Name)
		}
		meta.Implicit.KeyName = keyName
	}

	return meta, nil
}

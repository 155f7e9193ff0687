package metadata

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

// TableReader implements Reader over a parsed declaration table. All names
// are resolved and all literal arguments range-checked when the reader is
// built, so a malformed table never reaches the discovery engine.
type TableReader struct {
	types  map[reflect.Type]TypeMeta
	fields map[reflect.Type]map[string]FieldMeta
}

// NewTableReader compiles tf against resolver.
func NewTableReader(tf *TableFile, resolver TypeResolver) (*TableReader, error) {
	if tf == nil {
		return nil, fmt.Errorf("nil declaration table")
	}
	if resolver == nil {
		return nil, fmt.Errorf("declaration tables require a type resolver")
	}

	r := &TableReader{
		types:  make(map[reflect.Type]TypeMeta),
		fields: make(map[reflect.Type]map[string]FieldMeta),
	}

	for _, decl := range tf.Types {
		t, ok := resolver.TypeByName(decl.Type)
		if !ok {
			return nil, fmt.Errorf("declaration table names unknown type %q", decl.Type)
		}

		meta, err := compileTypeDecl(decl, resolver)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", decl.Type, err)
		}
		r.types[t] = meta

		if len(decl.Fields) > 0 {
			byName := make(map[string]FieldMeta, len(decl.Fields))
			for _, fd := range decl.Fields {
				fm, err := compileFieldDecl(fd, resolver)
				if err != nil {
					return nil, fmt.Errorf("type %q field %q: %w", decl.Type, fd.Name, err)
				}
				byName[fd.Name] = fm
			}
			r.fields[t] = byName
		}
	}

	return r, nil
}

func (r *TableReader) TypeMeta(t reflect.Type) (TypeMeta, error) {
	return r.types[t], nil
}

func (r *TableReader) FieldMeta(owner reflect.Type, field reflect.StructField) (FieldMeta, error) {
	return r.fields[owner][field.Name], nil
}

func compileTypeDecl(decl TypeDecl, resolver TypeResolver) (TypeMeta, error) {
	var meta TypeMeta

	if decl.Alias != "" {
		alias := &Alias{Name: decl.Alias}
		if decl.Impl != "" {
			impl, ok := resolver.TypeByName(decl.Impl)
			if !ok {
				return TypeMeta{}, fmt.Errorf("unknown default implementation %q", decl.Impl)
			}
			alias.Impl = impl
		}
		meta.Alias = alias
	} else if decl.Impl != "" {
		return TypeMeta{}, fmt.Errorf("impl requires alias")
	}

	if decl.AliasType != "" {
		meta.AliasType = &AliasType{Name: decl.AliasType}
	}

	for _, name := range decl.Include {
		t, ok := resolver.TypeByName(name)
		if !ok {
			return TypeMeta{}, fmt.Errorf("include names unknown type %q", name)
		}
		meta.IncludeAlso = append(meta.IncludeAlso, t)
	}

	for _, entry := range decl.Converters {
		cd, err := compileEntry(entry, resolver)
		if err != nil {
			return TypeMeta{}, err
		}
		meta.Converters = append(meta.Converters, cd)
	}

	return meta, nil
}

func compileFieldDecl(fd FieldDecl, resolver TypeResolver) (FieldMeta, error) {
	meta := FieldMeta{
		Alias:     fd.Alias,
		Attribute: fd.Attribute,
		Omit:      fd.Omit,
	}
	if fd.Implicit != nil {
		meta.Implicit = &Implicit{ItemName: fd.Implicit.Item, KeyName: fd.Implicit.Key}
	}
	if fd.Converter != nil {
		cd, err := compileEntry(*fd.Converter, resolver)
		if err != nil {
			return FieldMeta{}, err
		}
		// Field-scoped converters always target the field's own type.
		cd.UseImplicitType = true
		meta.Converter = &cd
	}
	return meta, nil
}

func compileEntry(e ConverterEntry, resolver TypeResolver) (ConverterDecl, error) {
	if e.Kind == "" {
		return ConverterDecl{}, fmt.Errorf("converter entry missing kind")
	}

	cd := ConverterDecl{
		Kind:            e.Kind,
		Priority:        e.Priority,
		UseImplicitType: e.UseImplicitType,
		Bools:           e.Bools,
		Doubles:         e.Doubles,
		Ints:            e.Ints,
		Longs:           e.Longs,
		Strings:         e.Strings,
	}

	for _, b := range e.Bytes {
		if b < 0 || b > math.MaxUint8 {
			return ConverterDecl{}, fmt.Errorf("byte literal %d out of range", b)
		}
		cd.Bytes = append(cd.Bytes, byte(b))
	}
	for _, c := range e.Chars {
		r, size := utf8.DecodeRuneInString(c)
		if size == 0 || size != len(c) {
			return ConverterDecl{}, fmt.Errorf("char literal %q is not a single rune", c)
		}
		cd.Chars = append(cd.Chars, r)
	}
	for _, f := range e.Floats {
		cd.Floats = append(cd.Floats, float32(f))
	}
	for _, s := range e.Shorts {
		if s < math.MinInt16 || s > math.MaxInt16 {
			return ConverterDecl{}, fmt.Errorf("short literal %d out of range", s)
		}
		cd.Shorts = append(cd.Shorts, int16(s))
	}
	for _, name := range e.Types {
		t, ok := resolver.TypeByName(name)
		if !ok {
			return ConverterDecl{}, fmt.Errorf("type literal names unknown type %q", name)
		}
		cd.Types = append(cd.Types, t)
	}
	for _, name := range e.Nulls {
		t, ok := resolver.TypeByName(name)
		if !ok {
			return ConverterDecl{}, fmt.Errorf("null marker names unknown type %q", name)
		}
		cd.Nulls = append(cd.Nulls, t)
	}

	return cd, nil
}

package metadata

import "reflect"

// MultiReader composes readers. For each metadata kind the last reader that
// declares it wins, so readers listed later override earlier ones.
type MultiReader []Reader

func (m MultiReader) TypeMeta(t reflect.Type) (TypeMeta, error) {
	var merged TypeMeta
	for _, r := range m {
		meta, err := r.TypeMeta(t)
		if err != nil {
			return TypeMeta{}, err
		}
		if meta.Alias != nil {
			merged.Alias = meta.Alias
		}
		if meta.AliasType != nil {
			merged.AliasType = meta.AliasType
		}
		if len(meta.Converters) > 0 {
			merged.Converters = meta.Converters
		}
		merged.IncludeAlso = append(merged.IncludeAlso, meta.IncludeAlso...)
	}
	return merged, nil
}

func (m MultiReader) FieldMeta(owner reflect.Type, field reflect.StructField) (FieldMeta, error) {
	var merged FieldMeta
	for _, r := range m {
		meta, err := r.FieldMeta(owner, field)
		if err != nil {
			return FieldMeta{}, err
		}
		if meta.Alias != "" {
			merged.Alias = meta.Alias
		}
		merged.Attribute = merged.Attribute || meta.Attribute
		merged.Omit = merged.Omit || meta.Omit
		if meta.Implicit != nil {
			merged.Implicit = meta.Implicit
		}
		if meta.Converter != nil {
			merged.Converter = meta.Converter
		}
	}
	return merged, nil
}

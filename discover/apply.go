package discover

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/serialmap/serialmap/mapper"
	"github.com/serialmap/serialmap/metadata"
)

// stageFor looks up the collaborator stage a metadata effect needs, walking
// the chain from the engine inward. A missing stage is a fatal
// configuration error naming the collaborator.
func stageFor[T mapper.Mapper](e *Engine, t reflect.Type, field string) (T, error) {
	stage, ok := mapper.FindStage[T](e)
	if !ok {
		var zero T
		return zero, &ConfigError{
			Reason: fmt.Sprintf("no %T stage in chain", zero),
			Type:   t,
			Field:  field,
		}
	}
	return stage, nil
}

// applyAlias registers a type-level short-name alias and, when declared, a
// default implementation. An unprocessed default implementation of an
// interface joins the worklist.
func (e *Engine) applyAlias(t reflect.Type, meta metadata.TypeMeta, work *worklist) error {
	if meta.Alias == nil {
		return nil
	}
	aliases, err := stageFor[*mapper.AliasStage](e, t, "")
	if err != nil {
		return err
	}
	aliases.AddAlias(meta.Alias.Name, t)

	if meta.Alias.Impl != nil {
		defaults, err := stageFor[*mapper.DefaultImplementationStage](e, t, "")
		if err != nil {
			return err
		}
		defaults.AddDefaultImplementation(meta.Alias.Impl, t)
		if t.Kind() == reflect.Interface {
			work.add(meta.Alias.Impl)
		}
	}
	return nil
}

// applyAliasType registers an alias covering the type and its assignables.
func (e *Engine) applyAliasType(t reflect.Type, meta metadata.TypeMeta) error {
	if meta.AliasType == nil {
		return nil
	}
	aliases, err := stageFor[*mapper.AliasStage](e, t, "")
	if err != nil {
		return err
	}
	aliases.AddTypeAlias(meta.AliasType.Name, t)
	return nil
}

// applyConverters instantiates each declared converter and registers it at
// its declared priority. A converter whose capability check rejects the
// annotated type is a fatal configuration error; nothing is registered for
// it. Declarations using the implicit target type skip the check.
func (e *Engine) applyConverters(t reflect.Type, decls []metadata.ConverterDecl) error {
	if e.registry == nil || len(decls) == 0 {
		return nil
	}
	for _, decl := range decls {
		conv, err := e.cachedConverter(decl, t)
		if err != nil {
			return err
		}
		if !decl.UseImplicitType && !conv.CanConvert(t) {
			return &ConfigError{
				Reason: "converter cannot handle annotated type",
				Type:   t,
				Kind:   decl.Kind,
			}
		}
		e.registry.RegisterConverter(conv, decl.Priority)
	}
	return nil
}

// applyFieldMeta applies up to four field-level effects plus an optional
// field-scoped converter. Each effect independently requires its
// collaborator stage.
func (e *Engine) applyFieldMeta(t reflect.Type, field reflect.StructField) error {
	meta, err := e.reader.FieldMeta(t, field)
	if err != nil {
		return &ConfigError{Reason: "malformed field metadata", Type: t, Field: field.Name, Err: err}
	}

	if meta.Alias != "" {
		aliases, err := stageFor[*mapper.FieldAliasStage](e, t, field.Name)
		if err != nil {
			return err
		}
		aliases.AddFieldAlias(meta.Alias, t, field.Name)
	}

	if meta.Attribute {
		attrs, err := stageFor[*mapper.AttributeStage](e, t, field.Name)
		if err != nil {
			return err
		}
		attrs.MarkAsAttribute(t, field.Name)
	}

	if meta.Implicit != nil {
		implicits, err := stageFor[*mapper.ImplicitCollectionStage](e, t, field.Name)
		if err != nil {
			return err
		}
		implicits.Add(t, implicitMapping(field, *meta.Implicit))
	}

	if meta.Omit {
		ignoring, err := stageFor[*mapper.ElementIgnoringStage](e, t, field.Name)
		if err != nil {
			return err
		}
		ignoring.OmitField(t, field.Name)
	}

	if meta.Converter != nil {
		locals, err := stageFor[*mapper.LocalConverterStage](e, t, field.Name)
		if err != nil {
			return err
		}
		conv, err := e.cachedConverter(*meta.Converter, field.Type)
		if err != nil {
			return err
		}
		locals.RegisterLocalConverter(t, field.Name, conv)
	}

	return nil
}

// implicitMapping deduces the item type from the field's shape: the element
// type of a slice or array, the value type of a map. The key-field name is
// meaningful for maps only.
func implicitMapping(field reflect.StructField, decl metadata.Implicit) mapper.ImplicitMapping {
	ft := field.Type
	for ft.Kind() == reflect.Ptr {
		ft = ft.Elem()
	}

	m := mapper.ImplicitMapping{
		FieldName: field.Name,
		ItemName:  decl.ItemName,
	}
	switch ft.Kind() {
	case reflect.Slice, reflect.Array:
		m.ItemType = ft.Elem()
	case reflect.Map:
		m.ItemType = ft.Elem()
		m.KeyName = decl.KeyName
	}
	return m
}

// cachedConverter resolves a declaration to its shared instance,
// constructing and caching it on first sight. Construction failure is a
// fatal configuration error naming the converter kind and target type.
func (e *Engine) cachedConverter(decl metadata.ConverterDecl, target reflect.Type) (mapper.Converter, error) {
	args := argumentVector(decl, target)
	key := cacheKey{kind: decl.Kind, args: encodeArgs(args)}

	conv, err := e.cache.get(key, func() (mapper.Converter, error) {
		candidates := e.kinds.constructors(decl.Kind)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("unknown converter kind")
		}
		built, err := construct(candidates, args, e.pool)
		if err != nil {
			return nil, err
		}
		e.log.Debug("converter constructed",
			zap.String("kind", decl.Kind),
			zap.Int("args", len(args)))
		return built, nil
	})
	if err != nil {
		cfg := &ConfigError{
			Reason: "cannot instantiate converter",
			Kind:   decl.Kind,
			Err:    err,
		}
		if decl.UseImplicitType {
			cfg.Type = target
		}
		return nil, cfg
	}
	return conv, nil
}

package metadata

// TableFile is the root of a YAML declaration table. Tables are the
// external-declaration alternative to struct tags and the only way to
// declare type-level metadata and converter literal arguments.
type TableFile struct {
	// Version of the table schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Types lists per-type declarations.
	Types []TypeDecl `yaml:"types"`
}

// TypeDecl declares metadata for one type, identified by name. Names are
// resolved through a TypeResolver: either a registered short name or a
// "pkg.Type" form.
type TypeDecl struct {
	Type string `yaml:"type"`

	// Alias is the short serialized name for the type.
	Alias string `yaml:"alias,omitempty"`

	// Impl names the default implementation bound together with Alias.
	Impl string `yaml:"impl,omitempty"`

	// AliasType aliases the type and everything assignable to it.
	AliasType string `yaml:"aliasType,omitempty"`

	// Include names additional types to pull into discovery.
	Include []string `yaml:"include,omitempty"`

	// Converters to instantiate and register globally.
	Converters []ConverterEntry `yaml:"converters,omitempty"`

	// Fields lists per-field declarations.
	Fields []FieldDecl `yaml:"fields,omitempty"`
}

// FieldDecl declares metadata for one declared field of its enclosing type.
type FieldDecl struct {
	Name string `yaml:"name"`

	Alias     string          `yaml:"alias,omitempty"`
	Attribute bool            `yaml:"attribute,omitempty"`
	Omit      bool            `yaml:"omit,omitempty"`
	Implicit  *ImplicitDecl   `yaml:"implicit,omitempty"`
	Converter *ConverterEntry `yaml:"converter,omitempty"`
}

// ImplicitDecl configures an implicit-collection marking.
type ImplicitDecl struct {
	// Item is the element name for each item.
	Item string `yaml:"item,omitempty"`
	// Key is the key-field name for map-shaped fields.
	Key string `yaml:"key,omitempty"`
}

// ConverterEntry declares a converter with literal constructor arguments.
// Bytes, chars and shorts are widened in YAML and range-checked when the
// entry is compiled into a ConverterDecl.
type ConverterEntry struct {
	Kind            string `yaml:"kind"`
	Priority        int    `yaml:"priority,omitempty"`
	UseImplicitType bool   `yaml:"useImplicitType,omitempty"`

	Bools   []bool    `yaml:"bools,omitempty"`
	Bytes   []int     `yaml:"bytes,omitempty"`
	Chars   []string  `yaml:"chars,omitempty"`
	Doubles []float64 `yaml:"doubles,omitempty"`
	Floats  []float64 `yaml:"floats,omitempty"`
	Ints    []int     `yaml:"ints,omitempty"`
	Longs   []int64   `yaml:"longs,omitempty"`
	Shorts  []int     `yaml:"shorts,omitempty"`
	Strings []string  `yaml:"strings,omitempty"`
	Types   []string  `yaml:"types,omitempty"`
	Nulls   []string  `yaml:"nulls,omitempty"`
}

package discover

import (
	"github.com/serialmap/serialmap/mapper"
)

// DefaultChain builds the standard stage stack: every collaborator stage
// the engine can wire metadata into, composed around the terminal mapper.
func DefaultChain() mapper.Mapper {
	locals := mapper.NewLocalConverterStage(mapper.Default{})
	ignoring := mapper.NewElementIgnoringStage(locals)
	implicits := mapper.NewImplicitCollectionStage(ignoring)
	attrs := mapper.NewAttributeStage(implicits)
	fieldAliases := mapper.NewFieldAliasStage(attrs)
	defaults := mapper.NewDefaultImplementationStage(fieldAliases)
	return mapper.NewAliasStage(defaults)
}

// NewDefault returns an Engine wrapping the standard stage stack.
func NewDefault(registry mapper.ConverterRegistry, opts ...Option) *Engine {
	return New(DefaultChain(), registry, opts...)
}

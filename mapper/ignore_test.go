package mapper

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnorePatternMatch(t *testing.T) {
	s := NewElementIgnoringStage(Default{})
	s.AddElementsToIgnore("legacy-*")
	s.AddElementsToIgnore("ns:{audit,trace}")

	tests := []struct {
		name string
		want bool
	}{
		{"legacy-order", true},
		{"legacy-", true},
		{"order-legacy", false},
		{"ns:audit", true},
		{"ns:trace", true},
		{"ns:metrics", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsIgnoredElement(tt.name))
		})
	}
}

func TestIgnorePatternMustMatchFully(t *testing.T) {
	s := NewElementIgnoringStage(Default{})
	s.AddElementsToIgnore("audit")

	assert.True(t, s.IsIgnoredElement("audit"))
	assert.False(t, s.IsIgnoredElement("audit-log"))
}

func TestIgnoreIsChainOR(t *testing.T) {
	inner := NewElementIgnoringStage(Default{})
	inner.AddElementsToIgnore("inner-*")

	outer := NewElementIgnoringStage(inner)
	outer.AddElementsToIgnore("outer-*")

	// each stage contributes independently
	assert.True(t, outer.IsIgnoredElement("outer-x"))
	assert.True(t, outer.IsIgnoredElement("inner-x"))
	assert.False(t, outer.IsIgnoredElement("other"))
}

func TestOmitField(t *testing.T) {
	s := NewElementIgnoringStage(Default{})
	s.OmitField(orderType, "Items")

	assert.True(t, s.IsOmitted(orderType, "Items"))
	assert.False(t, s.IsOmitted(orderType, "ID"))
}

func TestPriorityRegistry(t *testing.T) {
	reg := NewPriorityRegistry()

	low := typedConverter{t: reflect.TypeOf("")}
	high := typedConverter{t: reflect.TypeOf(""), label: "high"}
	other := typedConverter{t: reflect.TypeOf(0)}

	reg.RegisterConverter(low, 0)
	reg.RegisterConverter(high, 10)
	reg.RegisterConverter(other, 0)

	assert.Equal(t, high, reg.ConverterFor(reflect.TypeOf("")))
	assert.Equal(t, other, reg.ConverterFor(reflect.TypeOf(0)))
	assert.Nil(t, reg.ConverterFor(reflect.TypeOf(1.5)))
	assert.Equal(t, 3, reg.Len())
}

func TestPriorityRegistryLatestWinsOnTie(t *testing.T) {
	reg := NewPriorityRegistry()

	first := typedConverter{t: reflect.TypeOf(""), label: "first"}
	second := typedConverter{t: reflect.TypeOf(""), label: "second"}

	reg.RegisterConverter(first, 5)
	reg.RegisterConverter(second, 5)

	assert.Equal(t, second, reg.ConverterFor(reflect.TypeOf("")))
}

// typedConverter accepts exactly one type.
type typedConverter struct {
	t     reflect.Type
	label string
}

func (c typedConverter) CanConvert(t reflect.Type) bool { return t == c.t }

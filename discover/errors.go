package discover

import (
	"fmt"
	"reflect"
	"strings"
)

// ConfigError is a fatal configuration error: a metadata declaration the
// engine cannot bring into force. It aborts the triggering call only; the
// offending type still enters the processed set and is never retried.
type ConfigError struct {
	// Reason describes what went wrong.
	Reason string
	// Type is the offending type, if known.
	Type reflect.Type
	// Field is the offending field name, if any.
	Field string
	// Kind is the converter kind involved, if any.
	Kind string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("discover: ")
	b.WriteString(e.Reason)

	var ctx []string
	if e.Kind != "" {
		ctx = append(ctx, "converter "+e.Kind)
	}
	if e.Type != nil {
		ctx = append(ctx, "type "+e.Type.String())
	}
	if e.Field != "" {
		ctx = append(ctx, "field "+e.Field)
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

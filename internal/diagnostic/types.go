// Package diagnostic collects the findings of declaration-table validation.
package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostics holds all findings from one validation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic is a single finding.
type Diagnostic struct {
	// Severity of the finding.
	Severity Severity
	// Code is a stable identifier for this kind of finding.
	Code string
	// Message is the human-readable description.
	Message string
	// TypeName identifies the declared type this relates to, if any.
	TypeName string
	// FieldName identifies the declared field this relates to, if any.
	FieldName string
}

// Severity is the level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// AddError records an error finding.
func (d *Diagnostics) AddError(code, message, typeName, fieldName string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:  SeverityError,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldName: fieldName,
	})
}

// AddWarning records a warning finding.
func (d *Diagnostics) AddWarning(code, message, typeName, fieldName string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity:  SeverityWarning,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldName: fieldName,
	})
}

// HasErrors reports whether any error finding was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Error returns a combined error from all error findings, or nil.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}
	parts := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		parts[i] = e.String()
	}
	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted finding.
func (d Diagnostic) String() string {
	var prefix []string
	if d.TypeName != "" {
		prefix = append(prefix, "["+d.TypeName+"]")
	}
	if d.FieldName != "" {
		prefix = append(prefix, d.FieldName)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}
	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}
	return msg
}

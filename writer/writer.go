// Package writer guards a node writer against structurally invalid output.
//
// Guard wraps any NodeWriter and validates every call against a small state
// machine before delegating, so a broken marshaling sequence fails in memory
// instead of producing malformed output.
package writer

import "fmt"

// NodeWriter is the raw hierarchical writer capability. Implementations
// perform the actual text or byte encoding, which is outside this package.
type NodeWriter interface {
	StartNode(name string) error
	AddAttribute(name, value string) error
	SetValue(text string) error
	EndNode() error
	Flush() error
	Close() error
}

// ProtocolError reports a writer call that violates the session protocol.
type ProtocolError struct {
	// Op is the rejected operation.
	Op string
	// Name is the offending node or attribute name, if any.
	Name string
	// Reason describes the violated rule.
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("writer: %s %q: %s", e.Op, e.Name, e.Reason)
	}
	return fmt.Sprintf("writer: %s: %s", e.Op, e.Reason)
}

package writer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter captures the calls that pass validation.
type recordingWriter struct {
	calls  []string
	closed bool
}

func (w *recordingWriter) StartNode(name string) error {
	w.calls = append(w.calls, "start:"+name)
	return nil
}

func (w *recordingWriter) AddAttribute(name, value string) error {
	w.calls = append(w.calls, "attr:"+name+"="+value)
	return nil
}

func (w *recordingWriter) SetValue(text string) error {
	w.calls = append(w.calls, "value:"+text)
	return nil
}

func (w *recordingWriter) EndNode() error {
	w.calls = append(w.calls, "end")
	return nil
}

func (w *recordingWriter) Flush() error {
	w.calls = append(w.calls, "flush")
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestGuardDuplicateAttribute(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.AddAttribute("x", "1"))

	err := g.AddAttribute("x", "2")
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "x", perr.Name)
}

func TestGuardAttributeAfterValue(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.SetValue("t"))

	err := g.AddAttribute("y", "1")
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestGuardAttributeAfterChild(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.StartNode("b"))
	require.NoError(t, g.EndNode())

	// state is node-ended; attributes belong directly after a start
	require.Error(t, g.AddAttribute("x", "1"))
}

func TestGuardValueThenChild(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.SetValue("t"))
	require.Error(t, g.StartNode("b"))
}

func TestGuardValueTwice(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.SetValue("t"))
	require.Error(t, g.SetValue("u"))
}

func TestGuardUnbalancedEnd(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.EndNode())

	err := g.EndNode()
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "unbalanced")
}

func TestGuardCloseBalanced(t *testing.T) {
	inner := &recordingWriter{}
	g := NewGuard(inner)

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.EndNode())
	require.NoError(t, g.Close())

	assert.Equal(t, StateClosed, g.State())
	assert.True(t, inner.closed)
}

func TestGuardCloseUnbalancedTolerated(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.StartNode("b"))

	// cleanup paths rely on close never reporting a protocol violation
	require.NoError(t, g.Close())
	assert.Equal(t, StateClosed, g.State())
}

func TestGuardClosedRejectsEverything(t *testing.T) {
	g := NewGuard(&recordingWriter{})
	require.NoError(t, g.Close())

	assert.Error(t, g.StartNode("a"))
	assert.Error(t, g.AddAttribute("x", "1"))
	assert.Error(t, g.SetValue("t"))
	assert.Error(t, g.EndNode())
	assert.Error(t, g.Flush())
}

func TestGuardAttributeScopePerNode(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.StartNode("b"))
	require.NoError(t, g.AddAttribute("n", "1"))
	require.NoError(t, g.EndNode())
	require.NoError(t, g.StartNode("c"))

	// attribute names are scoped per open node, not globally unique
	require.NoError(t, g.AddAttribute("n", "1"))
}

func TestGuardSiblingAfterValueNode(t *testing.T) {
	g := NewGuard(&recordingWriter{})

	require.NoError(t, g.StartNode("root"))
	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.SetValue("x"))
	require.NoError(t, g.EndNode())
	require.NoError(t, g.StartNode("b"))
	require.NoError(t, g.EndNode())
	require.NoError(t, g.EndNode())
	require.NoError(t, g.Close())
}

func TestGuardNoDelegationBeforeValidation(t *testing.T) {
	inner := &recordingWriter{}
	g := NewGuard(inner)

	require.NoError(t, g.StartNode("a"))
	require.NoError(t, g.AddAttribute("x", "1"))
	require.Error(t, g.AddAttribute("x", "2"))

	assert.Equal(t, []string{"start:a", "attr:x=1"}, inner.calls)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateOpen, "open"},
		{StateNodeStarted, "node-started"},
		{StateValueWritten, "value-written"},
		{StateNodeEnded, "node-ended"},
		{StateClosed, "closed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

// failingWriter reports an error on every call.
type failingWriter struct{ recordingWriter }

func (w *failingWriter) SetValue(string) error {
	return errors.New("disk full")
}

func TestGuardInnerErrorPassedThrough(t *testing.T) {
	g := NewGuard(&failingWriter{})

	require.NoError(t, g.StartNode("a"))
	err := g.SetValue("t")
	require.EqualError(t, err, "disk full")

	// the transition happened; the failure came from the inner writer
	assert.Equal(t, StateValueWritten, g.State())
}

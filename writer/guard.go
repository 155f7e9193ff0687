package writer

// State is the position of a Guard in its serialization session.
type State int

const (
	// StateOpen is the initial state, before any node has been started.
	StateOpen State = iota
	// StateNodeStarted is the state after a node has been opened.
	StateNodeStarted
	// StateValueWritten is the state after the current node's text value
	// has been written.
	StateValueWritten
	// StateNodeEnded is the state after a node has been closed.
	StateNodeEnded
	// StateClosed is the terminal state; no further writes are accepted.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateNodeStarted:
		return "node-started"
	case StateValueWritten:
		return "value-written"
	case StateNodeEnded:
		return "node-ended"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Guard wraps a NodeWriter and enforces well-formedness of one session:
// balanced nodes, unique attribute names per open node, no attributes after
// children or text, no text after text.
//
// A Guard models a single sequential session and carries no locking; it is
// not safe for concurrent use by multiple callers.
type Guard struct {
	inner   NodeWriter
	state   State
	balance int
	attrs   []map[string]struct{}
}

// NewGuard returns a Guard over inner.
func NewGuard(inner NodeWriter) *Guard {
	return &Guard{inner: inner, state: StateOpen}
}

// State returns the current session state. It stays observable after Close.
func (g *Guard) State() State { return g.state }

// StartNode opens a child node. Opening a node after text has been written
// on the current node is rejected.
func (g *Guard) StartNode(name string) error {
	if err := g.checkClosed("start node", name); err != nil {
		return err
	}
	if g.state == StateValueWritten {
		return &ProtocolError{Op: "start node", Name: name, Reason: "node opened after text"}
	}
	g.state = StateNodeStarted
	g.balance++
	g.attrs = append(g.attrs, make(map[string]struct{}))
	return g.inner.StartNode(name)
}

// AddAttribute writes an attribute on the current node. Attributes are only
// accepted directly after StartNode, and each name at most once per node.
func (g *Guard) AddAttribute(name, value string) error {
	if err := g.checkClosed("add attribute", name); err != nil {
		return err
	}
	if g.state != StateNodeStarted {
		return &ProtocolError{Op: "add attribute", Name: name, Reason: "no newly opened node"}
	}
	current := g.attrs[len(g.attrs)-1]
	if _, dup := current[name]; dup {
		return &ProtocolError{Op: "add attribute", Name: name, Reason: "attribute written twice"}
	}
	current[name] = struct{}{}
	return g.inner.AddAttribute(name, value)
}

// SetValue writes the current node's text. Only accepted directly after
// StartNode.
func (g *Guard) SetValue(text string) error {
	if err := g.checkClosed("set value", ""); err != nil {
		return err
	}
	if g.state != StateNodeStarted {
		return &ProtocolError{Op: "set value", Reason: "no newly opened node"}
	}
	g.state = StateValueWritten
	return g.inner.SetValue(text)
}

// EndNode closes the current node. Closing more nodes than were opened is
// rejected.
func (g *Guard) EndNode() error {
	if err := g.checkClosed("end node", ""); err != nil {
		return err
	}
	if g.balance == 0 {
		return &ProtocolError{Op: "end node", Reason: "unbalanced node"}
	}
	g.balance--
	g.attrs = g.attrs[:len(g.attrs)-1]
	g.state = StateNodeEnded
	return g.inner.EndNode()
}

// Flush forwards to the inner writer. Rejected once closed.
func (g *Guard) Flush() error {
	if err := g.checkClosed("flush", ""); err != nil {
		return err
	}
	return g.inner.Flush()
}

// Close transitions to StateClosed unconditionally and closes the inner
// writer. An unbalanced session is tolerated without error; cleanup paths
// rely on Close never reporting a protocol violation.
func (g *Guard) Close() error {
	g.state = StateClosed
	return g.inner.Close()
}

func (g *Guard) checkClosed(op, name string) error {
	if g.state == StateClosed {
		return &ProtocolError{Op: op, Name: name, Reason: "writer already closed"}
	}
	return nil
}

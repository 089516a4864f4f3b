package namespace

import (
	"fmt"
	"strings"

	"github.com/nvandessel/procsim/internal/signal"
)

// NodeClass distinguishes containers from variables.
type NodeClass int

const (
	// ClassContainer is an organisational node without a value.
	ClassContainer NodeClass = iota + 1
	// ClassVariable is a leaf node whose value is computed by an Evaluator.
	ClassVariable
)

// String returns the class name.
func (c NodeClass) String() string {
	switch c {
	case ClassContainer:
		return "Container"
	case ClassVariable:
		return "Variable"
	default:
		return fmt.Sprintf("NodeClass(%d)", int(c))
	}
}

// Node is an entry of the address space. Nodes are created through a Space
// and are never removed.
type Node struct {
	space       *Space
	id          string
	browseName  string
	displayName string
	class       NodeClass
	parent      *Node

	// container
	children []*Node
	index    map[string]*Node

	// variable
	valueType signal.ValueType
	evaluator signal.Evaluator
}

// ID returns the node identifier assigned at creation.
func (n *Node) ID() string { return n.id }

// BrowseName returns the name that identifies the node within its parent.
func (n *Node) BrowseName() string { return n.browseName }

// DisplayName returns the human-readable name, falling back to the browse
// name.
func (n *Node) DisplayName() string {
	if n.displayName == "" {
		return n.browseName
	}
	return n.displayName
}

// Class returns whether the node is a container or a variable.
func (n *Node) Class() NodeClass { return n.class }

// IsVariable reports whether the node carries a value.
func (n *Node) IsVariable() bool { return n.class == ClassVariable }

// ValueType returns the declared type of a variable, or zero for containers.
func (n *Node) ValueType() signal.ValueType { return n.valueType }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list in creation order.
func (n *Node) Children() []*Node {
	n.space.mu.RLock()
	defer n.space.mu.RUnlock()

	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the direct child with the given browse name, or nil.
func (n *Node) Child(name string) *Node {
	n.space.mu.RLock()
	defer n.space.mu.RUnlock()

	return n.index[name]
}

// Path returns the slash-separated browse path from the root, including the
// root name.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.browseName)
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, PathSeparator)
}

// Read evaluates the variable and returns its current value. Reading a
// container returns ErrNotReadable. An evaluator that produces a value of a
// different type than the one declared is a programming error and panics.
func (n *Node) Read() (signal.Value, error) {
	if n.class != ClassVariable {
		return signal.Value{}, fmt.Errorf("%s: %w", n.Path(), ErrNotReadable)
	}

	v := n.evaluator.Evaluate()
	if v.Type() != n.valueType {
		panic(fmt.Sprintf("namespace: variable %s declared %s but evaluator produced %s",
			n.Path(), n.valueType, v.Type()))
	}

	n.space.invokeHooks(n, v)

	return v, nil
}

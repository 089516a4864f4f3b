// Package namespace implements the address space that hosts the simulated
// variables: a tree of containers and variables addressed by browse names.
//
// The tree is populated once at startup and is read-only afterwards.
// Variables do not store values; every Read calls the bound evaluator.
package namespace

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/xid"

	"github.com/nvandessel/procsim/internal/signal"
)

// RootName is the browse name of the well-known root container.
const RootName = "Objects"

// PathSeparator joins browse names in a node path.
const PathSeparator = "/"

var (
	// ErrInvalidName is returned for empty or malformed browse names.
	ErrInvalidName = errors.New("invalid browse name")
	// ErrDuplicateName is returned when a parent already has a child with the
	// same browse name.
	ErrDuplicateName = errors.New("duplicate browse name")
	// ErrNotContainer is returned when a node is used as a parent but is a
	// variable.
	ErrNotContainer = errors.New("node is not a container")
	// ErrInvalidSpec is returned for variable specs with an unknown type or a
	// missing evaluator.
	ErrInvalidSpec = errors.New("invalid variable spec")
	// ErrNotFound is returned when a path does not resolve to a node.
	ErrNotFound = errors.New("node not found")
	// ErrNotReadable is returned when reading a node that has no value.
	ErrNotReadable = errors.New("node has no value")
	// ErrForeignNode is returned when a node from another space is passed in.
	ErrForeignNode = errors.New("node belongs to another space")
)

var validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateName checks that name can be used as a browse name.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// VariableSpec describes a variable to be created.
type VariableSpec struct {
	Name        string
	DisplayName string
	Type        signal.ValueType
	Evaluator   signal.Evaluator
}

// Space is an address space. Creation methods and lookups are safe for
// concurrent use.
type Space struct {
	mu    sync.RWMutex
	root  *Node
	byID  map[string]*Node
	built bool

	hooksMu sync.RWMutex
	hooks   []Hook
}

// NewSpace creates an address space holding only the root container.
func NewSpace() *Space {
	s := &Space{byID: make(map[string]*Node)}

	s.root = &Node{
		space:      s,
		id:         xid.New().String(),
		browseName: RootName,
		class:      ClassContainer,
		index:      make(map[string]*Node),
	}
	s.byID[s.root.id] = s.root

	return s
}

// Root returns the well-known root container.
func (s *Space) Root() *Node {
	return s.root
}

// CreateContainer adds a container named name under parent.
func (s *Space) CreateContainer(parent *Node, name string) (*Node, error) {
	return s.add(parent, &Node{
		browseName: name,
		class:      ClassContainer,
		index:      make(map[string]*Node),
	})
}

// CreateVariable adds a variable under parent.
func (s *Space) CreateVariable(parent *Node, spec VariableSpec) (*Node, error) {
	if !spec.Type.Valid() {
		return nil, fmt.Errorf("%s: type %s: %w", spec.Name, spec.Type, ErrInvalidSpec)
	}
	if spec.Evaluator == nil {
		return nil, fmt.Errorf("%s: missing evaluator: %w", spec.Name, ErrInvalidSpec)
	}

	return s.add(parent, &Node{
		browseName:  spec.Name,
		displayName: spec.DisplayName,
		class:       ClassVariable,
		valueType:   spec.Type,
		evaluator:   spec.Evaluator,
	})
}

func (s *Space) add(parent *Node, n *Node) (*Node, error) {
	if err := ValidateName(n.browseName); err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("%s: nil parent: %w", n.browseName, ErrNotFound)
	}
	if parent.space != s {
		return nil, fmt.Errorf("%s: %w", parent.browseName, ErrForeignNode)
	}
	if parent.class != ClassContainer {
		return nil, fmt.Errorf("%s: %w", parent.Path(), ErrNotContainer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := parent.index[n.browseName]; exists {
		return nil, fmt.Errorf("%s%s%s: %w", parent.Path(), PathSeparator, n.browseName, ErrDuplicateName)
	}

	n.space = s
	n.id = xid.New().String()
	n.parent = parent

	parent.children = append(parent.children, n)
	parent.index[n.browseName] = n
	s.byID[n.id] = n

	return n, nil
}

// NodeByID returns the node with the given identifier.
func (s *Space) NodeByID(id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("id %s: %w", id, ErrNotFound)
	}
	return n, nil
}

// Lookup resolves a browse path. Segments may be separated by "/" or ".",
// and the leading root name is optional, so "Objects/Simulation/Counter",
// "Simulation/Counter" and "Simulation.Counter" name the same node. An empty
// path resolves to the root.
func (s *Space) Lookup(path string) (*Node, error) {
	segments := SplitPath(path)
	if len(segments) > 0 && segments[0] == RootName {
		segments = segments[1:]
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cur := s.root
	for _, seg := range segments {
		next, ok := cur.index[seg]
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		cur = next
	}

	return cur, nil
}

// SplitPath breaks a browse path into its segments, dropping empty ones.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '.'
	})
}

// Walk visits every node depth-first in creation order, starting at the
// root. Returning false from fn skips the node's children.
func (s *Space) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}

	visit(s.root, 0)
}

// Variables returns every variable in walk order.
func (s *Space) Variables() []*Node {
	var vars []*Node
	s.Walk(func(n *Node, _ int) bool {
		if n.IsVariable() {
			vars = append(vars, n)
		}
		return true
	})
	return vars
}

package summary

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrOpaqueRoot is returned by [Build] when the root object classifies as
	// opaque. Only namespaces, types, and callables can anchor a summary.
	ErrOpaqueRoot = errors.New("root object is opaque")

	// ErrUnknownNode is returned when a node ID is not present in the graph.
	ErrUnknownNode = errors.New("unknown node ID")

	// ErrInvalidDocument is returned by [Decode] when a document fails
	// structural validation (bad kind code, dangling child reference, or a
	// name recorded as both child and eager).
	ErrInvalidDocument = errors.New("invalid summary document")
)

// InvariantError reports a build-time violation of the rule that a member
// name appears in a node's children or in its eager set, never both. The
// builder's control flow makes this unreachable for well-behaved inspectors;
// a custom [Inspector] that yields the same name twice with conflicting
// classifications will trip it.
type InvariantError struct {
	Node NodeID
	Name string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("node %d: member %q is both child and eager", e.Node, e.Name)
}

// NodeID identifies a node within a single summary graph. IDs are small
// integers assigned in first-visit order during a build; they carry no
// meaning across independently built graphs.
type NodeID int

// Kind classifies a member of a hierarchy.
type Kind int

const (
	// KindOpaque marks members whose internal structure is never expanded.
	// Opaque members are recorded by name in their parent's eager set and
	// never become nodes.
	KindOpaque Kind = iota
	// KindNamespace marks container-like grouping objects.
	KindNamespace
	// KindType marks class-like constructs outside the builtin type set.
	KindType
	// KindCallable marks free functions.
	KindCallable
)

// Wire codes for serializable kinds.
const (
	codeNamespace = "ns"
	codeType      = "type"
	codeCallable  = "fn"
)

// String returns the wire code for serializable kinds and "opaque" otherwise.
func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return codeNamespace
	case KindType:
		return codeType
	case KindCallable:
		return codeCallable
	default:
		return "opaque"
	}
}

func kindFromCode(s string) (Kind, bool) {
	switch s {
	case codeNamespace:
		return KindNamespace, true
	case codeType:
		return KindType, true
	case codeCallable:
		return KindCallable, true
	default:
		return KindOpaque, false
	}
}

// Node describes one distinct object identity encountered during a build.
//
// Children maps member names to the node of that member; Eager records the
// names of opaque members. A name never appears in both; Validate treats a
// violation as document corruption.
type Node struct {
	Kind     Kind
	Children map[string]NodeID
	Eager    map[string]bool
}

func newNode(kind Kind) *Node {
	return &Node{
		Kind:     kind,
		Children: map[string]NodeID{},
		Eager:    map[string]bool{},
	}
}

// ChildNames returns the node's child member names, sorted.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// EagerNames returns the node's eager member names, sorted.
func (n *Node) EagerNames() []string {
	names := make([]string, 0, len(n.Eager))
	for name := range n.Eager {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Names returns the union of child and eager member names, sorted.
// This is the listing a stand-in namespace reports for the node.
func (n *Node) Names() []string {
	names := make([]string, 0, len(n.Children)+len(n.Eager))
	for name := range n.Children {
		names = append(names, name)
	}
	for name := range n.Eager {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Graph is a complete summary: a node table plus the ID of the root node.
// Back-edges (cycles) are represented by a child entry pointing at an ID
// already present in Nodes, never by duplicating a node.
//
// A Graph is built once while the real hierarchy is present, then treated as
// immutable read-only input by the shim runtime.
type Graph struct {
	Root  NodeID
	Nodes map[NodeID]*Node
}

// Node returns the node for id, or ErrUnknownNode.
func (g *Graph) Node(id NodeID) (*Node, error) {
	n, ok := g.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n, nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.Nodes) }

// IDs returns all node IDs in ascending order.
func (g *Graph) IDs() []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// EagerCount returns the total number of eager names across all nodes.
func (g *Graph) EagerCount() int {
	total := 0
	for _, n := range g.Nodes {
		total += len(n.Eager)
	}
	return total
}

// Validate checks structural integrity: the root exists, every child
// reference resolves, every node kind is serializable, and no name is
// recorded as both child and eager.
func (g *Graph) Validate() error {
	if _, ok := g.Nodes[g.Root]; !ok {
		return fmt.Errorf("%w: root %d missing from node table", ErrInvalidDocument, g.Root)
	}
	for id, n := range g.Nodes {
		switch n.Kind {
		case KindNamespace, KindType, KindCallable:
		default:
			return fmt.Errorf("%w: node %d has non-serializable kind", ErrInvalidDocument, id)
		}
		for name, child := range n.Children {
			if _, ok := g.Nodes[child]; !ok {
				return fmt.Errorf("%w: node %d child %q references missing node %d", ErrInvalidDocument, id, name, child)
			}
			if n.Eager[name] {
				return fmt.Errorf("%w: node %d member %q is both child and eager", ErrInvalidDocument, id, name)
			}
		}
	}
	return nil
}

package summary

// Member is one (name, value) pair produced by enumerating an object's
// direct members.
type Member struct {
	Name  string
	Value any
}

// Inspector abstracts the host's reflection machinery so the builder stays
// independent of how hierarchies are represented. Implementations must not
// trigger computed access: classification and enumeration read only direct,
// already-materialized slots. The default implementation lives in
// pkg/introspect.
type Inspector interface {
	// Classify decides the structural kind of one value. It may fail when a
	// value resists even safe inspection; the builder degrades that member
	// to eager instead of aborting.
	Classify(v any) (Kind, error)

	// Members enumerates the direct (name, value) members of a value.
	// Values without enumerable members yield nil.
	Members(v any) []Member

	// Identity returns a comparable per-build identity key for v, or
	// ok=false when v has no stable identity. Values without identity
	// cannot participate in cycles and are assigned fresh node IDs.
	Identity(v any) (key any, ok bool)

	// IsPublic reports whether a member name is public under the privacy
	// convention (a name is private when it begins with the reserved
	// marker character).
	IsPublic(name string) bool
}

// Options configures a build.
type Options struct {
	// IncludePrivate retains members whose names the inspector reports as
	// private.
	IncludePrivate bool

	// MaxDepth bounds traversal for interactive or ad hoc use. Nodes first
	// discovered at the bound are recorded but not expanded. Zero means
	// unbounded. Cycle safety does not depend on the bound: already
	// discovered identities always reuse their node ID.
	MaxDepth int
}

// Build walks the hierarchy rooted at root and returns its summary graph.
//
// Traversal is iterative: an explicit worklist replaces recursion so that
// deep or mutually referential hierarchies cannot overflow the stack. Each
// distinct object identity is expanded at most once; node IDs are assigned
// in first-visit order starting at zero.
//
// Per-member failures never abort the build: a member whose classification
// fails is degraded to eager. Build returns ErrOpaqueRoot when the root
// itself is not expandable, and an *InvariantError if the inspector reports
// a member name with conflicting classifications.
func Build(root any, insp Inspector, opts Options) (*Graph, error) {
	b := &builder{
		insp:     insp,
		opts:     opts,
		graph:    &Graph{Nodes: map[NodeID]*Node{}},
		identity: map[any]NodeID{},
		expanded: map[NodeID]bool{},
	}

	kind, err := insp.Classify(root)
	if err != nil {
		return nil, err
	}
	if kind == KindOpaque {
		return nil, ErrOpaqueRoot
	}
	b.graph.Root = b.schedule(root, kind, 0)

	for len(b.worklist) > 0 {
		item := b.worklist[len(b.worklist)-1]
		b.worklist = b.worklist[:len(b.worklist)-1]
		if err := b.expand(item); err != nil {
			return nil, err
		}
	}
	return b.graph, nil
}

type workItem struct {
	value any
	id    NodeID
	depth int
}

type builder struct {
	insp     Inspector
	opts     Options
	graph    *Graph
	identity map[any]NodeID
	expanded map[NodeID]bool
	worklist []workItem
	nextID   NodeID
}

// getOrCreate returns the node ID for value, allocating the next integer ID
// and an empty node on first sight. Values without a stable identity always
// allocate: they cannot be reached twice through distinct paths that matter
// for cycle detection.
func (b *builder) getOrCreate(value any, kind Kind) (NodeID, bool) {
	key, ok := b.insp.Identity(value)
	if ok {
		if id, seen := b.identity[key]; seen {
			return id, false
		}
	}
	id := b.nextID
	b.nextID++
	b.graph.Nodes[id] = newNode(kind)
	if ok {
		b.identity[key] = id
	}
	return id, true
}

// schedule registers value in the node table and queues it for expansion if
// it has not been seen before.
func (b *builder) schedule(value any, kind Kind, depth int) NodeID {
	id, fresh := b.getOrCreate(value, kind)
	if fresh {
		b.worklist = append(b.worklist, workItem{value: value, id: id, depth: depth})
	}
	return id
}

func (b *builder) expand(item workItem) error {
	if b.expanded[item.id] {
		return nil
	}
	b.expanded[item.id] = true

	// Depth-bounded builds record the node but leave it unexpanded.
	if b.opts.MaxDepth > 0 && item.depth >= b.opts.MaxDepth {
		return nil
	}

	node := b.graph.Nodes[item.id]
	for _, m := range b.insp.Members(item.value) {
		if !b.opts.IncludePrivate && !b.insp.IsPublic(m.Name) {
			continue
		}

		kind, err := b.insp.Classify(m.Value)
		if err != nil || kind == KindOpaque {
			if _, dup := node.Children[m.Name]; dup {
				return &InvariantError{Node: item.id, Name: m.Name}
			}
			node.Eager[m.Name] = true
			continue
		}

		if node.Eager[m.Name] {
			return &InvariantError{Node: item.id, Name: m.Name}
		}
		node.Children[m.Name] = b.schedule(m.Value, kind, item.depth+1)
	}
	return nil
}

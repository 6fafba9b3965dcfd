package shim

import (
	"github.com/matzehuels/depshim/pkg/summary"
)

// Runtime interprets one summary graph and manufactures proxy objects on
// demand. Proxies are memoized by node ID, so repeated resolution returns
// the identical object and structural cycles survive reconstruction.
//
// A Runtime and its memo table belong to a single guarded module instance;
// nothing is shared across independently constructed runtimes.
type Runtime struct {
	module string
	hint   string
	graph  *summary.Graph
	memo   map[summary.NodeID]Value
}

// NewRuntime creates a runtime for the given module identifier, summary
// graph, and install hint. The graph is treated as immutable.
func NewRuntime(module string, graph *summary.Graph, hint string) *Runtime {
	return &Runtime{
		module: module,
		hint:   hint,
		graph:  graph,
		memo:   map[summary.NodeID]Value{},
	}
}

// Module returns the guarded module identifier.
func (r *Runtime) Module() string { return r.module }

// Root resolves the graph's root node.
func (r *Runtime) Root() (Value, error) {
	return r.Resolve(r.graph.Root)
}

// Resolve returns the proxy for a node ID, constructing it on first use.
func (r *Runtime) Resolve(id summary.NodeID) (Value, error) {
	if v, ok := r.memo[id]; ok {
		return v, nil
	}
	node, err := r.graph.Node(id)
	if err != nil {
		return nil, err
	}

	var v Value
	switch node.Kind {
	case summary.KindNamespace:
		v = &namespaceProxy{rt: r, id: id}
	case summary.KindType:
		v = &typeProxy{rt: r, id: id}
	case summary.KindCallable:
		v = &callableProxy{rt: r}
	default:
		// Validate rejects other kinds before a runtime ever sees them.
		return nil, summary.ErrInvalidDocument
	}
	r.memo[id] = v
	return v, nil
}

// missing builds the error every unusable operation reports.
func (r *Runtime) missing() error {
	return &MissingDependencyError{Module: r.module, Hint: r.hint}
}

// attr implements the shared member-access rule for namespace and type
// nodes: eager names signal dependency absence, children resolve through
// the graph, and anything else is an unknown attribute.
func (r *Runtime) attr(id summary.NodeID, name string) (Value, error) {
	node, err := r.graph.Node(id)
	if err != nil {
		return nil, err
	}
	if node.Eager[name] {
		return nil, r.missing()
	}
	if child, ok := node.Children[name]; ok {
		return r.Resolve(child)
	}
	return nil, &UnknownAttributeError{Name: name}
}

func (r *Runtime) attrs(id summary.NodeID) []string {
	node, err := r.graph.Node(id)
	if err != nil {
		return nil
	}
	return node.Names()
}

// namespaceProxy stands in for a container-like grouping object.
type namespaceProxy struct {
	rt *Runtime
	id summary.NodeID
}

func (p *namespaceProxy) Kind() summary.Kind { return summary.KindNamespace }

func (p *namespaceProxy) Attr(name string) (Value, error) { return p.rt.attr(p.id, name) }

func (p *namespaceProxy) Attrs() []string { return p.rt.attrs(p.id) }

func (p *namespaceProxy) Call(args ...any) ([]any, error) { return nil, ErrNotCallable }

func (p *namespaceProxy) Construct(args ...any) (Value, error) { return nil, ErrNotConstructible }

func (p *namespaceProxy) Interface() any { return nil }

// typeProxy stands in for a class-like construct. Instances can never exist,
// so member access delegates to the node's own children and eager names:
// chained access such as PlaceholderType.Method keeps resolving through the
// graph instead of failing immediately.
type typeProxy struct {
	rt *Runtime
	id summary.NodeID
}

func (p *typeProxy) Kind() summary.Kind { return summary.KindType }

func (p *typeProxy) Attr(name string) (Value, error) { return p.rt.attr(p.id, name) }

func (p *typeProxy) Attrs() []string { return p.rt.attrs(p.id) }

// Call mirrors construction for type constructs.
func (p *typeProxy) Call(args ...any) ([]any, error) { return nil, p.rt.missing() }

func (p *typeProxy) Construct(args ...any) (Value, error) { return nil, p.rt.missing() }

func (p *typeProxy) Interface() any { return nil }

// callableProxy stands in for a free function. It never executes.
type callableProxy struct {
	rt *Runtime
}

func (p *callableProxy) Kind() summary.Kind { return summary.KindCallable }

func (p *callableProxy) Attr(name string) (Value, error) {
	return nil, &UnknownAttributeError{Name: name}
}

func (p *callableProxy) Attrs() []string { return nil }

func (p *callableProxy) Call(args ...any) ([]any, error) { return nil, p.rt.missing() }

func (p *callableProxy) Construct(args ...any) (Value, error) { return nil, ErrNotConstructible }

func (p *callableProxy) Interface() any { return nil }

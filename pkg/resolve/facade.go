package resolve

import (
	"errors"
	"fmt"

	"github.com/matzehuels/depshim/pkg/shim"
	"github.com/matzehuels/depshim/pkg/summary"
)

// State is the facade's resolution state. It starts Unresolved and moves
// exactly once to Real or Shimmed; resolved states are terminal.
type State int

const (
	// StateUnresolved means no member access has forced a decision yet.
	StateUnresolved State = iota
	// StateReal means the real module loaded and permanently backs the facade.
	StateReal
	// StateShimmed means the module was absent and the shim tree permanently
	// backs the facade.
	StateShimmed
)

// String returns a short label for the state.
func (s State) String() string {
	switch s {
	case StateReal:
		return "real"
	case StateShimmed:
		return "shimmed"
	default:
		return "unresolved"
	}
}

// Config describes one guarded module.
type Config struct {
	// Module is the identifier handed to the resolver. Required.
	Module string

	// InstallHint is the human-readable instruction reported by
	// MissingDependencyError when the shim is in use.
	InstallHint string

	// Resolver is the real loading mechanism. Defaults to [Default].
	Resolver Resolver

	// Summary is the module's in-memory summary graph. Exactly one of
	// Summary and SummaryFile should be set; a facade without either can
	// only resolve for real.
	Summary *summary.Graph

	// SummaryFile points at a persisted summary document, loaded the first
	// time it is needed.
	SummaryFile string

	// ExplicitPaths lists fully qualified dotted paths of sub-hierarchies
	// that require forced loading before they appear on their parent.
	ExplicitPaths []string
}

// Facade is the single object callers hold for a guarded module. The first
// member access resolves it, to the real hierarchy when the resolver can
// load it or to the shim tree when the resolver reports ErrNotFound, and
// every later access delegates to that permanent result.
//
// A facade's resolved state and its shim runtime are private to the
// instance; independent facades never share them.
type Facade struct {
	module   string
	hint     string
	resolver Resolver
	graph    *summary.Graph
	file     string
	trie     *PathTrie

	state State
	value shim.Value
}

// New creates a facade from cfg.
func New(cfg Config) (*Facade, error) {
	if cfg.Module == "" {
		return nil, fmt.Errorf("facade: module identifier is required")
	}
	r := cfg.Resolver
	if r == nil {
		r = Default
	}

	f := &Facade{
		module:   cfg.Module,
		hint:     cfg.InstallHint,
		resolver: r,
		graph:    cfg.Summary,
		file:     cfg.SummaryFile,
	}
	if len(cfg.ExplicitPaths) > 0 {
		f.trie = NewPathTrie(nil)
		prefix := cfg.Module + "."
		for _, p := range cfg.ExplicitPaths {
			if rel, ok := cutPrefix(p, prefix); ok {
				f.trie.Insert(rel)
			}
		}
	}
	return f, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return s, false
}

// Module returns the guarded module identifier.
func (f *Facade) Module() string { return f.module }

// State returns the current resolution state.
func (f *Facade) State() State { return f.state }

// summarize returns the summary graph, loading the persisted document on
// first use.
func (f *Facade) summarize() (*summary.Graph, error) {
	if f.graph != nil {
		return f.graph, nil
	}
	if f.file == "" {
		return nil, fmt.Errorf("facade %s: no summary available", f.module)
	}
	g, err := summary.ImportJSON(f.file)
	if err != nil {
		return nil, err
	}
	f.graph = g
	return g, nil
}

// Resolve forces resolution. "Module not found" becomes the shim; any other
// resolver failure returns unchanged and leaves the facade unresolved, so a
// present-but-broken dependency is never masked.
func (f *Facade) Resolve() error {
	if f.state != StateUnresolved {
		return nil
	}

	obj, err := f.resolver.Resolve(f.module)
	switch {
	case err == nil:
		f.value = WrapReal(obj)
		f.state = StateReal
		return nil
	case errors.Is(err, ErrNotFound):
		g, gerr := f.summarize()
		if gerr != nil {
			return fmt.Errorf("module %s absent and no usable summary: %w", f.module, gerr)
		}
		root, rerr := shim.NewRuntime(f.module, g, f.hint).Root()
		if rerr != nil {
			return rerr
		}
		f.value = root
		f.state = StateShimmed
		return nil
	default:
		return err
	}
}

// resolveChain resolves the facade and walks an attribute chain against the
// resolved object.
func (f *Facade) resolveChain(segments []string) (shim.Value, error) {
	if err := f.Resolve(); err != nil {
		return nil, err
	}
	return shim.AttrChain(f.value, segments)
}

// forceLoad explicitly loads the sub-hierarchy at the relative dotted path.
// An absent module is not an error here; the shim serves the chain instead.
// Every other failure propagates unchanged.
func (f *Facade) forceLoad(rel string) error {
	loader, ok := f.resolver.(ChildLoader)
	if !ok {
		return nil
	}
	err := loader.ForceLoad(f.module, f.module+"."+rel)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Kind reports the facade's structural kind: the resolved object's kind, or
// namespace while unresolved (a module root is a namespace).
func (f *Facade) Kind() summary.Kind {
	if f.state != StateUnresolved {
		return f.value.Kind()
	}
	return summary.KindNamespace
}

// Attr resolves a member. Before resolution, names matching the explicit
// submodule trie yield intermediate namespaces instead of forcing a
// decision.
func (f *Facade) Attr(name string) (shim.Value, error) {
	if f.state == StateUnresolved && f.trie != nil {
		if n := f.trie.root.descend(name); n != nil {
			return &chainNamespace{facade: f, node: n, path: []string{name}}, nil
		}
	}
	if err := f.Resolve(); err != nil {
		return nil, err
	}
	return f.value.Attr(name)
}

// Attrs lists members. Before resolution this is a best-effort preview of
// the summary's root node; afterwards it reports the resolved object's
// actual members.
func (f *Facade) Attrs() []string {
	if f.state != StateUnresolved {
		return f.value.Attrs()
	}
	g, err := f.summarize()
	if err != nil {
		return nil
	}
	root, err := g.Node(g.Root)
	if err != nil {
		return nil
	}
	return root.Names()
}

// Call resolves the facade and invokes the resolved object.
func (f *Facade) Call(args ...any) ([]any, error) {
	if err := f.Resolve(); err != nil {
		return nil, err
	}
	return f.value.Call(args...)
}

// Construct resolves the facade and instantiates the resolved object.
func (f *Facade) Construct(args ...any) (shim.Value, error) {
	if err := f.Resolve(); err != nil {
		return nil, err
	}
	return f.value.Construct(args...)
}

// Interface returns the underlying real object after real resolution, nil
// otherwise. It never forces resolution.
func (f *Facade) Interface() any {
	if f.state == StateReal {
		return f.value.Interface()
	}
	return nil
}

// chainNamespace is the intermediate namespace returned for attribute
// chains that descend the explicit submodule trie before resolution. It
// carries the accumulated path; once the facade has resolved, it simply
// delegates to chain resolution against the resolved object.
type chainNamespace struct {
	facade *Facade
	node   *trieNode
	path   []string
}

func (c *chainNamespace) Kind() summary.Kind { return summary.KindNamespace }

// Attr follows one more segment. Reaching a trie node tagged with a
// concrete path force-loads exactly that sub-hierarchy before the chain
// resolves; descending an untagged branch stays lazy; leaving the trie
// falls through to plain chain resolution.
func (c *chainNamespace) Attr(name string) (shim.Value, error) {
	chain := append(append([]string{}, c.path...), name)

	if c.facade.State() != StateUnresolved {
		return c.facade.resolveChain(chain)
	}

	next := c.node.descend(name)
	switch {
	case next != nil && next.path != "":
		if err := c.facade.forceLoad(next.path); err != nil {
			return nil, err
		}
		return c.facade.resolveChain(chain)
	case next != nil:
		return &chainNamespace{facade: c.facade, node: next, path: chain}, nil
	default:
		if err := c.loadSelf(); err != nil {
			return nil, err
		}
		return c.facade.resolveChain(chain)
	}
}

// loadSelf force-loads this namespace's own concrete path, if it has one,
// before a chain resolves through it.
func (c *chainNamespace) loadSelf() error {
	if c.node.path == "" {
		return nil
	}
	return c.facade.forceLoad(c.node.path)
}

func (c *chainNamespace) Attrs() []string {
	if err := c.loadSelf(); err != nil {
		return nil
	}
	v, err := c.facade.resolveChain(c.path)
	if err != nil {
		return nil
	}
	return v.Attrs()
}

func (c *chainNamespace) Call(args ...any) ([]any, error) {
	if err := c.loadSelf(); err != nil {
		return nil, err
	}
	v, err := c.facade.resolveChain(c.path)
	if err != nil {
		return nil, err
	}
	return v.Call(args...)
}

func (c *chainNamespace) Construct(args ...any) (shim.Value, error) {
	if err := c.loadSelf(); err != nil {
		return nil, err
	}
	v, err := c.facade.resolveChain(c.path)
	if err != nil {
		return nil, err
	}
	return v.Construct(args...)
}

func (c *chainNamespace) Interface() any { return nil }

var (
	_ shim.Value = (*Facade)(nil)
	_ shim.Value = (*chainNamespace)(nil)
)

package resolve

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/matzehuels/depshim/pkg/introspect"
)

var (
	// ErrNotFound is the distinguished "module absent" condition. It is the
	// only resolver failure a facade converts into shim construction; every
	// other error propagates to the caller unchanged.
	ErrNotFound = errors.New("module not found")

	// ErrUnknownChildPath is returned by [Registry.ForceLoad] for a path no
	// provider registered a loader for.
	ErrUnknownChildPath = errors.New("unknown explicit child path")
)

// Resolver is the real loading mechanism for module identifiers.
// Implementations fail with ErrNotFound (possibly wrapped) when the module
// is absent, and with any other error when it is present but broken.
// Resolution may execute third-party initialization code; the core imposes
// no timeout or retry policy on it.
type Resolver interface {
	Resolve(module string) (any, error)
}

// ChildLoader is implemented by resolvers that support explicitly loading
// sub-hierarchies which are not reachable through their parent's default
// member listing.
type ChildLoader interface {
	// ForceLoad loads exactly the sub-hierarchy at the fully qualified
	// dotted path. Errors propagate unchanged to the caller.
	ForceLoad(module, path string) error
}

// Provider describes one module a binary can genuinely load.
type Provider struct {
	// Module is the importable module identifier (e.g. "vision" or
	// "vision.models").
	Module string

	// Load materializes the module's root object. Called at most once per
	// registry; the result is memoized like a module cache.
	Load func() (any, error)

	// Children maps fully qualified dotted paths to loaders for
	// sub-hierarchies that require an explicit load step before they appear
	// as members of their parent. Loaders typically attach the child to the
	// parent object as a side effect.
	Children map[string]func() error
}

// Registry is a compile-time table of providers: the in-process analog of a
// module loading system. The zero value is not usable; use NewRegistry.
type Registry struct {
	providers map[string]*Provider
	loaded    map[string]any
	forced    map[string]bool
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: map[string]*Provider{},
		loaded:    map[string]any{},
		forced:    map[string]bool{},
	}
}

// Default is the process-wide registry that provider packages register into,
// typically from their init functions, and that facades fall back to when no
// resolver is configured.
var Default = NewRegistry()

// Register adds a provider. Registering the same module twice replaces the
// earlier provider; loaded state for it is discarded.
func (r *Registry) Register(p *Provider) error {
	if p == nil || p.Module == "" {
		return fmt.Errorf("provider must have a module identifier")
	}
	if p.Load == nil {
		return fmt.Errorf("provider %q must have a load function", p.Module)
	}
	r.providers[p.Module] = p
	delete(r.loaded, p.Module)
	return nil
}

// Modules returns the registered module identifiers, sorted.
func (r *Registry) Modules() []string {
	mods := make([]string, 0, len(r.providers))
	for m := range r.providers {
		mods = append(mods, m)
	}
	slices.Sort(mods)
	return mods
}

// Resolve loads a module's root object, memoizing success. A module with no
// provider reports ErrNotFound; a provider whose Load fails reports that
// failure as-is (the module is present but broken).
func (r *Registry) Resolve(module string) (any, error) {
	if v, ok := r.loaded[module]; ok {
		return v, nil
	}
	p, ok := r.providers[module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, module)
	}
	v, err := p.Load()
	if err != nil {
		return nil, err
	}
	r.loaded[module] = v
	return v, nil
}

// ForceLoad runs the explicit loader for a fully qualified child path.
// Successful loads are memoized; failures are reported unchanged every time.
func (r *Registry) ForceLoad(module, path string) error {
	if r.forced[path] {
		return nil
	}
	p, ok := r.providers[module]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, module)
	}
	loader, ok := p.Children[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChildPath, path)
	}
	if err := loader(); err != nil {
		return err
	}
	r.forced[path] = true
	return nil
}

// ExplicitPaths scans a present module for sub-hierarchies that require
// forced loading: registered child paths whose attribute chains are not
// reachable from the root through default member listings. The scan runs
// against the freshly loaded root, before any forced loads, so it reflects
// what a consumer would see on plain access. The result feeds the facade's
// path trie at consumption time.
func (r *Registry) ExplicitPaths(module string) ([]string, error) {
	p, ok := r.providers[module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, module)
	}
	root, err := r.Resolve(module)
	if err != nil {
		return nil, err
	}

	var paths []string
	for path := range p.Children {
		rel := strings.TrimPrefix(path, module+".")
		if rel == path || rel == "" {
			continue // not under this module
		}
		if !introspect.Reachable(root, strings.Split(rel, ".")) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

var (
	_ Resolver    = (*Registry)(nil)
	_ ChildLoader = (*Registry)(nil)
)

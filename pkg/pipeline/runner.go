package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/cache"
	"github.com/matzehuels/depshim/pkg/introspect"
	"github.com/matzehuels/depshim/pkg/manifest"
	"github.com/matzehuels/depshim/pkg/observability"
	"github.com/matzehuels/depshim/pkg/resolve"
	"github.com/matzehuels/depshim/pkg/summary"
)

// Runner encapsulates scan execution with caching and storage.
//
// The Runner is stateless except for its cache, store, and logger - it
// doesn't hold scan results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  bundle.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer, and store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// A nil store disables persistence; Execute still returns the bundle.
func NewRunner(c cache.Cache, keyer cache.Keyer, store bundle.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// Execute runs the complete resolve → summarize → bundle pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Resolve. A scan requires the module; any failure, including
	// "not found", is an error here.
	resolveStart := time.Now()
	observability.Scan().OnResolveStart(ctx, opts.Module)
	root, err := opts.Resolver.Resolve(opts.Module)
	result.Stats.ResolveTime = time.Since(resolveStart)
	observability.Scan().OnResolveComplete(ctx, opts.Module, result.Stats.ResolveTime, err)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.Module, err)
	}

	// Sub-hierarchies that need an explicit load step are recorded for the
	// consumer and loaded now so the summary covers them. A child that
	// fails to load is skipped with a warning; the scan itself proceeds.
	paths, err := r.explicitPaths(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ExplicitCount = len(paths)

	// Stage 2: Summarize, with caching.
	buildStart := time.Now()
	doc, g, hit, err := r.summarize(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.CacheInfo.SummaryHit = hit
	result.Stats.NodeCount = g.Len()
	result.Stats.EagerCount = g.EagerCount()

	opts.Logger.Info("summarized module",
		"module", opts.Module,
		"nodes", result.Stats.NodeCount,
		"eager", result.Stats.EagerCount,
		"cached", hit)

	// Stage 3: Assemble and persist the bundle.
	b := &bundle.Bundle{
		Name:          manifest.NormalizeName(opts.Package),
		Module:        opts.Module,
		Extra:         opts.Extra,
		InstallHint:   opts.InstallHint,
		BuildID:       uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Summary:       doc,
		ExplicitPaths: paths,
	}
	if r.Store != nil {
		putStart := time.Now()
		err := cache.RetryWithBackoff(ctx, func() error {
			return r.Store.Put(ctx, b)
		})
		observability.Store().OnPut(ctx, b.Name, time.Since(putStart), err)
		if err != nil {
			return nil, fmt.Errorf("store bundle %s: %w", b.Name, err)
		}
	}
	result.Bundle = b

	return result, nil
}

// explicitPaths scans the registry for sub-hierarchies requiring forced
// loading and loads them so the summary includes their members. Private
// paths are skipped unless the scan includes private members.
func (r *Runner) explicitPaths(opts Options) ([]string, error) {
	reg, ok := opts.Resolver.(*resolve.Registry)
	if !ok {
		return nil, nil
	}

	all, err := reg.ExplicitPaths(opts.Module)
	if err != nil {
		return nil, fmt.Errorf("scan explicit children of %s: %w", opts.Module, err)
	}

	var paths []string
	for _, p := range all {
		if !opts.IncludePrivate && hasPrivateSegment(p) {
			continue
		}
		if err := reg.ForceLoad(opts.Module, p); err != nil {
			opts.Logger.Warn("skipping explicit child", "path", p, "error", err)
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// hasPrivateSegment reports whether any dotted segment carries the privacy
// marker.
func hasPrivateSegment(path string) bool {
	for _, seg := range strings.Split(path, ".") {
		if strings.HasPrefix(seg, "_") {
			return true
		}
	}
	return false
}

// summarize produces the module's canonical summary document, consulting
// the cache first unless a refresh was requested.
func (r *Runner) summarize(ctx context.Context, root any, opts Options) ([]byte, *summary.Graph, bool, error) {
	key := r.Keyer.SummaryKey(opts.Module, opts.SummaryKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := summary.Decode(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "summary")
				return data, g, true, nil
			}
			// Corrupt cached document, rebuild.
			_ = r.Cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "summary")
	}

	buildStart := time.Now()
	observability.Scan().OnBuildStart(ctx, opts.Module)
	g, err := summary.Build(root, introspect.Default(), summary.Options{
		IncludePrivate: opts.IncludePrivate,
		MaxDepth:       opts.buildDepth(),
	})
	buildTime := time.Since(buildStart)
	nodes := 0
	if g != nil {
		nodes = g.Len()
	}
	observability.Scan().OnBuildComplete(ctx, opts.Module, nodes, buildTime, err)
	if err != nil {
		return nil, nil, false, fmt.Errorf("summarize %s: %w", opts.Module, err)
	}

	doc, err := g.MarshalJSON()
	if err != nil {
		return nil, nil, false, fmt.Errorf("encode summary for %s: %w", opts.Module, err)
	}

	if err := r.Cache.Set(ctx, key, doc, cache.TTLSummary); err == nil {
		observability.Cache().OnCacheSet(ctx, "summary", len(doc))
	}

	return doc, g, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

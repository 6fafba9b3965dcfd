// Package pipeline provides the core scan pipeline: resolve a module,
// summarize its hierarchy, and assemble the distributable bundle.
//
// This package implements the complete resolve → summarize → bundle flow
// that can be used by CLI, API, and CI components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: Load the module's root object through the provider registry
//  2. Summarize: Walk the hierarchy into a canonical summary document
//  3. Bundle: Assemble and persist the shim payload
//
// A scan requires the module to be present; a module the registry cannot
// load is an error here, unlike at consumption time where it selects the
// shim.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	opts := pipeline.Options{
//	    Module:  "vision",
//	    Package: "demo-vision",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Bundle.Summary
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/cache"
	apperrors "github.com/matzehuels/depshim/pkg/errors"
	"github.com/matzehuels/depshim/pkg/resolve"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and CI
// =============================================================================

const (
	// DefaultMaxDepth bounds hierarchy traversal during a scan. Deeply
	// nested hierarchies degrade into eager leaves past this depth rather
	// than producing unbounded documents. Zero in Options selects this
	// default; a negative value requests unbounded traversal.
	DefaultMaxDepth = 50
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a scan.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Module is the module identifier to scan. Required.
	Module string `json:"module"`

	// Package is the installable package name the module ships in.
	// Defaults to the module identifier.
	Package string `json:"package,omitempty"`

	// Extra is the extras group the package belongs to, if any.
	Extra string `json:"extra,omitempty"`

	// InstallHint is the instruction surfaced by shim errors.
	InstallHint string `json:"install_hint,omitempty"`

	// IncludePrivate includes members whose names carry the privacy marker.
	IncludePrivate bool `json:"include_private,omitempty"`

	// MaxDepth bounds traversal depth. Zero selects DefaultMaxDepth,
	// negative values request unbounded traversal.
	MaxDepth int `json:"max_depth,omitempty"`

	// Refresh bypasses the summary cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger      `json:"-"`
	Resolver resolve.Resolver `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a scan.
type Result struct {
	// Bundle is the assembled shim payload.
	Bundle *bundle.Bundle

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the summary came from cache.
	CacheInfo CacheInfo
}

// Stats contains scan execution statistics.
type Stats struct {
	NodeCount     int
	EagerCount    int
	ExplicitCount int
	ResolveTime   time.Duration
	BuildTime     time.Duration
}

// CacheInfo tracks cache usage for the scan.
type CacheInfo struct {
	SummaryHit bool // Whether the summary document came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := apperrors.ValidateModule(o.Module); err != nil {
		return err
	}
	if o.Package != "" {
		if err := apperrors.ValidatePackageName(o.Package); err != nil {
			return err
		}
	}
	if o.Package == "" {
		o.Package = o.Module
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Resolver == nil {
		o.Resolver = resolve.Default
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// buildDepth translates the Options depth convention into the builder's,
// where zero means unbounded.
func (o *Options) buildDepth() int {
	if o.MaxDepth < 0 {
		return 0
	}
	return o.MaxDepth
}

// SummaryKeyOpts returns cache key options for the summary document.
func (o *Options) SummaryKeyOpts() cache.SummaryKeyOpts {
	return cache.SummaryKeyOpts{
		IncludePrivate: o.IncludePrivate,
		MaxDepth:       o.MaxDepth,
	}
}

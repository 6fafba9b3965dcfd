package cache

import (
	"context"
	"time"
)

// schemaVersion is baked into every generated key so that incompatible
// changes to the summary document layout invalidate old entries instead of
// deserializing garbage.
const schemaVersion = 1

// Default TTLs per artifact type. Summaries follow the installed package
// and go stale on upgrade, so they expire; bundles carry a build ID and are
// replaced explicitly.
const (
	TTLSummary = 7 * 24 * time.Hour
	TTLBundle  = 0
)

// Cache is the byte-oriented storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. A miss is (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SummaryKeyOpts captures the scan options that change a summary's shape.
// Two scans of the same module with different options must never share a
// cache entry.
type SummaryKeyOpts struct {
	IncludePrivate bool
	MaxDepth       int
}

// Keyer generates cache keys for the artifacts the scanner produces.
type Keyer interface {
	// SummaryKey generates a key for a module's summary document.
	SummaryKey(module string, opts SummaryKeyOpts) string

	// BundleKey generates a key for an assembled bundle.
	BundleKey(name string) string
}

// DefaultKeyer hashes all key components so arbitrary module identifiers
// never produce unsafe or colliding keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SummaryKey generates a key for a module's summary document.
func (k *DefaultKeyer) SummaryKey(module string, opts SummaryKeyOpts) string {
	return hashKey("summary", schemaVersion, module, opts.IncludePrivate, opts.MaxDepth)
}

// BundleKey generates a key for an assembled bundle.
func (k *DefaultKeyer) BundleKey(name string) string {
	return hashKey("bundle", schemaVersion, name)
}

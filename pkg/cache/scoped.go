package cache

// ScopedKeyer wraps a Keyer with a prefix so separate projects or tenants
// sharing one backend never collide.
//
// Example usage:
//
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:demo:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SummaryKey generates a prefixed key for a module's summary document.
func (k *ScopedKeyer) SummaryKey(module string, opts SummaryKeyOpts) string {
	return k.prefix + k.inner.SummaryKey(module, opts)
}

// BundleKey generates a prefixed key for an assembled bundle.
func (k *ScopedKeyer) BundleKey(name string) string {
	return k.prefix + k.inner.BundleKey(name)
}

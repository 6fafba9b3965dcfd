package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// SummaryKey is deterministic
	sk1 := k.SummaryKey("vision", SummaryKeyOpts{MaxDepth: 10})
	sk2 := k.SummaryKey("vision", SummaryKeyOpts{MaxDepth: 10})
	if sk1 != sk2 {
		t.Error("SummaryKey should be deterministic")
	}

	// Options change the key
	sk3 := k.SummaryKey("vision", SummaryKeyOpts{MaxDepth: 20})
	if sk1 == sk3 {
		t.Error("Different SummaryKeyOpts should produce different keys")
	}
	sk4 := k.SummaryKey("vision", SummaryKeyOpts{MaxDepth: 10, IncludePrivate: true})
	if sk1 == sk4 {
		t.Error("IncludePrivate should produce a different key")
	}

	// Different modules never share a key
	if sk1 == k.SummaryKey("audio", SummaryKeyOpts{MaxDepth: 10}) {
		t.Error("Different modules should produce different keys")
	}

	// BundleKey
	bk1 := k.BundleKey("demo-vision")
	bk2 := k.BundleKey("demo-audio")
	if bk1 == bk2 {
		t.Error("Different bundle names should produce different keys")
	}
	if !strings.HasPrefix(bk1, "bundle:") || !strings.HasPrefix(sk1, "summary:") {
		t.Error("keys should carry their artifact prefix")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "project:demo:")

	key := scoped.SummaryKey("vision", SummaryKeyOpts{})
	if !strings.HasPrefix(key, "project:demo:summary:") {
		t.Errorf("ScopedKeyer SummaryKey should be prefixed: %s", key)
	}
	if strings.TrimPrefix(key, "project:demo:") != inner.SummaryKey("vision", SummaryKeyOpts{}) {
		t.Error("ScopedKeyer should delegate to the inner keyer")
	}

	bundleKey := scoped.BundleKey("demo-vision")
	if !strings.HasPrefix(bundleKey, "project:demo:bundle:") {
		t.Errorf("ScopedKeyer BundleKey should be prefixed: %s", bundleKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.BundleKey("demo")
	if !strings.HasPrefix(key, "prefix:bundle:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	transient := errors.New("connection reset")
	err := Retryable(transient)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != transient.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(errors.New("permanent")) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	permanent := errors.New("permanent failure")
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("transient"))
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

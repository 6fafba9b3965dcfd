package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/cache"
	"github.com/matzehuels/depshim/pkg/resolve"
	"github.com/matzehuels/depshim/pkg/summary"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func visionRegistry(t *testing.T) *resolve.Registry {
	t.Helper()
	reg := resolve.NewRegistry()
	err := reg.Register(&resolve.Provider{
		Module: "vision",
		Load: func() (any, error) {
			return map[string]any{
				"models": map[string]any{
					"ResNet": func(layers int) string { return "resnet" },
				},
				"version": "1.0",
				"_debug":  map[string]any{},
			}, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		Module:      "vision",
		Package:     "Demo-Vision",
		Extra:       "vision",
		InstallHint: "pip install demo[vision]",
		Resolver:    visionRegistry(t),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	b := result.Bundle
	if b.Name != "demo-vision" {
		t.Errorf("Name = %q, want the normalized package name", b.Name)
	}
	if b.Module != "vision" || b.Extra != "vision" {
		t.Errorf("Bundle = %+v, module metadata should carry through", b)
	}
	if b.BuildID == "" {
		t.Error("BuildID should be assigned")
	}
	if b.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	// root, models, ResNet. The private member and the opaque version string
	// never become nodes.
	if result.Stats.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", result.Stats.NodeCount)
	}
	if result.Stats.EagerCount != 1 {
		t.Errorf("EagerCount = %d, want 1 (version)", result.Stats.EagerCount)
	}
	if result.CacheInfo.SummaryHit {
		t.Error("first scan should not be a cache hit")
	}

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}
	root, _ := g.Node(g.Root)
	if _, ok := root.Children["_debug"]; ok {
		t.Error("private members should be excluded by default")
	}
}

func TestExecutePackageDefaultsToModule(t *testing.T) {
	runner := NewRunner(nil, nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), Options{
		Module:   "vision",
		Resolver: visionRegistry(t),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Bundle.Name != "vision" {
		t.Errorf("Name = %q, want vision", result.Bundle.Name)
	}
}

func TestExecuteRequiresModule(t *testing.T) {
	runner := NewRunner(nil, nil, nil, quietLogger())
	if _, err := runner.Execute(context.Background(), Options{}); err == nil {
		t.Error("Execute() should require a module")
	}
}

func TestExecuteAbsentModuleIsError(t *testing.T) {
	runner := NewRunner(nil, nil, nil, quietLogger())
	_, err := runner.Execute(context.Background(), Options{
		Module:   "absent",
		Resolver: resolve.NewRegistry(),
	})
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("Execute() error = %v, a scan needs the module present", err)
	}
}

func TestExecuteCacheHit(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewMemoryCache(8)
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil, quietLogger())

	opts := Options{Module: "vision", Resolver: visionRegistry(t)}
	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.SummaryHit {
		t.Error("first scan should miss the cache")
	}

	second, err := runner.Execute(ctx, Options{Module: "vision", Resolver: visionRegistry(t)})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.SummaryHit {
		t.Error("second scan should hit the cache")
	}
	if string(first.Bundle.Summary) != string(second.Bundle.Summary) {
		t.Error("cached and fresh summary documents should be identical")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	c, _ := cache.NewMemoryCache(8)
	runner := NewRunner(c, nil, nil, quietLogger())

	if _, err := runner.Execute(ctx, Options{Module: "vision", Resolver: visionRegistry(t)}); err != nil {
		t.Fatal(err)
	}
	result, err := runner.Execute(ctx, Options{
		Module:   "vision",
		Resolver: visionRegistry(t),
		Refresh:  true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.CacheInfo.SummaryHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecutePersistsToStore(t *testing.T) {
	ctx := context.Background()
	store, err := bundle.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, store, quietLogger())

	if _, err := runner.Execute(ctx, Options{
		Module:   "vision",
		Package:  "demo-vision",
		Resolver: visionRegistry(t),
	}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	stored, err := store.Get(ctx, "demo-vision")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Module != "vision" {
		t.Errorf("stored Module = %q, want vision", stored.Module)
	}
	if _, err := stored.Graph(); err != nil {
		t.Errorf("stored summary should decode: %v", err)
	}
}

func TestExecuteExplicitChildren(t *testing.T) {
	root := map[string]any{"version": "1.0"}
	reg := resolve.NewRegistry()
	err := reg.Register(&resolve.Provider{
		Module: "vision",
		Load:   func() (any, error) { return root, nil },
		Children: map[string]func() error{
			"vision.extras": func() error {
				root["extras"] = map[string]any{"Tool": func() {}}
				return nil
			},
			"vision._internal": func() error {
				root["_internal"] = map[string]any{}
				return nil
			},
			"vision.broken": func() error { return errors.New("load failed") },
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), Options{
		Module:   "vision",
		Resolver: reg,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// The private path is skipped, the broken one warned and skipped, the
	// good one loaded and recorded.
	if len(result.Bundle.ExplicitPaths) != 1 || result.Bundle.ExplicitPaths[0] != "vision.extras" {
		t.Errorf("ExplicitPaths = %v, want [vision.extras]", result.Bundle.ExplicitPaths)
	}

	// The forced subtree made it into the summary.
	g, _ := result.Bundle.Graph()
	rootNode, _ := g.Node(g.Root)
	extrasID, ok := rootNode.Children["extras"]
	if !ok {
		t.Fatal("forced subtree should appear in the summary")
	}
	if _, ok := g.Nodes[extrasID].Children["Tool"]; !ok {
		t.Error("forced subtree members should be summarized")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Module: "vision"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Package != "vision" {
		t.Errorf("Package = %q, want vision", opts.Package)
	}
	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", opts.MaxDepth, DefaultMaxDepth)
	}
	if opts.Resolver == nil || opts.Logger == nil {
		t.Error("Resolver and Logger should default")
	}

	// Idempotent: a second call leaves explicit values alone.
	opts.MaxDepth = 7
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.MaxDepth != 7 {
		t.Error("second call must not reapply defaults")
	}
}

func TestBuildDepth(t *testing.T) {
	tests := []struct {
		maxDepth int
		want     int
	}{
		{DefaultMaxDepth, DefaultMaxDepth},
		{7, 7},
		{-1, 0}, // negative requests unbounded traversal
	}
	for _, tt := range tests {
		opts := Options{Module: "m", MaxDepth: tt.maxDepth}
		if got := opts.buildDepth(); got != tt.want {
			t.Errorf("buildDepth() with MaxDepth=%d = %d, want %d", tt.maxDepth, got, tt.want)
		}
	}
}

func TestHasPrivateSegment(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"vision.extras", false},
		{"vision._internal", true},
		{"vision._internal.sub", true},
		{"_vision.sub", true},
	}
	for _, tt := range tests {
		if got := hasPrivateSegment(tt.path); got != tt.want {
			t.Errorf("hasPrivateSegment(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSummarizeDeterministicDocument(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil, quietLogger())

	a, err := runner.Execute(ctx, Options{Module: "vision", Resolver: visionRegistry(t)})
	if err != nil {
		t.Fatal(err)
	}
	b, err := runner.Execute(ctx, Options{Module: "vision", Resolver: visionRegistry(t)})
	if err != nil {
		t.Fatal(err)
	}
	if string(a.Bundle.Summary) != string(b.Bundle.Summary) {
		t.Error("independent scans of the same hierarchy should emit identical documents")
	}

	// And the document round-trips canonically.
	g, err := summary.Decode(a.Bundle.Summary)
	if err != nil {
		t.Fatal(err)
	}
	re, err := g.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(re) != string(a.Bundle.Summary) {
		t.Error("summary document should be canonical")
	}
}

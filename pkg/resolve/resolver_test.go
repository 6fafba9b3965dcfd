package resolve

import (
	"errors"
	"fmt"
	"testing"
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	loads := 0
	root := map[string]any{"version": "1.0"}
	if err := reg.Register(&Provider{
		Module: "vision",
		Load: func() (any, error) {
			loads++
			return root, nil
		},
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	v, err := reg.Resolve("vision")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if fmt.Sprintf("%p", v) != fmt.Sprintf("%p", root) {
		t.Error("Resolve() should return the loaded root")
	}

	if _, err := reg.Resolve("vision"); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if loads != 1 {
		t.Errorf("Load called %d times, want 1 (memoized)", loads)
	}
}

func TestRegistryResolveNotFound(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestRegistryResolveBrokenProvider(t *testing.T) {
	reg := NewRegistry()
	broken := errors.New("import blew up")
	_ = reg.Register(&Provider{
		Module: "vision",
		Load:   func() (any, error) { return nil, broken },
	})

	_, err := reg.Resolve("vision")
	if !errors.Is(err, broken) {
		t.Errorf("Resolve() error = %v, want the provider's own failure", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("a broken module must not read as absent")
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(nil); err == nil {
		t.Error("Register(nil) should fail")
	}
	if err := reg.Register(&Provider{Module: ""}); err == nil {
		t.Error("Register without module should fail")
	}
	if err := reg.Register(&Provider{Module: "x"}); err == nil {
		t.Error("Register without load function should fail")
	}
}

func TestRegistryModules(t *testing.T) {
	reg := NewRegistry()
	load := func() (any, error) { return map[string]any{}, nil }
	_ = reg.Register(&Provider{Module: "zeta", Load: load})
	_ = reg.Register(&Provider{Module: "alpha", Load: load})

	mods := reg.Modules()
	if len(mods) != 2 || mods[0] != "alpha" || mods[1] != "zeta" {
		t.Errorf("Modules() = %v, want [alpha zeta]", mods)
	}
}

func TestRegistryForceLoad(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	_ = reg.Register(&Provider{
		Module: "vision",
		Load:   func() (any, error) { return map[string]any{}, nil },
		Children: map[string]func() error{
			"vision.models": func() error { calls++; return nil },
		},
	})

	if err := reg.ForceLoad("vision", "vision.models"); err != nil {
		t.Fatalf("ForceLoad() error = %v", err)
	}
	if err := reg.ForceLoad("vision", "vision.models"); err != nil {
		t.Fatalf("second ForceLoad() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1 (memoized)", calls)
	}

	if err := reg.ForceLoad("vision", "vision.unknown"); !errors.Is(err, ErrUnknownChildPath) {
		t.Errorf("ForceLoad(unknown) error = %v, want ErrUnknownChildPath", err)
	}
	if err := reg.ForceLoad("absent", "absent.x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ForceLoad on absent module error = %v, want ErrNotFound", err)
	}
}

func TestRegistryForceLoadFailureNotMemoized(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	_ = reg.Register(&Provider{
		Module: "vision",
		Load:   func() (any, error) { return map[string]any{}, nil },
		Children: map[string]func() error{
			"vision.models": func() error { calls++; return errors.New("load failed") },
		},
	})

	for i := 0; i < 2; i++ {
		if err := reg.ForceLoad("vision", "vision.models"); err == nil {
			t.Fatal("ForceLoad() should report the loader failure")
		}
	}
	if calls != 2 {
		t.Errorf("failing loader called %d times, want 2 (not memoized)", calls)
	}
}

func TestExplicitPaths(t *testing.T) {
	// models is attached to the root by its loader, extras is not reachable
	// until forced, and datasets is reachable through plain member listing.
	root := map[string]any{
		"datasets": map[string]any{"load": func() {}},
	}
	reg := NewRegistry()
	_ = reg.Register(&Provider{
		Module: "vision",
		Load:   func() (any, error) { return root, nil },
		Children: map[string]func() error{
			"vision.datasets": func() error { return nil },
			"vision.extras": func() error {
				root["extras"] = map[string]any{}
				return nil
			},
		},
	})

	paths, err := reg.ExplicitPaths("vision")
	if err != nil {
		t.Fatalf("ExplicitPaths() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != "vision.extras" {
		t.Errorf("ExplicitPaths() = %v, want [vision.extras]", paths)
	}

	if _, err := reg.ExplicitPaths("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ExplicitPaths(absent) error = %v, want ErrNotFound", err)
	}
}

func TestPathTrie(t *testing.T) {
	trie := NewPathTrie([]string{"models", "extras.audio", "extras.video", ""})

	if trie.Len() != 3 {
		t.Errorf("Len() = %d, want 3", trie.Len())
	}
	paths := trie.Paths()
	want := []string{"extras.audio", "extras.video", "models"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Paths()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	// Concrete leaf nodes are tagged; intermediates are not.
	n := trie.root.descend("extras")
	if n == nil || n.path != "" {
		t.Error("extras should be an untagged intermediate node")
	}
	leaf := n.descend("audio")
	if leaf == nil || leaf.path != "extras.audio" {
		t.Errorf("extras.audio should be tagged with its concrete path, got %+v", leaf)
	}
	if trie.root.descend("missing") != nil {
		t.Error("descend on an unknown segment should return nil")
	}
}

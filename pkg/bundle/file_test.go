package bundle

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := sampleBundle()
	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, b.Name)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != b.Name || got.Module != b.Module {
		t.Errorf("Get() = %+v, want %+v", got, b)
	}
	if string(got.Summary) != sampleSummary {
		t.Error("summary should survive storage verbatim")
	}
}

func TestFileStoreGetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestFileStorePutReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := sampleBundle()
	_ = s.Put(ctx, b)

	b.BuildID = "second-build"
	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, _ := s.Get(ctx, b.Name)
	if got.BuildID != "second-build" {
		t.Errorf("BuildID = %q, Put should replace", got.BuildID)
	}
}

func TestFileStorePutRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	b := sampleBundle()
	b.Summary = nil
	if err := s.Put(context.Background(), b); !errors.Is(err, ErrInvalid) {
		t.Errorf("Put() error = %v, want ErrInvalid", err)
	}
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"", "a/b", `a\b`} {
		if _, err := s.Get(ctx, name); !errors.Is(err, ErrInvalid) {
			t.Errorf("Get(%q) error = %v, want ErrInvalid", name, err)
		}
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}

	for _, n := range []string{"zeta", "alpha"} {
		b := sampleBundle()
		b.Name = n
		if err := s.Put(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	names, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("List() = %v, want [alpha zeta]", names)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := sampleBundle()
	_ = s.Put(ctx, b)

	if err := s.Delete(ctx, b.Name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, b.Name); !errors.Is(err, ErrNotFound) {
		t.Error("bundle should be gone after Delete")
	}

	// Deleting a missing bundle is tolerated.
	if err := s.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete(absent) error = %v, want nil", err)
	}
}

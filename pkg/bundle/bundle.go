// Package bundle defines the distributable artifact the scanner produces:
// one package's summary document together with the metadata a consumer
// needs to reconstruct a shim for it.
//
// A bundle carries the installable package name, the module identifier it
// guards, the extras group that pulls it in, the rendered install hint, the
// canonical summary document, and the explicit child paths that require
// forced loading. Bundles are stored through the Store interface, with
// file-based and MongoDB-backed implementations.
package bundle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/depshim/pkg/resolve"
	"github.com/matzehuels/depshim/pkg/summary"
)

// Sentinel errors for bundle storage.
var (
	// ErrNotFound is returned when a requested bundle does not exist.
	ErrNotFound = errors.New("bundle not found")

	// ErrInvalid is returned for bundles that fail validation.
	ErrInvalid = errors.New("invalid bundle")
)

// Bundle is one package's portable shim payload.
type Bundle struct {
	// Name is the installable package name, normalized.
	Name string `json:"name" bson:"name"`

	// Module is the module identifier the package provides.
	Module string `json:"module" bson:"module"`

	// Extra is the extras group that pulls the package in, if any.
	Extra string `json:"extra,omitempty" bson:"extra,omitempty"`

	// InstallHint is the rendered instruction surfaced by shim errors.
	InstallHint string `json:"install_hint,omitempty" bson:"install_hint,omitempty"`

	// BuildID uniquely identifies the scan that produced this bundle.
	BuildID string `json:"build_id" bson:"build_id"`

	// CreatedAt is the scan time.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Summary is the canonical summary document, embedded verbatim.
	Summary json.RawMessage `json:"summary" bson:"summary"`

	// ExplicitPaths lists fully qualified dotted paths of sub-hierarchies
	// that require forced loading before they appear on their parent.
	ExplicitPaths []string `json:"explicit_child_modules,omitempty" bson:"explicit_child_modules,omitempty"`
}

// Validate checks the fields a consumer depends on.
func (b *Bundle) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if b.Module == "" {
		return fmt.Errorf("%w: module is required", ErrInvalid)
	}
	if len(b.Summary) == 0 {
		return fmt.Errorf("%w: summary document is required", ErrInvalid)
	}
	return nil
}

// Graph decodes the embedded summary document.
func (b *Bundle) Graph() (*summary.Graph, error) {
	return summary.Decode(b.Summary)
}

// Facade builds the resolution facade a consumer holds for this bundle's
// module. A nil resolver selects the process-wide provider registry.
func (b *Bundle) Facade(r resolve.Resolver) (*resolve.Facade, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	g, err := b.Graph()
	if err != nil {
		return nil, err
	}
	return resolve.New(resolve.Config{
		Module:        b.Module,
		InstallHint:   b.InstallHint,
		Resolver:      r,
		Summary:       g,
		ExplicitPaths: b.ExplicitPaths,
	})
}

// Store is the interface for bundle storage backends.
type Store interface {
	// Get retrieves a bundle by name. Returns ErrNotFound when absent.
	Get(ctx context.Context, name string) (*Bundle, error)

	// Put stores a bundle, replacing any bundle with the same name.
	Put(ctx context.Context, b *Bundle) error

	// List returns the stored bundle names, sorted.
	List(ctx context.Context) ([]string, error)

	// Delete removes a bundle. Deleting a missing bundle is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// WriteFile writes a single bundle document to a file.
func WriteFile(path string, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadFile reads a single bundle document from a file.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

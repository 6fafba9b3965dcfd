// Package manifest reads depshim.toml, the project manifest that ties
// installable packages to the module identifiers they provide and to the
// extras groups that pull them in.
//
// A minimal manifest:
//
//	[package]
//	name = "demo"
//	install_hint = "pip install %q"
//
//	[extras]
//	vision = ["torch-vision", "pillow"]
//	audio = ["sound-core"]
//
//	[modules]
//	torch-vision = "vision"
//
// Package names are normalized the way package indexes compare them:
// lowercased, with runs of "-", "_" and "." collapsed to a single "-".
// When [modules] carries no override, the module identifier is derived by
// sanitizing the normalized name ("torch-vision" becomes "torch_vision").
package manifest

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the parsed depshim.toml.
type Manifest struct {
	Package Package             `toml:"package"`
	Extras  map[string][]string `toml:"extras"`
	Modules map[string]string   `toml:"modules"`
}

// Package carries project-level settings.
type Package struct {
	// Name is the installable distribution name of the project itself.
	Name string `toml:"name"`

	// InstallHint is an optional fmt template with a single %s (or %q) verb
	// that receives the install spec, e.g. `pip install %q`. When empty, a
	// generic "install ..." instruction is produced.
	InstallHint string `toml:"install_hint"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Parse parses a manifest from a reader.
func Parse(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("parse manifest: package.name is required")
	}
	return &m, nil
}

var normalizeRe = regexp.MustCompile(`[-_.]+`)

// NormalizeName canonicalizes a package name for comparison: lowercase, with
// runs of separator characters collapsed to a single hyphen.
func NormalizeName(name string) string {
	return normalizeRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// SanitizeIdentifier turns a package name into a plausible module
// identifier by normalizing and replacing hyphens with underscores.
func SanitizeIdentifier(name string) string {
	return strings.ReplaceAll(NormalizeName(name), "-", "_")
}

// ModuleFor maps a package name to its module identifier, honoring an
// explicit [modules] override before falling back to sanitization.
func (m *Manifest) ModuleFor(pkg string) string {
	norm := NormalizeName(pkg)
	for name, module := range m.Modules {
		if NormalizeName(name) == norm {
			return module
		}
	}
	return SanitizeIdentifier(pkg)
}

// ExtraNames returns the declared extras group names, sorted.
func (m *Manifest) ExtraNames() []string {
	names := make([]string, 0, len(m.Extras))
	for name := range m.Extras {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExtraFor returns the extras group that pulls in the given package, if any.
// When a package appears in several groups, the lexicographically first
// group wins, keeping the answer deterministic.
func (m *Manifest) ExtraFor(pkg string) (string, bool) {
	norm := NormalizeName(pkg)
	for _, extra := range m.ExtraNames() {
		for _, p := range m.Extras[extra] {
			if NormalizeName(p) == norm {
				return extra, true
			}
		}
	}
	return "", false
}

// ExtraPackages returns the normalized package names in an extras group,
// sorted. Unknown groups are an error.
func (m *Manifest) ExtraPackages(extra string) ([]string, error) {
	pkgs, ok := m.Extras[extra]
	if !ok {
		return nil, fmt.Errorf("manifest: unknown extra %q", extra)
	}
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, NormalizeName(p))
	}
	slices.Sort(out)
	return out, nil
}

// ExtraModules returns the module identifiers provided by an extras group,
// sorted.
func (m *Manifest) ExtraModules(extra string) ([]string, error) {
	pkgs, err := m.ExtraPackages(extra)
	if err != nil {
		return nil, err
	}
	mods := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		mods = append(mods, m.ModuleFor(p))
	}
	slices.Sort(mods)
	return mods, nil
}

// InstallHint renders the instruction a missing-dependency error should
// carry. With a known extras group the spec names the project's extra
// ("demo[vision]"); otherwise it names the package directly.
func (m *Manifest) InstallHint(pkg, extra string) string {
	spec := NormalizeName(pkg)
	if extra != "" {
		spec = fmt.Sprintf("%s[%s]", m.Package.Name, extra)
	}
	if m.Package.InstallHint != "" {
		return fmt.Sprintf(m.Package.InstallHint, spec)
	}
	return fmt.Sprintf("install %q", spec)
}

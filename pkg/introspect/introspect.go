// Package introspect provides the default reflection-backed inspector used
// to build summaries of live Go object hierarchies.
//
// # Safety
//
// Every function in this package reads only already-materialized data:
// exported struct fields, map entries, and reflect metadata. No methods,
// getters, or other computed accessors are ever invoked, so inspecting a
// hierarchy can never run code belonging to it.
//
// # Classification rules
//
// Values classify in priority order:
//
//   - structs, struct pointers, and map[string]any groupings → namespace
//   - reflect.Type values → type, unless the type is predeclared (builtin
//     numeric, string, and collection types), which are opaque because
//     reconstructing their full structure is neither useful nor safe
//   - func values → callable
//   - everything else, including non-func values with call-like methods → opaque
//
// # Privacy
//
// Member names beginning with an underscore are private. Exported struct
// fields are public by construction; the convention matters for map-backed
// namespaces whose keys are arbitrary strings.
package introspect

import (
	"reflect"
	"sort"
	"strings"

	"github.com/matzehuels/depshim/pkg/summary"
)

// privacyMarker prefixes names hidden by the privacy convention.
const privacyMarker = "_"

// Inspector is the reflection-backed implementation of [summary.Inspector].
// It is stateless and safe for concurrent use.
type Inspector struct{}

// Default returns the shared inspector instance.
func Default() *Inspector { return defaultInspector }

var defaultInspector = &Inspector{}

// Classify decides the structural kind of v without side effects.
func (*Inspector) Classify(v any) (summary.Kind, error) {
	if v == nil {
		return summary.KindOpaque, nil
	}
	if t, ok := v.(reflect.Type); ok {
		if isBuiltinType(t) {
			return summary.KindOpaque, nil
		}
		return summary.KindType, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return summary.KindCallable, nil
	case reflect.Struct:
		return summary.KindNamespace, nil
	case reflect.Pointer:
		if rv.Type().Elem().Kind() == reflect.Struct {
			return summary.KindNamespace, nil
		}
		return summary.KindOpaque, nil
	case reflect.Map:
		t := rv.Type()
		if t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.Interface {
			return summary.KindNamespace, nil
		}
		return summary.KindOpaque, nil
	default:
		return summary.KindOpaque, nil
	}
}

// isBuiltinType reports whether t is part of the host's foundational type
// set. Predeclared and unnamed types (int, string, []byte, map[string]int)
// have no package path; user-defined types always do.
func isBuiltinType(t reflect.Type) bool {
	return t.PkgPath() == ""
}

// Members enumerates the direct members of v: exported fields for structs
// and struct pointers, entries for string-keyed maps, and exported method
// funcs for reflect.Type values. Map keys are sorted so enumeration order
// is deterministic. Values without enumerable members yield nil.
func (*Inspector) Members(v any) []summary.Member {
	if v == nil {
		return nil
	}
	if t, ok := v.(reflect.Type); ok {
		return typeMembers(t)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structMembers(rv)
	case reflect.Map:
		return mapMembers(rv)
	default:
		return nil
	}
}

func structMembers(rv reflect.Value) []summary.Member {
	t := rv.Type()
	members := make([]summary.Member, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		members = append(members, summary.Member{Name: f.Name, Value: rv.Field(i).Interface()})
	}
	return members
}

func mapMembers(rv reflect.Value) []summary.Member {
	if rv.Type().Key().Kind() != reflect.String {
		return nil
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	members := make([]summary.Member, 0, len(keys))
	for _, k := range keys {
		val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
		members = append(members, summary.Member{Name: k, Value: val.Interface()})
	}
	return members
}

// typeMembers exposes a type's exported methods as callable members, so a
// summarized type keeps a navigable surface the way a real one does.
// Method funcs are materialized metadata; obtaining them runs no user code.
func typeMembers(t reflect.Type) []summary.Member {
	members := make([]summary.Member, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() || !m.Func.IsValid() {
			continue
		}
		members = append(members, summary.Member{Name: m.Name, Value: m.Func.Interface()})
	}
	return members
}

// identKey pairs a type with a pointer so identities from different types
// never collide.
type identKey struct {
	typ reflect.Type
	ptr uintptr
}

// Identity returns a comparable per-build identity key for v. Pointers,
// maps, funcs, and reflect.Type values have stable identities; everything
// else (notably bare struct values, which are copies) does not.
func (*Inspector) Identity(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if t, ok := v.(reflect.Type); ok {
		return t, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return identKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	default:
		return nil, false
	}
}

// IsPublic reports whether name is visible under the privacy convention.
func (*Inspector) IsPublic(name string) bool {
	return !strings.HasPrefix(name, privacyMarker)
}

// Lookup finds a direct member of v by name without computed access.
// It is the primitive used to test whether a dotted attribute chain is
// reachable through default member listings.
func Lookup(v any, name string) (any, bool) {
	for _, m := range Default().Members(v) {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Reachable reports whether the dotted path segments resolve from root
// through direct member listings alone.
func Reachable(root any, segments []string) bool {
	v := root
	for _, seg := range segments {
		next, ok := Lookup(v, seg)
		if !ok {
			return false
		}
		v = next
	}
	return true
}

var _ summary.Inspector = (*Inspector)(nil)

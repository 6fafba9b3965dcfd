package shim

import "github.com/matzehuels/depshim/pkg/summary"

// Value is the capability surface shared by shim proxies, real-object
// wrappers, and resolution facades. It makes member access an explicit
// dispatch over a closed set of kinds instead of a dynamic attribute hook.
//
// Implementations are not safe for concurrent use unless documented
// otherwise; the shim runtime and facade are designed for ordinary
// sequential calls.
type Value interface {
	// Kind reports the structural kind of the value.
	Kind() summary.Kind

	// Attr resolves a member by name. Shimmed values return
	// *MissingDependencyError for eager members and *UnknownAttributeError
	// for names absent from the summary.
	Attr(name string) (Value, error)

	// Attrs lists member names, sorted.
	Attrs() []string

	// Call invokes the value. Shimmed callables always fail with
	// *MissingDependencyError and never execute.
	Call(args ...any) ([]any, error)

	// Construct instantiates a type construct. Shimmed types always fail
	// with *MissingDependencyError; no shimmed instance can exist.
	Construct(args ...any) (Value, error)

	// Interface returns the underlying real object, or nil for shims.
	Interface() any
}

// AttrChain resolves a dotted attribute chain segment by segment.
func AttrChain(v Value, segments []string) (Value, error) {
	for _, seg := range segments {
		next, err := v.Attr(seg)
		if err != nil {
			return nil, err
		}
		v = next
	}
	return v, nil
}

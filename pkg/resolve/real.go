package resolve

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/depshim/pkg/introspect"
	"github.com/matzehuels/depshim/pkg/shim"
	"github.com/matzehuels/depshim/pkg/summary"
)

// WrapReal adapts a real object to the [shim.Value] capability surface, so
// a facade presents the same interface shape whether it resolved to the
// real hierarchy or to the shim tree.
func WrapReal(v any) shim.Value {
	return realValue{v: v}
}

// realValue is a thin reflection-backed accessor over a live object.
type realValue struct {
	v any
}

func (r realValue) Kind() summary.Kind {
	kind, err := introspect.Default().Classify(r.v)
	if err != nil {
		return summary.KindOpaque
	}
	return kind
}

func (r realValue) Attr(name string) (shim.Value, error) {
	if member, ok := introspect.Lookup(r.v, name); ok {
		return realValue{v: member}, nil
	}
	return nil, &shim.UnknownAttributeError{Name: name}
}

func (r realValue) Attrs() []string {
	members := introspect.Default().Members(r.v)
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return names
}

func (r realValue) Call(args ...any) ([]any, error) {
	fn := reflect.ValueOf(r.v)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, shim.ErrNotCallable
	}
	in, err := callArgs(fn.Type(), args)
	if err != nil {
		return nil, err
	}

	out := fn.Call(in)
	results := make([]any, 0, len(out))
	for _, o := range out {
		results = append(results, o.Interface())
	}

	// Trailing error results follow the usual convention.
	if n := len(results); n > 0 {
		if callErr, ok := results[n-1].(error); ok {
			return results[:n-1], callErr
		}
		if out[n-1].Type() == errType && out[n-1].IsNil() {
			return results[:n-1], nil
		}
	}
	return results, nil
}

func (r realValue) Construct(args ...any) (shim.Value, error) {
	t, ok := r.v.(reflect.Type)
	if !ok {
		return nil, shim.ErrNotConstructible
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("construct %s: positional arguments are not supported", t)
	}
	return realValue{v: reflect.New(t).Interface()}, nil
}

func (r realValue) Interface() any { return r.v }

var errType = reflect.TypeOf((*error)(nil)).Elem()

// callArgs converts loosely typed arguments to the function's parameter
// types, handling variadic tails and nil placeholders.
func callArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	if t.IsVariadic() {
		if len(args) < t.NumIn()-1 {
			return nil, fmt.Errorf("call: want at least %d args, got %d", t.NumIn()-1, len(args))
		}
	} else if len(args) != t.NumIn() {
		return nil, fmt.Errorf("call: want %d args, got %d", t.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(i)
		}
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(a)
		switch {
		case av.Type().AssignableTo(pt):
		case av.Type().ConvertibleTo(pt):
			av = av.Convert(pt)
		default:
			return nil, fmt.Errorf("call: arg %d: %s is not assignable to %s", i, av.Type(), pt)
		}
		in[i] = av
	}
	return in, nil
}

var _ shim.Value = realValue{}

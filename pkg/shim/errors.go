package shim

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCallable is returned by [Value.Call] on values that cannot be
	// invoked (namespaces and opaque values).
	ErrNotCallable = errors.New("value is not callable")

	// ErrNotConstructible is returned by [Value.Construct] on values that
	// are not type constructs.
	ErrNotConstructible = errors.New("value is not a type")
)

// MissingDependencyError reports that an operation requires an optional
// dependency that is not installed. It is raised by invoking any shimmed
// callable, constructing any shimmed type, or accessing any member recorded
// as eager.
type MissingDependencyError struct {
	Module string // module identifier of the guarded dependency
	Hint   string // human-readable install instruction
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	hint := e.Hint
	if hint == "" {
		hint = "install " + e.Module
	}
	return fmt.Sprintf("optional dependency %q is required for this feature. Install it with: %s", e.Module, hint)
}

// IsMissingDependency reports whether err indicates a missing optional
// dependency anywhere in its chain.
func IsMissingDependency(err error) bool {
	var e *MissingDependencyError
	return errors.As(err, &e)
}

// UnknownAttributeError reports a member name that exists neither as a child
// nor as an eager member. Unlike MissingDependencyError it indicates a usage
// bug rather than dependency absence.
type UnknownAttributeError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q", e.Name)
}

// IsUnknownAttribute reports whether err indicates an unknown attribute
// anywhere in its chain.
func IsUnknownAttribute(err error) bool {
	var e *UnknownAttributeError
	return errors.As(err, &e)
}

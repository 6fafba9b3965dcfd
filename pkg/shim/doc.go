// Package shim reconstructs stand-in object trees from summary graphs.
//
// # Overview
//
// When a guarded module is absent, its summary document is interpreted by a
// [Runtime] that manufactures proxy objects on demand. Proxies preserve the
// module's shape — nested namespaces, type constructs, callables — so code
// written against the real module can still be wired up and introspected.
// Any attempt to actually use missing functionality fails immediately with a
// *MissingDependencyError carrying the module identifier and an install
// hint. A name that exists nowhere in the summary fails with an
// *UnknownAttributeError instead: that signals a genuine usage bug (typo or
// version mismatch), not dependency absence, and the two must never be
// confused.
//
// # Identity
//
// The runtime memoizes proxies by node ID. Resolving the same ID twice
// returns the identical object, which preserves structural cycles: a node
// that is its own child resolves to a namespace whose member is itself.
//
// # Capability interface
//
// All proxies, the reflection wrapper for real objects, and the resolution
// facade implement [Value], a closed dispatch over member access, listing,
// invocation, and construction. This replaces dynamic attribute-miss hooks
// with an explicit polymorphic surface.
package shim

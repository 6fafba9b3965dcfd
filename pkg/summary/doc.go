// Package summary builds and serializes shape summaries of live module
// hierarchies.
//
// # Overview
//
// A summary is a finite graph describing everything reachable from a module's
// root object: nested namespaces, type constructs, and callables. Members
// whose internal structure is not worth modeling (plain values, builtin types,
// callable objects that are not functions) are recorded by name only, as
// "eager" members. The summary captures shape, never behavior: it is enough
// to reconstruct stand-in objects that can be imported and introspected, but
// any attempt to actually use missing functionality fails with a typed error.
//
// # Building
//
// [Build] walks an object hierarchy with an explicit worklist, so traversal
// depth is bounded by memory rather than by the call stack. Every distinct
// object identity is visited exactly once; back-edges (including self-cycles)
// reuse the node ID assigned on first visit:
//
//	g, err := summary.Build(root, introspect.Default(), summary.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The [Inspector] interface decouples the builder from the host's reflection
// machinery. The default implementation lives in pkg/introspect and inspects
// only already-materialized slots, so building a summary can never execute
// code belonging to the hierarchy being scanned.
//
// # Serialization
//
// Summaries serialize to a single JSON document:
//
//	{
//	  "root": 0,
//	  "nodes": {
//	    "0": {"kind": "ns", "children": {"linalg": 1}, "eager": ["VERSION"]}
//	  }
//	}
//
// Encoding is canonical: node IDs ascend numerically, children and eager
// names sort lexicographically. Decoding and re-encoding any document yields
// byte-identical output, which makes summaries safe to diff and cache by
// content hash.
//
// # Concurrency
//
// A build's worklist and identity map are local to one Build call, so
// independent builds may run concurrently. Building from a hierarchy that is
// being mutated at the same time is not supported.
package summary

// Package pkg provides the core libraries for depshim.
//
// # Overview
//
// depshim lets an application ship lightweight stand-ins for optional
// dependencies. While a dependency is installed, its module hierarchy is
// scanned into a compact summary document; when the dependency is absent,
// the document reconstructs proxy objects that expose the same structure
// and raise actionable installation errors on use. The pkg directory is
// organized into these areas:
//
//  1. [introspect] - Reflection-based hierarchy walking and classification
//  2. [summary] - The summary graph, its builder, and the canonical codec
//  3. [shim] - Proxy reconstruction from summary documents
//  4. [resolve] - Provider registry and the real-or-shim resolution facade
//  5. [manifest] / [bundle] - Package metadata and the distributable payload
//  6. [pipeline] - Orchestration (resolve → summarize → bundle)
//  7. [cache] / [render] / [errors] / [observability] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through depshim:
//
//	Live module hierarchy (dependency installed)
//	         ↓
//	    [summary] package (walk into a deduplicated graph)
//	         ↓
//	    [bundle] package (package with install metadata)
//	         ↓
//	    summary document, distributed with the application
//	         ↓
//	    [resolve] package (real module, or [shim] proxies when absent)
//
// # Quick Start
//
// Scan a module and build a facade for it:
//
//	reg := resolve.NewRegistry()
//	_ = reg.Register(&resolve.Provider{
//	    Module: "vision",
//	    Load:   func() (any, error) { return vision.Root(), nil },
//	})
//
//	runner := pipeline.NewRunner(nil, nil, store, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Module:   "vision",
//	    Resolver: reg,
//	})
//
//	facade, err := result.Bundle.Facade(reg)
//	models, err := facade.Attr("models")
package pkg

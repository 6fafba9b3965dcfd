// Package render turns summary graphs into Graphviz diagrams.
//
// [ToDOT] emits a DOT document where each graph node appears exactly once,
// edges are labeled with member names, and styling distinguishes namespaces,
// types, callables, and eager leaves. [RenderSVG] rasterizes the DOT output
// through Graphviz.
package render

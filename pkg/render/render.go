package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depshim/pkg/summary"
)

// Options configures summary graph rendering.
type Options struct {
	// RootLabel names the root node, typically the module identifier.
	// Empty defaults to "root".
	RootLabel string

	// ShowEager includes eager members as leaf nodes. Large hierarchies
	// render considerably smaller without them.
	ShowEager bool

	// Detailed includes node IDs and member counts in labels.
	Detailed bool
}

// ToDOT converts a summary graph to Graphviz DOT format. Namespaces render
// as rounded boxes, types as plain boxes, callables as ellipses, and eager
// members as dashed grey leaves. Edges carry the member name under which a
// child is reachable; shared nodes keep a single box with several inbound
// edges, so deduplication and cycles stay visible.
//
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(g *summary.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range g.IDs() {
		node, err := g.Node(id)
		if err != nil {
			continue
		}
		label := fmtLabel(g, id, node, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", dotID(id), strings.Join(fmtAttrs(node, label), ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.IDs() {
		node, err := g.Node(id)
		if err != nil {
			continue
		}
		for _, name := range node.ChildNames() {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", dotID(id), dotID(node.Children[name]), name)
		}
		if !opts.ShowEager {
			continue
		}
		for _, name := range node.EagerNames() {
			leaf := fmt.Sprintf("%s_e_%s", dotID(id), name)
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"filled,dashed\", fillcolor=lightgrey, shape=box];\n", leaf, name)
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", dotID(id), leaf)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotID(id summary.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func fmtLabel(g *summary.Graph, id summary.NodeID, n *summary.Node, opts Options) string {
	label := n.Kind.String()
	if id == g.Root && opts.RootLabel != "" {
		label = opts.RootLabel
	} else if id == g.Root {
		label = "root"
	}
	if !opts.Detailed {
		return label
	}
	return fmt.Sprintf("%s #%d\nchildren: %d, eager: %d", label, id, len(n.Children), len(n.Eager))
}

func fmtAttrs(n *summary.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case summary.KindType:
		attrs = append(attrs, "style=\"filled\"", "fillcolor=lightyellow")
	case summary.KindCallable:
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/depshim/pkg/summary"
)

func testGraph() *summary.Graph {
	return &summary.Graph{
		Root: 0,
		Nodes: map[summary.NodeID]*summary.Node{
			0: {
				Kind:     summary.KindNamespace,
				Children: map[string]summary.NodeID{"models": 1, "Config": 2},
				Eager:    map[string]bool{"version": true},
			},
			1: {
				Kind:     summary.KindNamespace,
				Children: map[string]summary.NodeID{"ResNet": 3, "parent": 0},
				Eager:    map[string]bool{},
			},
			2: {Kind: summary.KindType, Children: map[string]summary.NodeID{}, Eager: map[string]bool{}},
			3: {Kind: summary.KindCallable, Children: map[string]summary.NodeID{}, Eager: map[string]bool{}},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(), Options{RootLabel: "vision"})

	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Error("output should be a complete digraph")
	}
	if !strings.Contains(dot, `"n0" [label="vision"]`) {
		t.Error("root node should carry the root label")
	}
	if !strings.Contains(dot, `"n0" -> "n1" [label="models"]`) {
		t.Error("edges should carry member names")
	}
	// The cycle back-edge reuses the existing node.
	if !strings.Contains(dot, `"n1" -> "n0" [label="parent"]`) {
		t.Error("cycle back-edges should appear between existing nodes")
	}
	// Kind styling.
	if !strings.Contains(dot, "fillcolor=lightyellow") {
		t.Error("type nodes should be styled")
	}
	if !strings.Contains(dot, "shape=ellipse") {
		t.Error("callable nodes should be ellipses")
	}
	// Eager members are omitted by default.
	if strings.Contains(dot, "version") {
		t.Error("eager members should be hidden without ShowEager")
	}
}

func TestToDOTShowEager(t *testing.T) {
	dot := ToDOT(testGraph(), Options{ShowEager: true})

	if !strings.Contains(dot, `"n0_e_version" [label="version"`) {
		t.Error("eager members should render as leaf nodes")
	}
	if !strings.Contains(dot, `"n0" -> "n0_e_version" [style=dashed]`) {
		t.Error("eager edges should be dashed")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testGraph(), Options{Detailed: true})

	if !strings.Contains(dot, "children: 2, eager: 1") {
		t.Error("detailed labels should include member counts")
	}
	if !strings.Contains(dot, "#0") {
		t.Error("detailed labels should include node IDs")
	}
}

func TestToDOTDefaultRootLabel(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})
	if !strings.Contains(dot, `"n0" [label="root"]`) {
		t.Error("an unnamed root should be labeled root")
	}
}

func TestToDOTDeterministic(t *testing.T) {
	a := ToDOT(testGraph(), Options{ShowEager: true})
	b := ToDOT(testGraph(), Options{ShowEager: true})
	if a != b {
		t.Error("rendering should be deterministic")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?>
<svg width="134pt" height="188pt" viewBox="0.00 0.00 134.00 188.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)

	out := string(normalizeViewBox(svg))
	if !strings.Contains(out, `viewBox="0 0 134.00 188.00"`) {
		t.Errorf("viewBox should be normalized to origin: %s", out)
	}
	if !strings.Contains(out, `width="134" height="188"`) {
		t.Errorf("pixel dimensions should replace point units: %s", out)
	}

	// SVGs without a viewBox pass through untouched.
	plain := []byte(`<svg></svg>`)
	if string(normalizeViewBox(plain)) != `<svg></svg>` {
		t.Error("missing viewBox should pass through")
	}
}

package resolve

import (
	"slices"
	"strings"
)

// PathTrie organizes a flat set of dotted paths by segment. Each node
// optionally marks the exact concrete path it represents, so a traversal
// can tell "this prefix leads somewhere" apart from "this is a loadable
// sub-hierarchy".
type PathTrie struct {
	root *trieNode
}

type trieNode struct {
	children map[string]*trieNode
	// path is the concrete loadable path this node represents, or "" for
	// purely intermediate segments.
	path string
}

func newTrieNode() *trieNode {
	return &trieNode{children: map[string]*trieNode{}}
}

// NewPathTrie compiles a set of dotted paths into a trie. Empty paths are
// ignored.
func NewPathTrie(paths []string) *PathTrie {
	t := &PathTrie{root: newTrieNode()}
	for _, p := range paths {
		t.Insert(p)
	}
	return t
}

// Insert adds one dotted path, marking its final segment as concrete.
func (t *PathTrie) Insert(path string) {
	if path == "" {
		return
	}
	n := t.root
	for _, seg := range strings.Split(path, ".") {
		child, ok := n.children[seg]
		if !ok {
			child = newTrieNode()
			n.children[seg] = child
		}
		n = child
	}
	n.path = path
}

// Len reports the number of concrete paths in the trie.
func (t *PathTrie) Len() int { return len(t.Paths()) }

// Paths returns all concrete paths, sorted.
func (t *PathTrie) Paths() []string {
	var out []string
	var walk func(n *trieNode)
	walk = func(n *trieNode) {
		if n.path != "" {
			out = append(out, n.path)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)
	slices.Sort(out)
	return out
}

// descend follows one segment from n, returning nil when the segment leaves
// the trie.
func (n *trieNode) descend(seg string) *trieNode {
	if n == nil {
		return nil
	}
	return n.children[seg]
}

package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

// wireNode is the serialized form of one node.
type wireNode struct {
	Kind     string            `json:"kind"`
	Children map[string]NodeID `json:"children"`
	Eager    []string          `json:"eager"`
}

type wireGraph struct {
	Root  NodeID              `json:"root"`
	Nodes map[string]wireNode `json:"nodes"`
}

// MarshalJSON encodes the graph canonically: node IDs ascend numerically,
// children and eager names sort lexicographically. Decoding and re-encoding
// any graph produces byte-identical output.
func (g *Graph) MarshalJSON() ([]byte, error) {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var buf bytes.Buffer
	buf.WriteString(`{"root":`)
	buf.WriteString(strconv.Itoa(int(g.Root)))
	buf.WriteString(`,"nodes":{`)
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"%d":`, id)
		if err := writeNode(&buf, g.Nodes[id]); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *Node) error {
	fmt.Fprintf(buf, `{"kind":%q,"children":{`, n.Kind.String())

	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	slices.Sort(names)
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(int(n.Children[name])))
	}

	buf.WriteString(`},"eager":[`)
	eager := make([]string, 0, len(n.Eager))
	for name := range n.Eager {
		eager = append(eager, name)
	}
	slices.Sort(eager)
	for i, name := range eager {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(val)
	}
	buf.WriteString("]}")
	return nil
}

// UnmarshalJSON decodes a summary document and validates it.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	nodes := make(map[NodeID]*Node, len(w.Nodes))
	for key, wn := range w.Nodes {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: node key %q is not an integer", ErrInvalidDocument, key)
		}
		kind, ok := kindFromCode(wn.Kind)
		if !ok {
			return fmt.Errorf("%w: node %s has unknown kind %q", ErrInvalidDocument, key, wn.Kind)
		}
		n := newNode(kind)
		for name, child := range wn.Children {
			n.Children[name] = child
		}
		for _, name := range wn.Eager {
			n.Eager[name] = true
		}
		nodes[NodeID(id)] = n
	}

	decoded := Graph{Root: w.Root, Nodes: nodes}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*g = decoded
	return nil
}

// Decode parses a summary document from bytes.
func Decode(data []byte) (*Graph, error) {
	var g Graph
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &g, nil
}

// WriteJSON encodes g canonically and writes it to w with a trailing newline.
func WriteJSON(g *Graph, w io.Writer) error {
	data, err := g.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ReadJSON decodes a summary document from r.
func ReadJSON(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// ExportJSON writes a summary document to a file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ImportJSON reads a summary document from the file at path.
func ImportJSON(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

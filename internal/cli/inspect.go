package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/manifest"
	"github.com/matzehuels/depshim/pkg/summary"
)

// inspectCommand creates the inspect command, which explores the members
// recorded in a bundle's summary.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		storeDir string
		path     string
	)

	cmd := &cobra.Command{
		Use:   "inspect <name-or-file>",
		Short: "Explore the members recorded in a bundle's summary",
		Long: `Inspect lists the members a shim would expose for a bundle, exactly as
recorded in its summary document. The argument is a stored bundle name or a
bundle file path.

Examples:
  depshim inspect demo-vision
  depshim inspect vision.bundle.json --path models.resnet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBundle(cmd.Context(), storeDir, args[0])
			if err != nil {
				return err
			}
			return inspectBundle(b, path)
		},
	}

	cmd.Flags().StringVar(&storeDir, "store-dir", "", "bundle store directory")
	cmd.Flags().StringVar(&path, "path", "", "dotted member path to inspect instead of the root")
	return cmd
}

// loadBundle reads a bundle from a file when the argument names one, and
// from the store otherwise.
func loadBundle(ctx context.Context, storeDir, arg string) (*bundle.Bundle, error) {
	if _, err := os.Stat(arg); err == nil {
		return bundle.ReadFile(arg)
	}
	store, err := newStore(storeDir)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, manifest.NormalizeName(arg))
}

func inspectBundle(b *bundle.Bundle, path string) error {
	g, err := b.Graph()
	if err != nil {
		return err
	}

	id := g.Root
	label := b.Module
	if path != "" {
		id, err = walkPath(g, path)
		if err != nil {
			return err
		}
		label = b.Module + "." + path
	}

	node, err := g.Node(id)
	if err != nil {
		return err
	}

	printKeyValue("path", label)
	printKeyValue("kind", node.Kind.String())
	printNewline()

	for _, name := range node.ChildNames() {
		child, err := g.Node(node.Children[name])
		if err != nil {
			return err
		}
		printKeyValue(name, child.Kind.String())
	}
	for _, name := range node.EagerNames() {
		printKeyValue(name, StyleDim.Render("eager"))
	}
	if len(node.Children)+len(node.Eager) == 0 {
		printDetail("no recorded members")
	}
	return nil
}

// walkPath follows a dotted member path through the graph's children.
func walkPath(g *summary.Graph, path string) (summary.NodeID, error) {
	id := g.Root
	for _, seg := range strings.Split(path, ".") {
		node, err := g.Node(id)
		if err != nil {
			return 0, err
		}
		next, ok := node.Children[seg]
		if !ok {
			if node.Eager[seg] {
				return 0, fmt.Errorf("member %q is eager; the summary records only its name", seg)
			}
			return 0, fmt.Errorf("no member %q under this path", seg)
		}
		id = next
	}
	return id, nil
}

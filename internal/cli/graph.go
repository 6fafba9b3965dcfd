package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depshim/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	storeDir  string
	format    string // dot or svg
	output    string
	showEager bool
	detailed  bool
}

// graphCommand creates the graph command, which renders a bundle's summary
// graph as DOT or SVG.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "graph <name-or-file>",
		Short: "Render a bundle's summary graph as DOT or SVG",
		Long: `Graph renders the summary document of a bundle as a Graphviz diagram.
Shared nodes appear once with several inbound edges, so deduplication and
cycles stay visible.

Examples:
  depshim graph demo-vision
  depshim graph demo-vision --format svg -o vision.svg
  depshim graph vision.bundle.json --show-eager --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "bundle store directory")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout for dot if empty)")
	cmd.Flags().BoolVar(&opts.showEager, "show-eager", false, "include eager members as leaves")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node IDs and member counts")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, arg string, opts graphOpts) error {
	b, err := loadBundle(cmd.Context(), opts.storeDir, arg)
	if err != nil {
		return err
	}
	g, err := b.Graph()
	if err != nil {
		return err
	}

	dot := render.ToDOT(g, render.Options{
		RootLabel: b.Module,
		ShowEager: opts.showEager,
		Detailed:  opts.detailed,
	})

	switch strings.ToLower(opts.format) {
	case "dot":
		if opts.output == "" {
			fmt.Print(dot)
			return nil
		}
		if err := os.WriteFile(opts.output, []byte(dot), 0644); err != nil {
			return err
		}
	case "svg":
		out := opts.output
		if out == "" {
			out = b.Name + ".svg"
		}
		svg, err := render.RenderSVG(dot)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, svg, 0644); err != nil {
			return err
		}
		opts.output = out
	default:
		return fmt.Errorf("invalid format: %q (must be dot or svg)", opts.format)
	}

	printSuccess("Rendered %s", b.Name)
	printFile(opts.output)
	return nil
}

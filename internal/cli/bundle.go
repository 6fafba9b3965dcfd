package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/manifest"
	"github.com/matzehuels/depshim/pkg/pipeline"
)

// bundleCommand creates the bundle management command.
func (c *CLI) bundleCommand() *cobra.Command {
	var storeDir string

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Manage stored bundles",
	}
	cmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "bundle store directory")

	cmd.AddCommand(c.bundleBuildCommand(&storeDir))
	cmd.AddCommand(c.bundleListCommand(&storeDir))
	cmd.AddCommand(c.bundleShowCommand(&storeDir))
	cmd.AddCommand(c.bundleExportCommand(&storeDir))
	cmd.AddCommand(c.bundleDeleteCommand(&storeDir))

	return cmd
}

// bundleBuildOpts holds the command-line flags for "bundle build".
type bundleBuildOpts struct {
	manifestPath   string
	includePrivate bool
	maxDepth       int
	refresh        bool
	noCache        bool
}

// bundleBuildCommand creates the "bundle build" subcommand, which scans
// every module of a manifest extra into the store.
func (c *CLI) bundleBuildCommand(storeDir *string) *cobra.Command {
	opts := bundleBuildOpts{}

	cmd := &cobra.Command{
		Use:   "build <extra>",
		Short: "Scan every module of a manifest extra into the store",
		Long: `Build resolves each package listed under a manifest extra to its
module, scans the module hierarchy, and persists the resulting bundle.

Modules that fail to scan are reported and skipped; the command fails only
when no module of the extra could be bundled.

Examples:
  depshim bundle build vision
  depshim bundle build all --manifest depshim.toml --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBundleBuild(cmd, args[0], *storeDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.manifestPath, "manifest", "depshim.toml", "manifest listing extras and modules")
	cmd.Flags().BoolVar(&opts.includePrivate, "include-private", false, "include private members")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "traversal depth bound (negative for unbounded)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the summary cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runBundleBuild(cmd *cobra.Command, extra, storeDir string, opts bundleBuildOpts) error {
	ctx := cmd.Context()

	m, err := manifest.Load(opts.manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	pkgs, err := m.ExtraPackages(extra)
	if err != nil {
		return err
	}

	store, err := newStore(storeDir)
	if err != nil {
		return fmt.Errorf("open bundle store: %w", err)
	}
	runner, err := c.newRunner(opts.noCache, store)
	if err != nil {
		return err
	}
	defer runner.Close()

	printInfo("Building extra %s (%d packages)", extra, len(pkgs))

	var failed []string
	for _, pkg := range pkgs {
		module := m.ModuleFor(pkg)
		pipeOpts := pipeline.Options{
			Module:         module,
			Package:        manifest.NormalizeName(pkg),
			Extra:          extra,
			InstallHint:    m.InstallHint(pkg, extra),
			IncludePrivate: opts.includePrivate,
			MaxDepth:       opts.maxDepth,
			Refresh:        opts.refresh,
			Logger:         c.Logger,
		}

		spin := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", module))
		spin.Start()
		result, err := runner.Execute(ctx, pipeOpts)
		if err != nil {
			spin.StopWithError(fmt.Sprintf("Scan of %s failed", module))
			printDetail("%v", err)
			failed = append(failed, module)
			continue
		}
		spin.StopWithSuccess(fmt.Sprintf("Scanned %s", module))
		printStats(result.Stats.NodeCount, result.Stats.EagerCount, result.CacheInfo.SummaryHit)
		printDetail("Stored as %s (build %s)", result.Bundle.Name, result.Bundle.BuildID)
	}

	if len(failed) == len(pkgs) {
		return fmt.Errorf("no module of extra %q could be bundled", extra)
	}
	if len(failed) > 0 {
		printWarning("%d of %d modules failed: %s", len(failed), len(pkgs), strings.Join(failed, ", "))
	} else {
		printSuccess("Bundled extra %s", extra)
	}
	printNextStep("List stored bundles", "depshim bundle list")
	return nil
}

// bundleListCommand creates the "bundle list" subcommand.
func (c *CLI) bundleListCommand(storeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(*storeDir)
			if err != nil {
				return err
			}
			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No bundles stored")
				printDetail("Directory: %s", store.Path())
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

// bundleShowCommand creates the "bundle show" subcommand.
func (c *CLI) bundleShowCommand(storeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored bundle's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(*storeDir)
			if err != nil {
				return err
			}
			b, err := store.Get(cmd.Context(), manifest.NormalizeName(args[0]))
			if err != nil {
				return err
			}
			g, err := b.Graph()
			if err != nil {
				return err
			}

			printKeyValue("name", b.Name)
			printKeyValue("module", b.Module)
			if b.Extra != "" {
				printKeyValue("extra", b.Extra)
			}
			if b.InstallHint != "" {
				printKeyValue("install", b.InstallHint)
			}
			printKeyValue("build", b.BuildID)
			printKeyValue("created", b.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			printKeyValue("nodes", fmt.Sprintf("%d", g.Len()))
			printKeyValue("eager", fmt.Sprintf("%d", g.EagerCount()))
			if len(b.ExplicitPaths) > 0 {
				printKeyValue("explicit", fmt.Sprintf("%d paths", len(b.ExplicitPaths)))
				for _, p := range b.ExplicitPaths {
					printDetail("%s", p)
				}
			}
			return nil
		},
	}
}

// bundleExportCommand creates the "bundle export" subcommand.
func (c *CLI) bundleExportCommand(storeDir *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a stored bundle to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(*storeDir)
			if err != nil {
				return err
			}
			name := manifest.NormalizeName(args[0])
			b, err := store.Get(cmd.Context(), name)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = name + ".bundle.json"
			}
			if err := bundle.WriteFile(path, b); err != nil {
				return err
			}
			printSuccess("Exported %s", name)
			printFile(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <name>.bundle.json)")
	return cmd
}

// bundleDeleteCommand creates the "bundle delete" subcommand.
func (c *CLI) bundleDeleteCommand(storeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(*storeDir)
			if err != nil {
				return err
			}
			name := manifest.NormalizeName(args[0])
			if err := store.Delete(cmd.Context(), name); err != nil {
				return err
			}
			printSuccess("Deleted %s", name)
			return nil
		},
	}
}

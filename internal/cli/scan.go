package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/manifest"
	"github.com/matzehuels/depshim/pkg/pipeline"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	pkg            string // installable package name (defaults to module)
	extra          string // extras group the package belongs to
	installHint    string // explicit install instruction
	manifestPath   string // depshim.toml to derive package metadata from
	includePrivate bool   // include members carrying the privacy marker
	maxDepth       int    // traversal depth bound (0 = default, <0 = unbounded)
	refresh        bool   // bypass the summary cache
	noCache        bool   // disable caching entirely
	storeDir       string // bundle store directory override
	noStore        bool   // skip persisting the bundle
	output         string // additionally write the bundle to this file
}

// scanCommand creates the scan command, which summarizes a module hierarchy
// and assembles its bundle.
func (c *CLI) scanCommand() *cobra.Command {
	opts := scanOpts{}

	cmd := &cobra.Command{
		Use:   "scan <module>",
		Short: "Summarize a module hierarchy and assemble its bundle",
		Long: `Scan resolves a module through the provider registry, walks its
hierarchy into a canonical summary document, and assembles the bundle a
consumer needs to reconstruct a shim for it.

The module must be loadable in this binary; scanning happens where the real
dependency is present, consumption where it may not be.

Examples:
  depshim scan vision
  depshim scan vision --package demo-vision --extra vision
  depshim scan vision --manifest depshim.toml -o vision.bundle.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScan(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.pkg, "package", "", "installable package name (defaults to module)")
	cmd.Flags().StringVar(&opts.extra, "extra", "", "extras group the package belongs to")
	cmd.Flags().StringVar(&opts.installHint, "install-hint", "", "install instruction surfaced by shim errors")
	cmd.Flags().StringVar(&opts.manifestPath, "manifest", "", "derive package, extra, and hint from a depshim.toml")
	cmd.Flags().BoolVar(&opts.includePrivate, "include-private", false, "include private members")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "traversal depth bound (negative for unbounded)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the summary cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "bundle store directory")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not persist the bundle")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write the bundle to a file")

	return cmd
}

func (c *CLI) runScan(cmd *cobra.Command, module string, opts scanOpts) error {
	ctx := cmd.Context()

	pipeOpts := pipeline.Options{
		Module:         module,
		Package:        opts.pkg,
		Extra:          opts.extra,
		InstallHint:    opts.installHint,
		IncludePrivate: opts.includePrivate,
		MaxDepth:       opts.maxDepth,
		Refresh:        opts.refresh,
		Logger:         c.Logger,
	}
	if opts.manifestPath != "" {
		if err := applyManifest(&pipeOpts, opts.manifestPath); err != nil {
			return err
		}
	}

	var store bundle.Store
	if !opts.noStore {
		fs, err := newStore(opts.storeDir)
		if err != nil {
			return fmt.Errorf("open bundle store: %w", err)
		}
		store = fs
	}

	runner, err := c.newRunner(opts.noCache, store)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", module))
	spin.Start()
	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Scan of %s failed", module))
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("Scanned %s", module))

	printStats(result.Stats.NodeCount, result.Stats.EagerCount, result.CacheInfo.SummaryHit)
	if result.Stats.ExplicitCount > 0 {
		printDetail("%d explicit child paths recorded", result.Stats.ExplicitCount)
	}
	if store != nil {
		printDetail("Stored as %s (build %s)", result.Bundle.Name, result.Bundle.BuildID)
	}

	if opts.output != "" {
		if err := bundle.WriteFile(opts.output, result.Bundle); err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}
		printFile(opts.output)
	}

	printNextStep("Inspect the summary", fmt.Sprintf("depshim inspect %s", result.Bundle.Name))
	return nil
}

// applyManifest fills package metadata from a depshim.toml, keeping any
// values the user set explicitly.
func applyManifest(opts *pipeline.Options, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	if opts.Package == "" {
		opts.Package = findPackage(m, opts.Module)
	}
	if opts.Extra == "" {
		if extra, ok := m.ExtraFor(opts.Package); ok {
			opts.Extra = extra
		}
	}
	if opts.InstallHint == "" {
		opts.InstallHint = m.InstallHint(opts.Package, opts.Extra)
	}
	return nil
}

// findPackage locates the package providing a module, preferring explicit
// [modules] overrides before assuming the package is named like the module.
func findPackage(m *manifest.Manifest, module string) string {
	for pkg, mod := range m.Modules {
		if mod == module {
			return manifest.NormalizeName(pkg)
		}
	}
	return module
}

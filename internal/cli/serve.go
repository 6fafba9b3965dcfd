package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depshim/internal/server"
	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/cache"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	storeDir  string
	mongoURI  string
	mongoDB   string
	redisAddr string
	cacheSize int
}

// serveCommand creates the serve command, which exposes stored bundles over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", cacheSize: 256}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose stored bundles over HTTP",
		Long: `Serve starts the bundle API. By default it serves the file-based store
with an in-memory cache; pass --mongo-uri for a shared MongoDB store and
--redis-addr for a shared cache.

Endpoints:
  GET    /healthz
  GET    /v1/bundles
  GET    /v1/bundles/{name}
  GET    /v1/bundles/{name}/summary
  DELETE /v1/bundles/{name}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "bundle store directory")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string (overrides the file store)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database name")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address (overrides the in-memory cache)")
	cmd.Flags().IntVar(&opts.cacheSize, "cache-size", opts.cacheSize, "in-memory cache capacity")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()

	var store bundle.Store
	if opts.mongoURI != "" {
		ms, err := bundle.NewMongoStore(ctx, bundle.MongoConfig{
			URI:      opts.mongoURI,
			Database: opts.mongoDB,
		})
		if err != nil {
			return fmt.Errorf("open mongo store: %w", err)
		}
		store = ms
	} else {
		fs, err := newStore(opts.storeDir)
		if err != nil {
			return fmt.Errorf("open bundle store: %w", err)
		}
		store = fs
	}
	defer store.Close()

	var cc cache.Cache
	if opts.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, opts.redisAddr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cc = rc
	} else {
		mc, err := cache.NewMemoryCache(opts.cacheSize)
		if err != nil {
			return err
		}
		cc = mc
	}
	defer cc.Close()

	srv, err := server.New(server.Config{
		Addr:   opts.addr,
		Store:  store,
		Cache:  cc,
		Logger: c.Logger,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

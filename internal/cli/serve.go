package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/repolens/repolens/internal/server"
	"github.com/repolens/repolens/pkg/advisory"
	"github.com/repolens/repolens/pkg/cache"
	"github.com/repolens/repolens/pkg/engine"
	"github.com/repolens/repolens/pkg/store"
	"github.com/repolens/repolens/pkg/walker"
)

// Environment variables consulted by the serve command. A .env file in
// the working directory is loaded first when present.
const (
	envAddr      = "REPOLENS_ADDR"
	envMongoURI  = "REPOLENS_MONGO_URI"
	envMongoDB   = "REPOLENS_MONGO_DB"
	envRedisAddr = "REPOLENS_REDIS_ADDR"
	envCacheDir  = "REPOLENS_CACHE_DIR"
)

const defaultMongoDB = "repolens"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	maxDepth int
	noCache  bool
}

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{maxDepth: walker.DefaultMaxDepth}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan HTTP API",
		Long: `Serve exposes repository scans over HTTP. Scan results are persisted
in MongoDB when REPOLENS_MONGO_URI is set, otherwise in memory. Profiles
are cached in Redis when REPOLENS_REDIS_ADDR is set, otherwise on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080, or "+envAddr+")")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum directory depth to walk")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the scan result cache")

	return cmd
}

// runServe assembles the server from flags and environment and runs it
// until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	if err := godotenv.Load(); err == nil {
		c.Logger.Debug("loaded .env file")
	}

	addr := opts.addr
	if addr == "" {
		addr = os.Getenv(envAddr)
	}

	scanStore, err := c.serveStore(ctx)
	if err != nil {
		return err
	}
	defer scanStore.Close(context.Background())

	serveCache, err := c.serveCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer serveCache.Close()

	db := advisory.Default()
	srv := server.New(server.Config{
		Addr: addr,
		Engine: engine.New(
			engine.WithAdvisories(db),
			engine.WithWalkerOptions(walker.Options{MaxDepth: opts.maxDepth}),
			engine.WithLogger(c.Logger),
		),
		Store:           scanStore,
		Cache:           serveCache,
		Logger:          c.Logger,
		MaxDepth:        opts.maxDepth,
		AdvisoryVersion: db.Version,
	})

	return srv.Run(ctx)
}

// serveStore selects MongoDB when configured, in-memory otherwise.
func (c *CLI) serveStore(ctx context.Context) (store.Store, error) {
	uri := os.Getenv(envMongoURI)
	if uri == "" {
		c.Logger.Warn("no MongoDB configured, scans are stored in memory")
		return store.NewMemoryStore(), nil
	}

	database := os.Getenv(envMongoDB)
	if database == "" {
		database = defaultMongoDB
	}
	c.Logger.Info("using MongoDB store", "database", database)
	return store.NewMongoStore(ctx, uri, database)
}

// serveCache selects Redis when configured, a file cache otherwise.
func (c *CLI) serveCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(envRedisAddr); addr != "" {
		c.Logger.Info("using Redis cache", "addr", addr)
		return cache.NewRedisCache(ctx, addr)
	}
	if dir := os.Getenv(envCacheDir); dir != "" {
		return cache.NewFileCache(dir)
	}
	return newCache(false)
}

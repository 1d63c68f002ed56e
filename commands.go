package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/config"
	"github.com/SergeyParamoshkin/blog/internal/database"
	"github.com/SergeyParamoshkin/blog/internal/logging"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/server"
	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var flagFixtures string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and run the API and diag servers",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load(v, flagConfig)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log.Development)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync() // flushes buffer, if any
		sugar := logger.Sugar()

		exporter, err := metrics.Setup()
		if err != nil {
			return fmt.Errorf("failed to initialize prometheus exporter: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, database.Close(db)) }()

		store, closeStore, err := openCache(ctx, cfg, sugar)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, closeStore()) }()

		srv := server.New(cfg, db, store, sugar, metrics.New(global.Meter(ServiceName)))

		return srv.Run(ctx, server.DiagRouter(exporter))
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print markdown documentation for the API routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v, flagConfig)
		if err != nil {
			return err
		}

		srv := server.New(cfg, nil, cache.NewMemoryStore(), zap.NewNop().Sugar(), nil)
		_, err = fmt.Fprintln(cmd.OutOrStdout(), docgen.MarkdownRoutesDoc(srv.Router(), docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/blog",
			Intro:       "Routes of the blog REST API.",
		}))

		return err
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load(v, flagConfig)
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, database.Close(db)) }()

		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s.\n", cfg.Database.DSN)

		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixture users, articles and comments",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load(v, flagConfig)
		if err != nil {
			return err
		}

		fixtures, err := openFixtures(flagFixtures)
		if err != nil {
			return err
		}
		defer fixtures.Close()

		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, database.Close(db)) }()

		res, err := database.Seed(cmd.Context(), db, fixtures)
		if err != nil {
			return err
		}

		// Cached listings and stats predate the new rows.
		store, closeStore, err := openCache(cmd.Context(), cfg, zap.NewNop().Sugar())
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, closeStore()) }()
		cache.NewInvalidator(store).Invalidate(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d user(s), %d article(s), %d comment(s).\n", res.Users, res.Articles, res.Comments)

		return nil
	},
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		return nil, multierr.Append(err, database.Close(db))
	}

	return db, nil
}

func openFixtures(path string) (io.ReadCloser, error) {
	if path == "" {
		return database.DefaultFixtures()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixtures: %w", err)
	}

	return f, nil
}

// openCache builds the configured store and a matching close func.
func openCache(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (cache.Store, func() error, error) {
	if cfg.Cache.Driver != "redis" {
		logger.Infow("using in-process cache", "ttl", cfg.Cache.TTL)

		return cache.NewMemoryStore(), func() error { return nil }, nil
	}

	client, err := cache.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	logger.Infow("using redis cache", "addr", cfg.Redis.Addr, "ttl", cfg.Cache.TTL)

	return cache.NewRedisStore(client, ServiceName+":"), client.Close, nil
}

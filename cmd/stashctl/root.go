package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/stashkeeper-backend/internal/tracked"
	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
	"github.com/angelmondragon/stashkeeper-backend/pkg/migrate"
	"github.com/angelmondragon/stashkeeper-backend/pkg/redis"
)

// app holds lazily opened dependencies shared by subcommands.
type app struct {
	envFile string
	cfg     *config.Config
	logg    *logger.Logger
	db      *db.Client
	redis   *redis.Client
	cache   *cache.Cache
}

func newApp() *app {
	return &app{logg: logger.New(logger.Options{ServiceName: "stashctl", Output: os.Stderr})}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "stashctl",
		Short:         "Operator tooling for the stashkeeper backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading STASHKEEPER_* variables")

	root.AddCommand(newTokenCmd(a))
	root.AddCommand(newTrackedCmd(a))
	root.AddCommand(newCacheCmd(a))
	return root
}

func (a *app) loadConfig() error {
	if a.envFile != "" {
		// A missing file is fine; the environment may already be populated.
		_ = godotenv.Load(a.envFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logg = logger.New(logger.Options{
		ServiceName: "stashctl",
		Format:      cfg.App.LogFormat,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})
	return nil
}

// openStore connects the database and the configured cache backend.
func (a *app) openStore(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	client, err := db.New(ctx, a.cfg.DB, a.logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = client
	if err := migrate.MaybeRunDev(ctx, a.cfg, a.logg, client); err != nil {
		return err
	}

	if a.cfg.Cache.Backend == config.CacheBackendRedis {
		rc, err := redis.New(ctx, a.cfg.Redis, a.cfg.Cache.Namespace, a.logg)
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
		a.redis = rc
	}
	c, err := cache.NewFromConfig(a.cfg.Cache, a.redis, cache.Options{Logger: a.logg})
	if err != nil {
		return err
	}
	a.cache = c
	return nil
}

func (a *app) trackedService(ctx context.Context, owner auth.UserProvider) (tracked.Service, error) {
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	repo := tracked.NewRepository(a.db.DB())
	engine, err := tracked.NewEngine(repo, a.db, a.logg, nil)
	if err != nil {
		return nil, err
	}
	return tracked.NewService(repo, engine, a.db, a.cache, owner, a.logg)
}

func (a *app) close() error {
	var err error
	if a.redis != nil {
		err = multierr.Append(err, a.redis.Close())
		a.redis = nil
	}
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
		a.db = nil
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/stashkeeper-backend/api"
	"github.com/angelmondragon/stashkeeper-backend/api/routes"
	"github.com/angelmondragon/stashkeeper-backend/internal/items"
	"github.com/angelmondragon/stashkeeper-backend/internal/tracked"
	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/instance"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
	"github.com/angelmondragon/stashkeeper-backend/pkg/metrics"
	"github.com/angelmondragon/stashkeeper-backend/pkg/migrate"
	"github.com/angelmondragon/stashkeeper-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Instance:    instance.GetID(),
		Format:      cfg.App.LogFormat,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Cache.Backend == config.CacheBackendRedis {
		redisClient, err = redis.New(context.Background(), cfg.Redis, cfg.Cache.Namespace, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	readCache, err := cache.NewFromConfig(cfg.Cache, redisClient, cache.Options{
		Logger:  logg,
		Metrics: metrics.NewCacheMetrics(reg),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build cache", err)
		os.Exit(1)
	}

	users := auth.ContextUser{}

	itemService, err := items.NewService(items.NewRepository(dbClient.DB()), dbClient, readCache, users, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	trackedRepo := tracked.NewRepository(dbClient.DB())
	engine, err := tracked.NewEngine(trackedRepo, dbClient, logg, metrics.NewTransitionMetrics(reg))
	if err != nil {
		logg.Error(context.Background(), "failed to create transition engine", err)
		os.Exit(1)
	}
	trackedService, err := tracked.NewService(trackedRepo, engine, dbClient, readCache, users, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracked item service", err)
		os.Exit(1)
	}

	server := api.NewServer(cfg, os.Getenv("PORT"), routes.NewRouter(cfg, logg, routes.Deps{
		DB:       dbClient,
		Cache:    readCache,
		Gatherer: reg,
		Items:    itemService,
		Tracked:  trackedService,
	}))

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":   cfg.App.Env,
		"addr":  server.Addr,
		"cache": readCache.BackendName(),
	})
	logg.Info(ctx, "starting api server")

	stop, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-stop.Done():
		logg.Info(ctx, "shutting down api server")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	err = server.Shutdown(shutdownCtx)
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	err = multierr.Append(err, dbClient.Close())
	if err != nil {
		logg.Error(ctx, "error during shutdown", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopgraph/shopgraph-backend/config"
	httpapi "github.com/shopgraph/shopgraph-backend/internal/api/http"
	"github.com/shopgraph/shopgraph-backend/internal/bootstrap"
	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/repository"
	"github.com/shopgraph/shopgraph-backend/internal/graphstore"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/cache"
	cronjob "github.com/shopgraph/shopgraph-backend/internal/recommendation/cron"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/query"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/service"
	"github.com/shopgraph/shopgraph-backend/internal/storage/postgres"
)

const serviceName = "shopgraph-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("api stopped", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	graph, err := graphstore.New(&cfg.Graph, log)
	if err != nil {
		return err
	}
	defer graph.Close(context.WithoutCancel(ctx))
	if err := graph.WaitReady(ctx, cfg.Ready.MaxRetries, cfg.Ready.Delay); err != nil {
		return err
	}

	health := map[string]httpapi.Pinger{"neo4j": graph, "postgres": nil, "redis": nil}
	deps := bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Log:            log,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Health:         health,
	}

	// Load history is optional for serving queries.
	historyDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer historyDB.Close()
	if err := postgres.WaitReady(ctx, historyDB, 1, cfg.Ready.Delay, log); err != nil {
		log.Warn("postgres unreachable, /loads disabled", "error", err)
	} else {
		runs := repository.NewLoadRunRepository(historyDB)
		if err := runs.EnsureTable(ctx); err != nil {
			log.Warn("load history table unavailable", "error", err)
		} else {
			deps.Runs = runs
		}
		health["postgres"] = pingerFunc(historyDB.PingContext)
	}

	// Left as a nil interface when redis is not configured.
	var resultCache service.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		rc := cache.NewResultCache(rdb, cfg.Redis.CacheTTL)
		health["redis"] = rc
		resultCache = rc
	}

	svc := service.New(query.NewEngine(graph, log), resultCache, log)
	deps.Recommender = svc

	if resultCache != nil {
		scheduler := cronjob.NewScheduler(svc, cfg.Graph.QueryTimeout, log)
		if err := scheduler.Start(cfg.Redis.WarmSchedule); err != nil {
			log.Warn("cache warmer not started", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           bootstrap.BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

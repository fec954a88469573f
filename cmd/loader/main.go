package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/shopgraph/shopgraph-backend/config"
	"github.com/shopgraph/shopgraph-backend/internal/db"
	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/repository"
	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/service"
	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/source"
	"github.com/shopgraph/shopgraph-backend/internal/graphstore"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/cache"
	"github.com/shopgraph/shopgraph-backend/internal/storage/postgres"
)

func main() {
	printReport := flag.Bool("report", false, "print the load report as JSON on stdout")
	flag.Parse()

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, cfg, log)
	if res != nil && *printReport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
	}
	if err != nil {
		log.Fatal("graph load failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) (*service.PipelineResult, error) {
	srcDB, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	defer srcDB.Close()
	if err := srcDB.WaitReady(ctx, cfg.Ready.MaxRetries, cfg.Ready.Delay, log); err != nil {
		return nil, err
	}

	graph, err := graphstore.New(&cfg.Graph, log)
	if err != nil {
		return nil, err
	}
	defer graph.Close(context.WithoutCancel(ctx))
	if err := graph.WaitReady(ctx, cfg.Ready.MaxRetries, cfg.Ready.Delay); err != nil {
		return nil, err
	}

	pipeline := &service.Pipeline{
		Loader: service.NewLoader(source.NewPostgresSource(srcDB.Pool), graph, service.Config{
			GapPolicy: domain.GapPolicy(cfg.Loader.GapPolicy),
			EventMode: domain.EventMode(cfg.Loader.EventMode),
			FailFast:  cfg.Loader.FailFast,
			Workers:   cfg.Loader.Workers,
		}, log),
		SchemaFile: cfg.Graph.SchemaFile,
		Log:        log,
	}

	historyDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}
	defer historyDB.Close()
	runs := repository.NewLoadRunRepository(historyDB)
	if err := runs.EnsureTable(ctx); err != nil {
		log.Warn("load history disabled", "error", err)
	} else {
		pipeline.Runs = runs
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pipeline.Cache = cache.NewResultCache(rdb, cfg.Redis.CacheTTL)
	}

	res, err := pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLoadAborted) && res != nil {
			log.Error("load aborted", "run_id", res.Report.RunID, "reason", res.Report.Error)
		}
		return res, err
	}

	log.Info("graph load complete",
		"run_id", res.Report.RunID,
		"status", res.Report.Status,
		"schema_executed", res.Schema.Executed,
		"schema_failed", res.Schema.Failed,
		"gaps", res.Report.TotalGaps(),
		"failed", res.Report.TotalFailed(),
	)
	return res, nil
}

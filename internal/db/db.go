package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopgraph/shopgraph-backend/config"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	"github.com/shopgraph/shopgraph-backend/internal/platform/retry"
	"github.com/shopgraph/shopgraph-backend/internal/storage/postgres"
)

// DB is the pgx pool the loader reads source tables through.
type DB struct {
	Pool *pgxpool.Pool
}

// Open builds the pool without connecting; use WaitReady before reading.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	pcfg, err := pgxpool.ParseConfig(postgres.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	pcfg.MaxConns = int32(maxConns)
	pcfg.MinConns = 0
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// WaitReady pings the pool with bounded backoff.
func (d *DB) WaitReady(ctx context.Context, attempts int, delay time.Duration, log *logger.Logger) error {
	return retry.Poll(ctx, "postgres", attempts, delay, log, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return d.Pool.Ping(pingCtx)
	})
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

package service

import (
	"context"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
)

// RunRecorder persists load reports.
type RunRecorder interface {
	Save(ctx context.Context, report *domain.LoadReport) error
}

// CacheInvalidator drops cached query results that a fresh load makes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

// Pipeline is one full migration: schema setup, load, bookkeeping.
// Runs and Cache are optional.
type Pipeline struct {
	Loader     *Loader
	SchemaFile string
	Runs       RunRecorder
	Cache      CacheInvalidator
	Log        *logger.Logger
}

type PipelineResult struct {
	Schema SchemaResult       `json:"schema"`
	Report *domain.LoadReport `json:"report"`
}

func (p *Pipeline) Run(ctx context.Context) (*PipelineResult, error) {
	log := p.Log
	if log == nil {
		log = logger.Nop()
	}

	schema, err := p.Loader.SetupSchema(ctx, p.SchemaFile)
	if err != nil {
		return nil, err
	}

	report, loadErr := p.Loader.Load(ctx)

	if p.Runs != nil {
		if err := p.Runs.Save(context.WithoutCancel(ctx), report); err != nil {
			log.Error("failed to record load run", "run_id", report.RunID, "error", err)
		}
	}

	// Even an aborted load changed the graph.
	if p.Cache != nil {
		n, err := p.Cache.Invalidate(context.WithoutCancel(ctx))
		if err != nil {
			log.Warn("failed to invalidate query cache", "error", err)
		} else {
			log.Info("query cache invalidated", "keys", n)
		}
	}

	result := &PipelineResult{Schema: schema, Report: report}
	if loadErr != nil {
		return result, loadErr
	}
	return result, nil
}

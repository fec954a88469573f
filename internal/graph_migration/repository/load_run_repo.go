package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
)

// LoadRunRepository handles PostgreSQL operations for graph load reports
type LoadRunRepository struct {
	db *sql.DB
}

// NewLoadRunRepository creates a new LoadRunRepository
func NewLoadRunRepository(db *sql.DB) *LoadRunRepository {
	return &LoadRunRepository{db: db}
}

const createLoadRunsTable = `
	CREATE TABLE IF NOT EXISTS graph_load_runs (
		run_id      TEXT PRIMARY KEY,
		status      TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		entities    JSONB NOT NULL DEFAULT '{}',
		failures    JSONB NOT NULL DEFAULT '[]',
		error       TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureTable creates graph_load_runs if it does not exist yet
func (r *LoadRunRepository) EnsureTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLoadRunsTable); err != nil {
		return fmt.Errorf("failed to create graph_load_runs: %w", err)
	}
	return nil
}

// Save creates or updates the report keyed by run_id
func (r *LoadRunRepository) Save(ctx context.Context, report *domain.LoadReport) error {
	query := `
		INSERT INTO graph_load_runs (
			run_id, status, started_at, finished_at, entities, failures, error
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			status = EXCLUDED.status,
			finished_at = EXCLUDED.finished_at,
			entities = EXCLUDED.entities,
			failures = EXCLUDED.failures,
			error = EXCLUDED.error,
			updated_at = NOW()
	`

	entitiesJSON, err := json.Marshal(report.Entities)
	if err != nil {
		return fmt.Errorf("failed to marshal entity stats: %w", err)
	}

	failures := report.Failures
	if failures == nil {
		failures = []domain.RowFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("failed to marshal failures: %w", err)
	}

	var finishedAt sql.NullTime
	if !report.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: report.FinishedAt, Valid: true}
	}
	var errText sql.NullString
	if report.Error != "" {
		errText = sql.NullString{String: report.Error, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, query,
		report.RunID,
		string(report.Status),
		report.StartedAt,
		finishedAt,
		entitiesJSON,
		failuresJSON,
		errText,
	)
	if err != nil {
		return fmt.Errorf("failed to save load run: %w", err)
	}
	return nil
}

const selectLoadRun = `
	SELECT run_id, status, started_at, finished_at, entities, failures, error
	FROM graph_load_runs
`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.LoadReport, error) {
	var (
		report       domain.LoadReport
		status       string
		finishedAt   sql.NullTime
		entitiesJSON []byte
		failuresJSON []byte
		errText      sql.NullString
	)
	if err := row.Scan(
		&report.RunID,
		&status,
		&report.StartedAt,
		&finishedAt,
		&entitiesJSON,
		&failuresJSON,
		&errText,
	); err != nil {
		return nil, err
	}

	report.Status = domain.RunStatus(status)
	if finishedAt.Valid {
		report.FinishedAt = finishedAt.Time
	}
	if errText.Valid {
		report.Error = errText.String
	}

	report.Entities = make(map[domain.Entity]*domain.EntityStats)
	if len(entitiesJSON) > 0 {
		if err := json.Unmarshal(entitiesJSON, &report.Entities); err != nil {
			return nil, fmt.Errorf("decode entities of run %s: %w", report.RunID, err)
		}
	}
	report.Failures = []domain.RowFailure{}
	if len(failuresJSON) > 0 {
		if err := json.Unmarshal(failuresJSON, &report.Failures); err != nil {
			return nil, fmt.Errorf("decode failures of run %s: %w", report.RunID, err)
		}
	}
	return &report, nil
}

// GetByID retrieves a load report by run ID
func (r *LoadRunRepository) GetByID(ctx context.Context, runID string) (*domain.LoadReport, error) {
	report, err := scanRun(r.db.QueryRowContext(ctx, selectLoadRun+` WHERE run_id = $1`, runID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get load run: %w", err)
	}
	return report, nil
}

// ListRecent returns the latest reports, newest first
func (r *LoadRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.LoadReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, selectLoadRun+` ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list load runs: %w", err)
	}
	defer rows.Close()

	runs := []*domain.LoadReport{}
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load run: %w", err)
		}
		runs = append(runs, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list load runs: %w", err)
	}
	return runs, nil
}

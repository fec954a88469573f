package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/mapper"
	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/source"
	"github.com/shopgraph/shopgraph-backend/internal/graphstore"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
)

// Writer is the graph store seen by the loader: one statement per call,
// each call committed on its own.
type Writer interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]graphstore.Record, error)
}

type Config struct {
	GapPolicy domain.GapPolicy
	EventMode domain.EventMode
	// FailFast stops the load at the first failed row instead of recording
	// it and moving on.
	FailFast bool
	// Workers bounds concurrent writes within one entity type. Entity types
	// are always processed one after another.
	Workers int
}

type Loader struct {
	src   source.Source
	graph Writer
	cfg   Config
	log   *logger.Logger

	now   func() time.Time
	newID func() string
}

func NewLoader(src source.Source, graph Writer, cfg Config, log *logger.Logger) *Loader {
	if cfg.GapPolicy == "" {
		cfg.GapPolicy = domain.GapSkip
	}
	if cfg.EventMode == "" {
		cfg.EventMode = domain.EventAppend
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		src:   src,
		graph: graph,
		cfg:   cfg,
		log:   log.With("component", "GraphLoader"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load reads every source table and writes it to the graph in dependency
// order. The returned report is never nil; the error is non-nil only when
// the load stopped early.
func (l *Loader) Load(ctx context.Context) (*domain.LoadReport, error) {
	report := domain.NewLoadReport(l.newID(), l.now().UTC())
	log := l.log.With("run_id", report.RunID)
	log.Info("graph load started",
		"gap_policy", l.cfg.GapPolicy,
		"event_mode", l.cfg.EventMode,
		"workers", l.cfg.Workers,
	)

	for _, entity := range domain.LoadOrder {
		if err := l.loadEntity(ctx, log, report, entity); err != nil {
			report.Status = domain.RunAborted
			report.Error = err.Error()
			report.FinishedAt = l.now().UTC()
			log.Error("graph load aborted", "entity", entity, "error", err)
			return report, fmt.Errorf("%w: %s: %w", domain.ErrLoadAborted, entity, err)
		}
	}

	report.FinishedAt = l.now().UTC()
	report.Status = domain.RunCompleted
	if report.TotalGaps() > 0 || report.TotalFailed() > 0 {
		report.Status = domain.RunCompletedWithIssues
	}

	log.Info("graph load finished",
		"status", report.Status,
		"gaps", report.TotalGaps(),
		"failed", report.TotalFailed(),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

func (l *Loader) loadEntity(ctx context.Context, log *logger.Logger, report *domain.LoadReport, entity domain.Entity) error {
	stmts, malformed, read, err := l.prepare(ctx, entity)
	if err != nil {
		return err
	}

	stats := report.Entities[entity]
	stats.Read = read
	log.Info("extracted rows", "entity", entity, "rows", read)

	for _, f := range malformed {
		stats.Failed++
		report.Failures = append(report.Failures, f)
		log.Warn("row rejected", "entity", f.Entity, "source_id", f.SourceID, "reason", f.Reason)
	}
	if len(malformed) > 0 && l.cfg.FailFast {
		return fmt.Errorf("%w: %s %s", domain.ErrMalformedValue, entity, malformed[0].SourceID)
	}

	var mu sync.Mutex
	record := func(f domain.RowFailure, gap bool) {
		mu.Lock()
		defer mu.Unlock()
		if gap {
			stats.Gaps++
		} else {
			stats.Failed++
		}
		report.Failures = append(report.Failures, f)
	}
	written := func() {
		mu.Lock()
		stats.Written++
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Workers)

	for _, st := range stmts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			records, err := l.graph.Run(gctx, st.Cypher, st.Params)
			if err != nil {
				if gctx.Err() != nil && ctx.Err() == nil {
					// another row aborted the group
					return nil
				}
				record(domain.RowFailure{
					Entity:   st.Entity,
					SourceID: st.SourceID,
					Kind:     domain.FailureWrite,
					Reason:   err.Error(),
				}, false)
				log.Warn("row write failed", "entity", st.Entity, "source_id", st.SourceID, "error", err)
				if l.cfg.FailFast || ctx.Err() != nil {
					return fmt.Errorf("write %s %s: %w", st.Entity, st.SourceID, err)
				}
				return nil
			}

			if linked(records) {
				written()
				return nil
			}

			record(domain.RowFailure{
				Entity:   st.Entity,
				SourceID: st.SourceID,
				Kind:     domain.FailureGap,
				Reason:   gapReason(st),
			}, true)
			log.Warn("relationship endpoint missing", "entity", st.Entity, "source_id", st.SourceID)
			if l.cfg.GapPolicy == domain.GapAbort {
				return fmt.Errorf("%w: %s %s", domain.ErrReferentialGap, st.Entity, st.SourceID)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("loaded rows", "entity", entity, "written", stats.Written, "gaps", stats.Gaps, "failed", stats.Failed)
	return nil
}

// prepare reads one table and maps every row to its statement. Rows that
// fail mapping come back as failures rather than errors.
func (l *Loader) prepare(ctx context.Context, entity domain.Entity) ([]mapper.Statement, []domain.RowFailure, int, error) {
	var (
		stmts     []mapper.Statement
		malformed []domain.RowFailure
	)
	add := func(id string, st mapper.Statement, err error) {
		if err != nil {
			malformed = append(malformed, domain.RowFailure{
				Entity:   entity,
				SourceID: id,
				Kind:     domain.FailureMalformed,
				Reason:   err.Error(),
			})
			return
		}
		stmts = append(stmts, st)
	}

	switch entity {
	case domain.EntityCategory:
		rows, err := l.src.Categories(ctx)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read categories: %w", err)
		}
		for _, r := range rows {
			st, err := mapper.Category(r)
			add(r.ID, st, err)
		}
		return stmts, malformed, len(rows), nil

	case domain.EntityProduct:
		rows, err := l.src.Products(ctx)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read products: %w", err)
		}
		for _, r := range rows {
			st, err := mapper.Product(r)
			add(r.ID, st, err)
		}
		return stmts, malformed, len(rows), nil

	case domain.EntityCustomer:
		rows, err := l.src.Customers(ctx)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read customers: %w", err)
		}
		for _, r := range rows {
			st, err := mapper.Customer(r)
			add(r.ID, st, err)
		}
		return stmts, malformed, len(rows), nil

	case domain.EntityOrder:
		rows, err := l.src.Orders(ctx)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read orders: %w", err)
		}
		for _, r := range rows {
			st, err := mapper.Order(r)
			add(r.ID, st, err)
		}
		return stmts, malformed, len(rows), nil

	case domain.EntityOrderItem:
		rows, err := l.src.OrderItems(ctx)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read order_items: %w", err)
		}
		for _, r := range rows {
			st, err := mapper.OrderItem(r)
			add(mapper.OrderItemID(r), st, err)
		}
		return stmts, malformed, len(rows), nil

	case domain.EntityEvent:
		rows, err := l.src.Events(ctx)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read events: %w", err)
		}
		for _, r := range rows {
			st, err := mapper.Event(r, l.cfg.EventMode)
			add(r.ID, st, err)
		}
		return stmts, malformed, len(rows), nil
	}

	return nil, nil, 0, fmt.Errorf("unknown entity %q", entity)
}

func linked(records []graphstore.Record) bool {
	return len(records) > 0 && records[0].Bool("linked")
}

func gapReason(st mapper.Statement) string {
	switch st.Entity {
	case domain.EntityProduct:
		return fmt.Sprintf("category %v not found; %s not created", st.Params["category_id"], st.Rel)
	case domain.EntityOrder:
		return fmt.Sprintf("customer %v not found; %s not created", st.Params["customer_id"], st.Rel)
	case domain.EntityOrderItem:
		return fmt.Sprintf("order %v or product %v not found; %s not created", st.Params["order_id"], st.Params["product_id"], st.Rel)
	case domain.EntityEvent:
		return fmt.Sprintf("customer %v or product %v not found; %s not created", st.Params["customer_id"], st.Params["product_id"], st.Rel)
	default:
		return "relationship endpoint not found"
	}
}

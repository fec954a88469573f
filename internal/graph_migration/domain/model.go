package domain

import "time"

// Source rows. IDs are carried over unchanged and stored as strings.

type CategoryRow struct {
	ID   string
	Name string
}

type ProductRow struct {
	ID         string
	Name       string
	CategoryID string
	Price      float64
	// PriceNull is set when the source column was NULL.
	PriceNull bool
}

type CustomerRow struct {
	ID       string
	Name     string
	JoinDate string
}

// OrderRow.TS holds whatever the source handed back for the timestamp
// column (time.Time, *time.Time or string); the mapper normalizes it.
type OrderRow struct {
	ID         string
	CustomerID string
	TS         any
}

type OrderItemRow struct {
	OrderID   string
	ProductID string
	Quantity  int64
	// QuantityNull is set when the source column was NULL.
	QuantityNull bool
}

type EventRow struct {
	ID         string
	CustomerID string
	ProductID  string
	EventType  string
	TS         any
}

// Entity identifies one source table / graph element family.
type Entity string

const (
	EntityCategory  Entity = "categories"
	EntityProduct   Entity = "products"
	EntityCustomer  Entity = "customers"
	EntityOrder     Entity = "orders"
	EntityOrderItem Entity = "order_items"
	EntityEvent     Entity = "events"
)

// LoadOrder is the only valid processing order: every relationship target
// exists before the relationship is written.
var LoadOrder = []Entity{
	EntityCategory,
	EntityProduct,
	EntityCustomer,
	EntityOrder,
	EntityOrderItem,
	EntityEvent,
}

type GapPolicy string

const (
	GapSkip  GapPolicy = "skip"
	GapAbort GapPolicy = "abort"
)

type EventMode string

const (
	EventAppend EventMode = "append"
	EventMerge  EventMode = "merge"
)

type RunStatus string

const (
	RunCompleted           RunStatus = "completed"
	RunCompletedWithIssues RunStatus = "completed_with_issues"
	RunAborted             RunStatus = "aborted"
)

// EntityStats counts rows per table. Written rows were applied in full;
// rows whose relationship step found no endpoint count as Gaps instead
// (their node upsert, if any, still happened).
type EntityStats struct {
	Read    int `json:"read"`
	Written int `json:"written"`
	Gaps    int `json:"gaps"`
	Failed  int `json:"failed"`
}

// RowFailure is one row that was not (fully) applied to the graph.
type RowFailure struct {
	Entity   Entity `json:"entity"`
	SourceID string `json:"source_id"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
}

const (
	FailureGap       = "referential_gap"
	FailureMalformed = "malformed_value"
	FailureWrite     = "write_failed"
)

type LoadReport struct {
	RunID      string                  `json:"run_id"`
	Status     RunStatus               `json:"status"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Entities   map[Entity]*EntityStats `json:"entities"`
	Failures   []RowFailure            `json:"failures"`
	Error      string                  `json:"error,omitempty"`
}

func NewLoadReport(runID string, startedAt time.Time) *LoadReport {
	r := &LoadReport{
		RunID:     runID,
		StartedAt: startedAt,
		Entities:  make(map[Entity]*EntityStats, len(LoadOrder)),
	}
	for _, e := range LoadOrder {
		r.Entities[e] = &EntityStats{}
	}
	return r
}

func (r *LoadReport) TotalGaps() int {
	n := 0
	for _, s := range r.Entities {
		n += s.Gaps
	}
	return n
}

func (r *LoadReport) TotalFailed() int {
	n := 0
	for _, s := range r.Entities {
		n += s.Failed
	}
	return n
}

package mapper

import (
	"fmt"
	"math"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
)

// Statement is one parameterized write for one source row.
type Statement struct {
	Entity   domain.Entity
	SourceID string
	// Rel is the relationship the statement links, empty for plain node upserts.
	Rel    string
	Cypher string
	Params map[string]any
}

func Category(row domain.CategoryRow) (Statement, error) {
	return Statement{
		Entity:   domain.EntityCategory,
		SourceID: row.ID,
		Cypher:   upsertCategory,
		Params: map[string]any{
			"id":   row.ID,
			"name": row.Name,
		},
	}, nil
}

func Product(row domain.ProductRow) (Statement, error) {
	if row.PriceNull {
		return Statement{}, fmt.Errorf("product %s: %w: price is null", row.ID, domain.ErrMalformedValue)
	}
	if math.IsNaN(row.Price) || math.IsInf(row.Price, 0) {
		return Statement{}, fmt.Errorf("product %s: %w: price %v", row.ID, domain.ErrMalformedValue, row.Price)
	}
	return Statement{
		Entity:   domain.EntityProduct,
		SourceID: row.ID,
		Rel:      "IN_CATEGORY",
		Cypher:   upsertProduct,
		Params: map[string]any{
			"id":          row.ID,
			"name":        row.Name,
			"price":       row.Price,
			"category_id": row.CategoryID,
		},
	}, nil
}

func Customer(row domain.CustomerRow) (Statement, error) {
	joinDate, err := NormalizeDate(row.JoinDate)
	if err != nil {
		return Statement{}, fmt.Errorf("customer %s: %w", row.ID, err)
	}
	return Statement{
		Entity:   domain.EntityCustomer,
		SourceID: row.ID,
		Cypher:   upsertCustomer,
		Params: map[string]any{
			"id":        row.ID,
			"name":      row.Name,
			"join_date": joinDate,
		},
	}, nil
}

func Order(row domain.OrderRow) (Statement, error) {
	ts, err := NormalizeTimestamp(row.TS)
	if err != nil {
		return Statement{}, fmt.Errorf("order %s: %w", row.ID, err)
	}
	return Statement{
		Entity:   domain.EntityOrder,
		SourceID: row.ID,
		Rel:      "PLACED",
		Cypher:   upsertOrder,
		Params: map[string]any{
			"id":          row.ID,
			"customer_id": row.CustomerID,
			"ts":          ts,
		},
	}, nil
}

// OrderItemID is the source identifier used for order items in reports.
func OrderItemID(row domain.OrderItemRow) string {
	return row.OrderID + "/" + row.ProductID
}

func OrderItem(row domain.OrderItemRow) (Statement, error) {
	if row.QuantityNull {
		return Statement{}, fmt.Errorf("order item %s: %w: quantity is null", OrderItemID(row), domain.ErrMalformedValue)
	}
	if row.Quantity < 0 {
		return Statement{}, fmt.Errorf("order item %s: %w: negative quantity %d", OrderItemID(row), domain.ErrMalformedValue, row.Quantity)
	}
	return Statement{
		Entity:   domain.EntityOrderItem,
		SourceID: OrderItemID(row),
		Rel:      "CONTAINS",
		Cypher:   upsertOrderItem,
		Params: map[string]any{
			"order_id":   row.OrderID,
			"product_id": row.ProductID,
			"quantity":   row.Quantity,
		},
	}, nil
}

func Event(row domain.EventRow, mode domain.EventMode) (Statement, error) {
	ts, err := NormalizeTimestamp(row.TS)
	if err != nil {
		return Statement{}, fmt.Errorf("event %s: %w", row.ID, err)
	}

	kind := domain.ParseEventKind(row.EventType)
	cypher := createEvent[kind]
	if mode == domain.EventMerge {
		cypher = mergeEvent[kind]
	}

	return Statement{
		Entity:   domain.EntityEvent,
		SourceID: row.ID,
		Rel:      kind.RelType(),
		Cypher:   cypher,
		Params: map[string]any{
			"customer_id": row.CustomerID,
			"product_id":  row.ProductID,
			"ts":          ts,
			"event_id":    row.ID,
		},
	}, nil
}

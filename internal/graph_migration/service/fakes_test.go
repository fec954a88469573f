package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
	"github.com/shopgraph/shopgraph-backend/internal/graphstore"
)

type fakeSource struct {
	categories []domain.CategoryRow
	products   []domain.ProductRow
	customers  []domain.CustomerRow
	orders     []domain.OrderRow
	items      []domain.OrderItemRow
	events     []domain.EventRow

	failOn domain.Entity
}

var errSourceDown = errors.New("source unavailable")

func (s *fakeSource) fail(e domain.Entity) error {
	if s.failOn == e {
		return errSourceDown
	}
	return nil
}

func (s *fakeSource) Categories(context.Context) ([]domain.CategoryRow, error) {
	return s.categories, s.fail(domain.EntityCategory)
}
func (s *fakeSource) Products(context.Context) ([]domain.ProductRow, error) {
	return s.products, s.fail(domain.EntityProduct)
}
func (s *fakeSource) Customers(context.Context) ([]domain.CustomerRow, error) {
	return s.customers, s.fail(domain.EntityCustomer)
}
func (s *fakeSource) Orders(context.Context) ([]domain.OrderRow, error) {
	return s.orders, s.fail(domain.EntityOrder)
}
func (s *fakeSource) OrderItems(context.Context) ([]domain.OrderItemRow, error) {
	return s.items, s.fail(domain.EntityOrderItem)
}
func (s *fakeSource) Events(context.Context) ([]domain.EventRow, error) {
	return s.events, s.fail(domain.EntityEvent)
}

type call struct {
	cypher string
	params map[string]any
}

// fakeGraph tracks node ids per label so relationship statements can report
// whether their endpoints exist, the way the real statements do.
type fakeGraph struct {
	mu     sync.Mutex
	calls  []call
	nodes  map[string]map[string]bool
	failOn func(cypher string, params map[string]any) error
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{nodes: map[string]map[string]bool{}}
}

func (g *fakeGraph) has(label string, id any) bool {
	s, _ := id.(string)
	return g.nodes[label][s]
}

func (g *fakeGraph) add(label string, id any) {
	if g.nodes[label] == nil {
		g.nodes[label] = map[string]bool{}
	}
	s, _ := id.(string)
	g.nodes[label][s] = true
}

func (g *fakeGraph) Run(ctx context.Context, cypher string, params map[string]any) ([]graphstore.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, call{cypher: cypher, params: params})
	if g.failOn != nil {
		if err := g.failOn(cypher, params); err != nil {
			return nil, err
		}
	}

	var linked bool
	switch {
	case strings.Contains(cypher, "MERGE (cat:Category"):
		g.add("Category", params["id"])
		linked = true
	case strings.Contains(cypher, "MERGE (p:Product"):
		g.add("Product", params["id"])
		linked = g.has("Category", params["category_id"])
	case strings.Contains(cypher, "MERGE (c:Customer"):
		g.add("Customer", params["id"])
		linked = true
	case strings.Contains(cypher, "MERGE (o:Order"):
		g.add("Order", params["id"])
		linked = g.has("Customer", params["customer_id"])
	case strings.Contains(cypher, ":CONTAINS"):
		linked = g.has("Order", params["order_id"]) && g.has("Product", params["product_id"])
	case strings.Contains(cypher, "$event_id"):
		linked = g.has("Customer", params["customer_id"]) && g.has("Product", params["product_id"])
	default:
		return nil, nil
	}
	return []graphstore.Record{{"linked": linked}}, nil
}

// entityOf classifies a recorded call back to its entity.
func entityOf(c call) domain.Entity {
	switch {
	case strings.Contains(c.cypher, "MERGE (cat:Category"):
		return domain.EntityCategory
	case strings.Contains(c.cypher, "MERGE (p:Product"):
		return domain.EntityProduct
	case strings.Contains(c.cypher, "MERGE (c:Customer"):
		return domain.EntityCustomer
	case strings.Contains(c.cypher, "MERGE (o:Order"):
		return domain.EntityOrder
	case strings.Contains(c.cypher, ":CONTAINS"):
		return domain.EntityOrderItem
	case strings.Contains(c.cypher, "$event_id"):
		return domain.EntityEvent
	}
	return ""
}

func shopFixture() *fakeSource {
	return &fakeSource{
		categories: []domain.CategoryRow{{ID: "C1", Name: "Kitchen"}, {ID: "C2", Name: "Garden"}},
		products: []domain.ProductRow{
			{ID: "P1", Name: "Mug", CategoryID: "C1", Price: 10},
			{ID: "P2", Name: "Plate", CategoryID: "C1", Price: 20},
			{ID: "P3", Name: "Hose", CategoryID: "C2", Price: 5},
		},
		customers: []domain.CustomerRow{
			{ID: "U1", Name: "Ada", JoinDate: "2023-01-01"},
			{ID: "U2", Name: "Bob", JoinDate: "2023-02-01"},
		},
		orders: []domain.OrderRow{
			{ID: "O1", CustomerID: "U1", TS: "2024-01-01T10:00:00Z"},
			{ID: "O2", CustomerID: "U2", TS: "2024-01-02T10:00:00Z"},
		},
		items: []domain.OrderItemRow{
			{OrderID: "O1", ProductID: "P1", Quantity: 1},
			{OrderID: "O1", ProductID: "P2", Quantity: 2},
			{OrderID: "O2", ProductID: "P1", Quantity: 1},
		},
		events: []domain.EventRow{
			{ID: "E1", CustomerID: "U1", ProductID: "P3", EventType: "view", TS: "2024-01-01T09:00:00Z"},
			{ID: "E2", CustomerID: "U1", ProductID: "P3", EventType: "click", TS: "2024-01-01T09:01:00Z"},
		},
	}
}

package source

import (
	"context"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
)

// Source is read-only, whole-table access to the relational store.
type Source interface {
	Categories(ctx context.Context) ([]domain.CategoryRow, error)
	Products(ctx context.Context) ([]domain.ProductRow, error)
	Customers(ctx context.Context) ([]domain.CustomerRow, error)
	Orders(ctx context.Context) ([]domain.OrderRow, error)
	OrderItems(ctx context.Context) ([]domain.OrderItemRow, error)
	Events(ctx context.Context) ([]domain.EventRow, error)
}

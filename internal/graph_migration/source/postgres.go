package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
)

// Identifiers are cast to text so integer and string keys end up as the same
// graph property type. Timestamps are scanned as-is and normalized later.
const (
	selectCategories = `SELECT id::text, name FROM categories ORDER BY id`
	selectProducts   = `SELECT id::text, name, category_id::text, price FROM products ORDER BY id`
	selectCustomers  = `SELECT id::text, name, join_date::text FROM customers ORDER BY id`
	selectOrders     = `SELECT id::text, customer_id::text, ts FROM orders ORDER BY id`
	selectOrderItems = `SELECT order_id::text, product_id::text, quantity FROM order_items ORDER BY order_id, product_id`
	selectEvents     = `SELECT id::text, customer_id::text, product_id::text, event_type, ts FROM events ORDER BY id`
)

// PostgresSource reads the shop tables through a pgx pool.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) Categories(ctx context.Context) ([]domain.CategoryRow, error) {
	rows, err := s.pool.Query(ctx, selectCategories)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CategoryRow, error) {
		var r domain.CategoryRow
		var name pgtype.Text
		err := row.Scan(&r.ID, &name)
		r.Name = name.String
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) Products(ctx context.Context) ([]domain.ProductRow, error) {
	rows, err := s.pool.Query(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProductRow, error) {
		var (
			r          domain.ProductRow
			name       pgtype.Text
			categoryID pgtype.Text
			price      pgtype.Numeric
		)
		if err := row.Scan(&r.ID, &name, &categoryID, &price); err != nil {
			return r, err
		}
		r.Name = name.String
		r.CategoryID = categoryID.String
		if !price.Valid {
			r.PriceNull = true
			return r, nil
		}
		f, err := price.Float64Value()
		if err != nil {
			return r, fmt.Errorf("product %s price: %w", r.ID, err)
		}
		r.Price = f.Float64
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) Customers(ctx context.Context) ([]domain.CustomerRow, error) {
	rows, err := s.pool.Query(ctx, selectCustomers)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CustomerRow, error) {
		var (
			r        domain.CustomerRow
			name     pgtype.Text
			joinDate pgtype.Text
		)
		err := row.Scan(&r.ID, &name, &joinDate)
		r.Name = name.String
		r.JoinDate = joinDate.String
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan customers: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) Orders(ctx context.Context) ([]domain.OrderRow, error) {
	rows, err := s.pool.Query(ctx, selectOrders)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderRow, error) {
		var (
			r          domain.OrderRow
			customerID pgtype.Text
		)
		err := row.Scan(&r.ID, &customerID, &r.TS)
		r.CustomerID = customerID.String
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) OrderItems(ctx context.Context) ([]domain.OrderItemRow, error) {
	rows, err := s.pool.Query(ctx, selectOrderItems)
	if err != nil {
		return nil, fmt.Errorf("query order_items: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderItemRow, error) {
		var (
			r        domain.OrderItemRow
			quantity pgtype.Int8
		)
		err := row.Scan(&r.OrderID, &r.ProductID, &quantity)
		r.Quantity = quantity.Int64
		r.QuantityNull = !quantity.Valid
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan order_items: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) Events(ctx context.Context) ([]domain.EventRow, error) {
	rows, err := s.pool.Query(ctx, selectEvents)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EventRow, error) {
		var (
			r          domain.EventRow
			customerID pgtype.Text
			productID  pgtype.Text
			eventType  pgtype.Text
		)
		err := row.Scan(&r.ID, &customerID, &productID, &eventType, &r.TS)
		r.CustomerID = customerID.String
		r.ProductID = productID.String
		r.EventType = eventType.String
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return out, nil
}

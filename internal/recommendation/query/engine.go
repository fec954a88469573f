package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopgraph/shopgraph-backend/internal/graphstore"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/domain"
)

// Reader is the read side of the graph store.
type Reader interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]graphstore.Record, error)
}

// Engine answers the fixed traversal patterns. It holds no state besides
// the store handle and is safe for concurrent use.
type Engine struct {
	graph Reader
	log   *logger.Logger
}

func NewEngine(graph Reader, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{graph: graph, log: log.With("component", "QueryEngine")}
}

// Popular ranks products by the number of orders containing them.
func (e *Engine) Popular(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	return e.rank(ctx, domain.StrategyPopular, popularCypher, map[string]any{}, limit)
}

// ContentBased ranks the other products of productID's category by order count.
func (e *Engine) ContentBased(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error) {
	return e.rank(ctx, domain.StrategyContent, contentCypher, map[string]any{"product_id": productID}, limit)
}

// CoPurchase ranks products by how many orders they share with productID.
func (e *Engine) CoPurchase(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error) {
	return e.rank(ctx, domain.StrategyCoPurchase, coPurchaseCypher, map[string]any{"product_id": productID}, limit)
}

// Collaborative finds the customers whose purchases overlap most with
// customerID's, keeps the top NeighborLimit of them, and ranks what they
// bought that customerID has not by the number of distinct neighbours.
func (e *Engine) Collaborative(ctx context.Context, customerID string, limit int) ([]domain.Recommendation, error) {
	params := map[string]any{
		"customer_id": customerID,
		"neighbors":   int64(domain.NeighborLimit),
	}
	return e.rank(ctx, domain.StrategyCollaborative, collaborativeCypher, params, limit)
}

// Journey returns nil without error when the customer does not exist.
func (e *Engine) Journey(ctx context.Context, customerID string) (*domain.Journey, error) {
	records, err := e.graph.Read(ctx, journeyCypher, map[string]any{"customer_id": customerID})
	if err != nil {
		return nil, fmt.Errorf("customer journey %s: %w", customerID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	r := records[0]
	return &domain.Journey{
		CustomerID:    customerID,
		CustomerName:  r.String("customer_name"),
		Views:         r.Int64("views"),
		Clicks:        r.Int64("clicks"),
		CartAdditions: r.Int64("cart_additions"),
		Purchases:     r.Int64("purchases"),
	}, nil
}

func (e *Engine) Stats(ctx context.Context) (*domain.Stats, error) {
	records, err := e.graph.Read(ctx, statsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("graph stats: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("graph stats: %w", domain.ErrNoResult)
	}
	r := records[0]
	return &domain.Stats{
		Customers:     r.Int64("customers"),
		Products:      r.Int64("products"),
		Orders:        r.Int64("orders"),
		Categories:    r.Int64("categories"),
		Relationships: r.Int64("relationships"),
	}, nil
}

func (e *Engine) ListCustomers(ctx context.Context) ([]domain.CustomerSummary, error) {
	records, err := e.graph.Read(ctx, listCustomersCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]domain.CustomerSummary, 0, len(records))
	for _, r := range records {
		out = append(out, domain.CustomerSummary{
			ID:       r.String("id"),
			Name:     r.String("name"),
			JoinDate: r.Date("join_date"),
		})
	}
	return out, nil
}

func (e *Engine) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	records, err := e.graph.Read(ctx, listProductsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]domain.ProductSummary, 0, len(records))
	for _, r := range records {
		out = append(out, domain.ProductSummary{
			ID:       r.String("id"),
			Name:     r.String("name"),
			Price:    r.Float64("price"),
			Category: r.String("category"),
		})
	}
	return out, nil
}

func (e *Engine) rank(ctx context.Context, strategy domain.Strategy, cypher string, params map[string]any, limit int) ([]domain.Recommendation, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%s: %w", strategy, domain.ErrInvalidLimit)
	}
	if limit == 0 {
		return []domain.Recommendation{}, nil
	}

	params["limit"] = int64(limit)
	records, err := e.graph.Read(ctx, cypher, params)
	if err != nil {
		e.log.Warn("recommendation query failed", "strategy", strategy, "error", err)
		return nil, fmt.Errorf("%s: %w", strategy, err)
	}

	recs := make([]domain.Recommendation, 0, len(records))
	for _, r := range records {
		recs = append(recs, domain.Recommendation{
			ProductID:   r.String("product_id"),
			ProductName: r.String("product_name"),
			Price:       r.Float64("price"),
			Score:       r.Int64("score"),
		})
	}

	SortRecommendations(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// SortRecommendations orders by score descending, then price ascending,
// then product id.
func SortRecommendations(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.ProductID < b.ProductID
	})
}

package service

import (
	"context"
	"errors"

	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/cache"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/domain"
)

// Queries is the set of graph patterns the service serves.
type Queries interface {
	Popular(ctx context.Context, limit int) ([]domain.Recommendation, error)
	ContentBased(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error)
	CoPurchase(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error)
	Collaborative(ctx context.Context, customerID string, limit int) ([]domain.Recommendation, error)
	Journey(ctx context.Context, customerID string) (*domain.Journey, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	ListCustomers(ctx context.Context) ([]domain.CustomerSummary, error)
	ListProducts(ctx context.Context) ([]domain.ProductSummary, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
}

// Service puts an optional read-through cache in front of the queries.
// Cache failures are logged and the query runs against the graph.
type Service struct {
	queries Queries
	cache   Cache
	log     *logger.Logger
}

// New builds the service. cache may be nil.
func New(queries Queries, c Cache, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{queries: queries, cache: c, log: log.With("component", "RecommendationService")}
}

func (s *Service) Popular(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	return readThrough(ctx, s, cache.Key(string(domain.StrategyPopular), "", limit), func() ([]domain.Recommendation, error) {
		return s.queries.Popular(ctx, limit)
	})
}

func (s *Service) ContentBased(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error) {
	return readThrough(ctx, s, cache.Key(string(domain.StrategyContent), productID, limit), func() ([]domain.Recommendation, error) {
		return s.queries.ContentBased(ctx, productID, limit)
	})
}

func (s *Service) CoPurchase(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error) {
	return readThrough(ctx, s, cache.Key(string(domain.StrategyCoPurchase), productID, limit), func() ([]domain.Recommendation, error) {
		return s.queries.CoPurchase(ctx, productID, limit)
	})
}

func (s *Service) Collaborative(ctx context.Context, customerID string, limit int) ([]domain.Recommendation, error) {
	return readThrough(ctx, s, cache.Key(string(domain.StrategyCollaborative), customerID, limit), func() ([]domain.Recommendation, error) {
		return s.queries.Collaborative(ctx, customerID, limit)
	})
}

// Journey returns domain.ErrCustomerNotFound for an unknown customer.
func (s *Service) Journey(ctx context.Context, customerID string) (*domain.Journey, error) {
	j, err := readThrough(ctx, s, cache.Key("journey", customerID, 0), func() (*domain.Journey, error) {
		return s.queries.Journey(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return j, nil
}

func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	return readThrough(ctx, s, cache.Key("stats", "", 0), func() (*domain.Stats, error) {
		return s.queries.Stats(ctx)
	})
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.CustomerSummary, error) {
	return readThrough(ctx, s, cache.Key("customers", "", 0), func() ([]domain.CustomerSummary, error) {
		return s.queries.ListCustomers(ctx)
	})
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	return readThrough(ctx, s, cache.Key("products", "", 0), func() ([]domain.ProductSummary, error) {
		return s.queries.ListProducts(ctx)
	})
}

// Warm primes the cache with the queries that take no caller input.
func (s *Service) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if _, err := s.refresh(ctx, cache.Key(string(domain.StrategyPopular), "", domain.DefaultLimit), func() (any, error) {
		return s.queries.Popular(ctx, domain.DefaultLimit)
	}); err != nil {
		return err
	}
	if _, err := s.refresh(ctx, cache.Key("stats", "", 0), func() (any, error) {
		return s.queries.Stats(ctx)
	}); err != nil {
		return err
	}
	s.log.Debug("query cache warmed")
	return nil
}

func (s *Service) refresh(ctx context.Context, key string, load func() (any, error)) (any, error) {
	v, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

func readThrough[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	if s.cache == nil {
		return load()
	}

	var cached T
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("cache read failed", "key", key, "error", err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

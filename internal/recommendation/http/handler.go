package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	loaddomain "github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
	"github.com/shopgraph/shopgraph-backend/internal/graphstore"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	"github.com/shopgraph/shopgraph-backend/internal/recommendation/domain"
)

// Recommender is what the handlers read from.
type Recommender interface {
	Popular(ctx context.Context, limit int) ([]domain.Recommendation, error)
	ContentBased(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error)
	CoPurchase(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error)
	Collaborative(ctx context.Context, customerID string, limit int) ([]domain.Recommendation, error)
	Journey(ctx context.Context, customerID string) (*domain.Journey, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	ListCustomers(ctx context.Context) ([]domain.CustomerSummary, error)
	ListProducts(ctx context.Context) ([]domain.ProductSummary, error)
}

// RunReader exposes recorded graph loads.
type RunReader interface {
	GetByID(ctx context.Context, runID string) (*loaddomain.LoadReport, error)
	ListRecent(ctx context.Context, limit int) ([]*loaddomain.LoadReport, error)
}

type Handler struct {
	svc  Recommender
	runs RunReader
	log  *logger.Logger
}

// New builds the handler. runs may be nil, in which case the load history
// routes answer 503.
func New(svc Recommender, runs RunReader, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{svc: svc, runs: runs, log: log}
}

// retryAfterSeconds is sent with 503 responses caused by graph timeouts.
const retryAfterSeconds = "2"

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.svc.ListCustomers(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list customers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) Popular(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	recs, err := h.svc.Popular(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "failed to compute recommendations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"strategy":        domain.StrategyPopular,
		"recommendations": render(domain.StrategyPopular, recs),
	})
}

func (h *Handler) ContentBased(c *gin.Context) {
	h.forProduct(c, domain.StrategyContent, h.svc.ContentBased)
}

func (h *Handler) CoPurchase(c *gin.Context) {
	h.forProduct(c, domain.StrategyCoPurchase, h.svc.CoPurchase)
}

func (h *Handler) Collaborative(c *gin.Context) {
	customerID := c.Param("customer_id")
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	recs, err := h.svc.Collaborative(c.Request.Context(), customerID, limit)
	if err != nil {
		h.fail(c, "failed to compute recommendations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customer_id":     customerID,
		"strategy":        domain.StrategyCollaborative,
		"recommendations": render(domain.StrategyCollaborative, recs),
	})
}

func (h *Handler) CustomerJourney(c *gin.Context) {
	customerID := c.Param("customer_id")
	journey, err := h.svc.Journey(c.Request.Context(), customerID)
	if err != nil {
		h.fail(c, "failed to compute customer journey", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_id": customerID, "journey": journey})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to compute stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) ListLoads(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "load history unavailable"})
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "failed to list load runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handler) GetLoad(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "load history unavailable"})
		return
	}
	run, err := h.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get load run", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

type productQuery func(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error)

func (h *Handler) forProduct(c *gin.Context, strategy domain.Strategy, query productQuery) {
	productID := c.Param("product_id")
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	recs, err := query(c.Request.Context(), productID, limit)
	if err != nil {
		h.fail(c, "failed to compute recommendations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id":      productID,
		"strategy":        strategy,
		"recommendations": render(strategy, recs),
	})
}

// render names each score after what the strategy counted.
func render(strategy domain.Strategy, recs []domain.Recommendation) []gin.H {
	field := strategy.ScoreField()
	out := make([]gin.H, 0, len(recs))
	for _, r := range recs {
		out = append(out, gin.H{
			"product_id":   r.ProductID,
			"product_name": r.ProductName,
			"price":        r.Price,
			field:          r.Score,
		})
	}
	return out
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return domain.DefaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return n, true
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
	case errors.Is(err, loaddomain.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "load run not found"})
	case graphstore.IsRetryable(err):
		h.log.Warn(msg, "path", c.FullPath(), "error", err)
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "graph store unavailable, retry later"})
	default:
		h.log.Error(msg, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/posmatch/backend/internal/domain"
	"github.com/posmatch/backend/internal/logger"
	"github.com/posmatch/backend/internal/usecase"
)

const (
	defaultSearchLimit = 3
	maxSearchLimit     = 50
)

// Recommender resolves raw query text into recommendations
type Recommender interface {
	Resolve(ctx context.Context, raw string) (*domain.RecommendationResult, error)
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
	catalog     domain.ProductCatalog
	matcher     *usecase.LocalMatcher
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil recommender leaves the
// recommendation endpoint answering 503.
func NewHandler(recommender Recommender, catalog domain.ProductCatalog, log *zap.Logger) *Handler {
	return &Handler{
		recommender: recommender,
		catalog:     catalog,
		matcher:     usecase.NewLocalMatcher(catalog),
		logger:      logger.Component(log, "http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "posmatch-backend",
		"version": "1.0.0",
	})
}

// Recommend resolves a free-text query into product recommendations
func (h *Handler) Recommend(c *gin.Context) {
	if h.recommender == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "recommendations are not configured"})
		return
	}

	var req domain.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	result, err := h.recommender.Resolve(c.Request.Context(), *req.Query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListProducts returns the catalog, or local matches when ?q= is given
func (h *Handler) ListProducts(c *gin.Context) {
	query, hasQuery := c.GetQuery("q")
	if !hasQuery {
		products := h.catalog.All()
		c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSearchLimit {
			h.respondError(c, domain.ErrInvalidRequest)
			return
		}
		limit = n
	}

	normalized := usecase.NormalizeQuery(query)
	products := h.matcher.Search(normalized, limit)
	if products == nil {
		products = []domain.Product{}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    normalized,
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns a single product by identifier
func (h *Handler) GetProduct(c *gin.Context) {
	product, ok := h.catalog.FindByIdentifier(c.Param("id"))
	if !ok {
		h.respondError(c, domain.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Projection returns the catalog subset sent to the remote recommender
func (h *Handler) Projection(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Projection())
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

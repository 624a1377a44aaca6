package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const requestIDHeader = "X-Request-ID"

type HTTPHandler struct {
	catalog *service.CatalogService
	sales   *service.SalesService
	logger  *slog.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type ListItemsResponse struct {
	Items []domain.Item `json:"items"`
	Count int           `json:"count"`
}

func NewHTTPHandler(catalog *service.CatalogService, sales *service.SalesService, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{catalog: catalog, sales: sales, logger: logger}
}

// Router wires the read-only storefront API.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(h.requestLogger(), gin.Recovery())

	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/items", h.ListItems)
		api.GET("/items/:id", h.GetItem)
		api.GET("/creators/:id/sales", h.CreatorSales)
		api.GET("/orders/stats", h.OrderStatistics)
	}
	return r
}

func (h *HTTPHandler) ListItems(c *gin.Context) {
	filter, err := domain.ParseItemFilter(c.Request.URL.Query())
	if err != nil {
		h.writeError(c, err)
		return
	}

	items, err := h.catalog.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListItemsResponse{Items: items, Count: len(items)})
}

func (h *HTTPHandler) GetItem(c *gin.Context) {
	detail, err := h.catalog.ItemDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *HTTPHandler) CreatorSales(c *gin.Context) {
	summary, err := h.sales.CreatorSalesSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *HTTPHandler) OrderStatistics(c *gin.Context) {
	scope, err := domain.ParseOrderScope(c.Request.URL.Query())
	if err != nil {
		h.writeError(c, err)
		return
	}

	stats, err := h.sales.OrderStatistics(c.Request.Context(), scope)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the error taxonomy onto HTTP: field-level detail for bad
// filters, a generic message for anything infrastructural.
func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var fe *domain.FilterError
	switch {
	case errors.As(err, &fe):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: fe.Error(), Field: fe.Field})
	case errors.Is(err, domain.ErrInvalidFilter):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid filter"})
	case errors.Is(err, domain.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	default:
		h.logger.Error("request failed",
			slog.String("request_id", c.GetString("request_id")),
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service temporarily unavailable"})
	}
}

func (h *HTTPHandler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		h.logger.Info("request",
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}

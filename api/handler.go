package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aamijar/tokenomics/internal/model"
)

// GetTokens handles GET /api/tokens requests
func (h *APIHandler) GetTokens(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	c.JSON(http.StatusOK, h.dashboard.Tokens(ctx))
}

// GetPrices handles GET /api/prices requests
func (h *APIHandler) GetPrices(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	ids := h.validator.ValidatePricesRequest(c.Query("ids"))

	rows, source := h.dashboard.Markets(ctx, ids)
	h.respond(c, source, rows)
}

// GetAddresses handles GET /api/addresses requests
func (h *APIHandler) GetAddresses(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	ids, err := h.validator.ValidateAddressesRequest(c.Query("ids"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	resp, source := h.dashboard.Addresses(ctx, ids)
	h.respond(c, source, resp)
}

// GetQuote handles GET /api/quotes requests
func (h *APIHandler) GetQuote(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	params, err := h.validator.ValidateQuoteRequest(
		c.Query("fromToken"),
		c.Query("toToken"),
		c.Query("amount"),
		c.Query("chainId"),
	)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	quote, source := h.dashboard.Quote(ctx, params)
	h.respond(c, source, quote)
}

// PostApprove handles POST /api/approve requests
func (h *APIHandler) PostApprove(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, invalidBody(err))
		return
	}

	params, err := h.validator.ValidateApproveRequest(req)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	tx, source := h.dashboard.PrepareApproval(ctx, params)
	h.respond(c, source, tx)
}

// PostSwap handles POST /api/swap requests
func (h *APIHandler) PostSwap(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, invalidBody(err))
		return
	}

	params, err := h.validator.ValidateSwapRequest(req)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	tx, source := h.dashboard.PrepareSwap(ctx, params)
	h.respond(c, source, tx)
}

// GetActivity handles GET /api/activity/:address requests
func (h *APIHandler) GetActivity(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	address, err := h.validator.ValidateActivityRequest(c.Param("address"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	resp, source := h.dashboard.Activity(ctx, address)
	h.respond(c, source, resp)
}

// GetPools handles GET /api/pools requests
func (h *APIHandler) GetPools(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	overview, source := h.dashboard.Pools(ctx)
	h.respond(c, source, overview)
}

// HealthCheck handles GET /health requests
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respond writes body and reports where it came from in the X-Cache header
func (h *APIHandler) respond(c *gin.Context, source model.Source, body any) {
	c.Header(CacheHeaderKey, cacheStatus(source))
	c.JSON(http.StatusOK, body)
}

func cacheStatus(source model.Source) string {
	switch source {
	case model.SourceCache:
		return "HIT"
	case model.SourceStale:
		return "STALE"
	case model.SourceFallback:
		return "FALLBACK"
	default:
		return "MISS"
	}
}

func requestIDFrom(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDContextKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := requestIDFrom(c)

	h.logger.Error("API error",
		slog.String("request_id", requestID),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)

	c.AbortWithStatusJSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

// handlePanic turns a recovered panic into a 500
func (h *APIHandler) handlePanic(c *gin.Context, recovered any) {
	h.handleError(c, fmt.Errorf("panic: %v", recovered), http.StatusInternalServerError, "Internal server error")
}

// handleValidationError handles validation errors specifically
func (h *APIHandler) handleValidationError(c *gin.Context, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		verr = &ValidationError{Issues: []Issue{{Field: "request", Message: err.Error()}}}
	}
	requestID := requestIDFrom(c)

	h.logger.Debug("validation failed",
		slog.String("request_id", requestID),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", verr.Error()),
	)

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":      "invalid request",
		"issues":     verr.Issues,
		"request_id": requestID,
	})
}

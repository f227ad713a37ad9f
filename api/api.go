package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aamijar/tokenomics/internal/metrics"
	"github.com/aamijar/tokenomics/internal/model"
)

// This file serves as the main entry point for the API package. It defines the APIHandler struct and its dependencies.
// The package structure is as follows:
// - api.go: Main API handler, dependencies and routing (this file)
// - handler.go: HTTP request handlers
// - middleware.go: Middleware functions
// - validator.go: Request validation

// Constants
const (
	DefaultTimeout      = 10 * time.Second
	ServiceName         = "tokenomics-proxy"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
	CacheHeaderKey      = "X-Cache"
)

// DashboardService is the aggregation layer behind the API. None of its
// methods fail: degraded results are reported through the returned Source.
type DashboardService interface {
	Tokens(ctx context.Context) []model.Token
	Markets(ctx context.Context, ids []string) ([]model.MarketRow, model.Source)
	Addresses(ctx context.Context, ids []string) (model.AddressesResponse, model.Source)
	Quote(ctx context.Context, p model.QuoteParams) (model.Quote, model.Source)
	PrepareApproval(ctx context.Context, p model.ApproveParams) (model.PreparedTransaction, model.Source)
	PrepareSwap(ctx context.Context, p model.SwapRequest) (model.PreparedTransaction, model.Source)
	Activity(ctx context.Context, address string) (model.ActivityResponse, model.Source)
	Pools(ctx context.Context) (model.PoolsOverview, model.Source)
}

// ServerConfig holds the HTTP-facing settings
type ServerConfig struct {
	CORSOrigin     string
	MetricsEnabled bool
}

// APIHandler handles HTTP requests using Gin framework
type APIHandler struct {
	dashboard DashboardService
	validator *Validator
	logger    *slog.Logger
	config    ServerConfig
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(dashboard DashboardService, config ServerConfig, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.CORSOrigin == "" {
		config.CORSOrigin = "*"
	}

	return &APIHandler{
		dashboard: dashboard,
		validator: GetValidator(),
		logger:    logger,
		config:    config,
	}
}

// NewServer returns an http.Server serving the API on addr
func (h *APIHandler) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(requestIDMiddleware())
	router.Use(ginLoggerMiddleware())
	router.Use(gin.CustomRecovery(h.handlePanic))
	router.Use(corsMiddleware(h.config.CORSOrigin))

	router.GET("/health", h.HealthCheck)
	if h.config.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API routes
	v := router.Group("/api")
	{
		v.GET("/tokens", h.GetTokens)
		v.GET("/prices", h.GetPrices)
		v.GET("/addresses", h.GetAddresses)
		v.GET("/quotes", h.GetQuote)
		v.POST("/approve", h.PostApprove)
		v.POST("/swap", h.PostSwap)
		v.GET("/activity/:address", h.GetActivity)
		v.GET("/pools", h.GetPools)
	}

	return router
}

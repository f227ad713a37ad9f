package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aamijar/tokenomics/internal/data"
	"github.com/aamijar/tokenomics/internal/model"
	"github.com/aamijar/tokenomics/internal/service"
	"github.com/aamijar/tokenomics/internal/upstream"
)

// MockDashboardService implements DashboardService interface for testing
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Tokens(ctx context.Context) []model.Token {
	args := m.Called(ctx)
	return args.Get(0).([]model.Token)
}

func (m *MockDashboardService) Markets(ctx context.Context, ids []string) ([]model.MarketRow, model.Source) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]model.MarketRow), args.Get(1).(model.Source)
}

func (m *MockDashboardService) Addresses(ctx context.Context, ids []string) (model.AddressesResponse, model.Source) {
	args := m.Called(ctx, ids)
	return args.Get(0).(model.AddressesResponse), args.Get(1).(model.Source)
}

func (m *MockDashboardService) Quote(ctx context.Context, p model.QuoteParams) (model.Quote, model.Source) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.Quote), args.Get(1).(model.Source)
}

func (m *MockDashboardService) PrepareApproval(ctx context.Context, p model.ApproveParams) (model.PreparedTransaction, model.Source) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.PreparedTransaction), args.Get(1).(model.Source)
}

func (m *MockDashboardService) PrepareSwap(ctx context.Context, p model.SwapRequest) (model.PreparedTransaction, model.Source) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.PreparedTransaction), args.Get(1).(model.Source)
}

func (m *MockDashboardService) Activity(ctx context.Context, address string) (model.ActivityResponse, model.Source) {
	args := m.Called(ctx, address)
	return args.Get(0).(model.ActivityResponse), args.Get(1).(model.Source)
}

func (m *MockDashboardService) Pools(ctx context.Context) (model.PoolsOverview, model.Source) {
	args := m.Called(ctx)
	return args.Get(0).(model.PoolsOverview), args.Get(1).(model.Source)
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Suppress logs during testing
	}))
}

func setupGinTestMode() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc DashboardService) *gin.Engine {
	return NewAPIHandler(svc, ServerConfig{MetricsEnabled: true}, setupTestLogger()).SetupRoutes()
}

func doRequest(router http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

type errorResponse struct {
	Error     string  `json:"error"`
	Issues    []Issue `json:"issues"`
	RequestID string  `json:"request_id"`
}

func decodeIssues(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// Test NewAPIHandler
func TestNewAPIHandler(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name          string
		logger        *slog.Logger
		config        ServerConfig
		expectDefault bool
		expectOrigin  string
	}{
		{
			name:         "with valid service and logger",
			logger:       setupTestLogger(),
			config:       ServerConfig{CORSOrigin: "http://localhost:5173"},
			expectOrigin: "http://localhost:5173",
		},
		{
			name:          "with nil logger and empty origin",
			logger:        nil,
			expectDefault: true,
			expectOrigin:  "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			handler := NewAPIHandler(svc, tt.config, tt.logger)

			require.NotNil(t, handler)
			assert.Equal(t, svc, handler.dashboard)
			assert.NotNil(t, handler.validator)
			assert.Equal(t, tt.expectOrigin, handler.config.CORSOrigin)
			if tt.expectDefault {
				assert.NotNil(t, handler.logger)
			} else {
				assert.Equal(t, tt.logger, handler.logger)
			}
		})
	}
}

// Test SetupRoutes
func TestSetupRoutes(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name          string
		metrics       bool
		expectMetrics bool
	}{
		{name: "metrics enabled", metrics: true, expectMetrics: true},
		{name: "metrics disabled", metrics: false, expectMetrics: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAPIHandler(&MockDashboardService{}, ServerConfig{MetricsEnabled: tt.metrics}, setupTestLogger())
			router := handler.SetupRoutes()

			registered := map[string]bool{}
			for _, route := range router.Routes() {
				registered[route.Method+" "+route.Path] = true
			}

			for _, expected := range []string{
				"GET /health",
				"GET /api/tokens",
				"GET /api/prices",
				"GET /api/addresses",
				"GET /api/quotes",
				"POST /api/approve",
				"POST /api/swap",
				"GET /api/activity/:address",
				"GET /api/pools",
			} {
				assert.True(t, registered[expected], "%s should be registered", expected)
			}
			assert.Equal(t, tt.expectMetrics, registered["GET /metrics"])
		})
	}
}

func TestNewServer(t *testing.T) {
	setupGinTestMode()

	srv := NewAPIHandler(&MockDashboardService{}, ServerConfig{}, setupTestLogger()).NewServer(":0")

	assert.Equal(t, ":0", srv.Addr)
	assert.NotNil(t, srv.Handler)
}

// Test API Constants
func TestAPIConstants(t *testing.T) {
	assert.Equal(t, 10*time.Second, DefaultTimeout)
	assert.Equal(t, "tokenomics-proxy", ServiceName)
	assert.Equal(t, "request_id", RequestIDContextKey)
	assert.Equal(t, "X-Request-ID", RequestIDHeaderKey)
	assert.Equal(t, "X-Cache", CacheHeaderKey)
}

// Test Health Check Endpoint
func TestHealthCheck(t *testing.T) {
	setupGinTestMode()

	w := doRequest(newTestRouter(&MockDashboardService{}), "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestMiddleware(t *testing.T) {
	setupGinTestMode()
	router := NewAPIHandler(&MockDashboardService{}, ServerConfig{CORSOrigin: "http://app.local"}, setupTestLogger()).SetupRoutes()

	t.Run("generates request id", func(t *testing.T) {
		w := doRequest(router, "GET", "/health", nil)
		assert.NotEmpty(t, w.Header().Get(RequestIDHeaderKey))
	})

	t.Run("echoes request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set(RequestIDHeaderKey, "req-123")
		router.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeaderKey))
	})

	t.Run("cors preflight", func(t *testing.T) {
		w := doRequest(router, "OPTIONS", "/api/swap", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestGetTokensEndpoint(t *testing.T) {
	setupGinTestMode()

	svc := &MockDashboardService{}
	tokens := []model.Token{{ID: "render-token", Symbol: "RNDR", Name: "Render"}}
	svc.On("Tokens", mock.Anything).Return(tokens)

	w := doRequest(newTestRouter(svc), "GET", "/api/tokens", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []model.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, tokens, response)
	svc.AssertExpectations(t)
}

func TestGetPricesEndpoint(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name        string
		url         string
		expectedIDs []string
		source      model.Source
		expectCache string
	}{
		{
			name:        "explicit ids",
			url:         "/api/prices?ids=render-token,the-graph",
			expectedIDs: []string{"render-token", "the-graph"},
			source:      model.SourceFresh,
			expectCache: "MISS",
		},
		{
			name:        "no ids",
			url:         "/api/prices",
			expectedIDs: nil,
			source:      model.SourceCache,
			expectCache: "HIT",
		},
		{
			name:        "degraded",
			url:         "/api/prices?ids=cyber",
			expectedIDs: []string{"cyber"},
			source:      model.SourceFallback,
			expectCache: "FALLBACK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			svc.On("Markets", mock.Anything, tt.expectedIDs).Return([]model.MarketRow{}, tt.source)

			w := doRequest(newTestRouter(svc), "GET", tt.url, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectCache, w.Header().Get(CacheHeaderKey))
			assert.JSONEq(t, `[]`, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestGetAddressesEndpoint(t *testing.T) {
	setupGinTestMode()

	t.Run("resolves ids", func(t *testing.T) {
		svc := &MockDashboardService{}
		resp := model.AddressesResponse{Items: []model.TokenAddresses{{ID: "the-graph", Addresses: map[string]string{"ethereum": "0xc944"}}}}
		svc.On("Addresses", mock.Anything, []string{"the-graph"}).Return(resp, model.SourceStale)

		w := doRequest(newTestRouter(svc), "GET", "/api/addresses?ids=the-graph", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "STALE", w.Header().Get(CacheHeaderKey))
		assert.JSONEq(t, `{"items":[{"id":"the-graph","addresses":{"ethereum":"0xc944"}}]}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("missing ids", func(t *testing.T) {
		svc := &MockDashboardService{}

		w := doRequest(newTestRouter(svc), "GET", "/api/addresses?ids=,", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeIssues(t, w)
		require.Len(t, resp.Issues, 1)
		assert.Equal(t, "ids", resp.Issues[0].Field)
		svc.AssertNotCalled(t, "Addresses", mock.Anything, mock.Anything)
	})
}

func TestGetQuoteEndpoint(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name           string
		query          string
		expectedParams *model.QuoteParams
		expectedStatus int
		expectedFields []string
	}{
		{
			name:           "successful request",
			query:          "fromToken=USDC&toToken=ETH&amount=100&chainId=8453",
			expectedParams: &model.QuoteParams{FromToken: "USDC", ToToken: "ETH", Amount: "100", ChainID: 8453},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "default chain id",
			query:          "fromToken=USDC&toToken=ETH&amount=1.5",
			expectedParams: &model.QuoteParams{FromToken: "USDC", ToToken: "ETH", Amount: "1.5", ChainID: 1},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing tokens",
			query:          "amount=100",
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"fromToken", "toToken"},
		},
		{
			name:           "bad amount and chain",
			query:          "fromToken=USDC&toToken=ETH&amount=1e5&chainId=main",
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"amount", "chainId"},
		},
		{
			name:           "negative amount",
			query:          "fromToken=USDC&toToken=ETH&amount=-1",
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			if tt.expectedParams != nil {
				svc.On("Quote", mock.Anything, *tt.expectedParams).Return(model.Quote{Provider: "mock", ToAmount: "99"}, model.SourceFresh)
			}

			w := doRequest(newTestRouter(svc), "GET", "/api/quotes?"+tt.query, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusBadRequest {
				resp := decodeIssues(t, w)
				assert.Equal(t, "invalid request", resp.Error)
				assert.NotEmpty(t, resp.RequestID)
				var fields []string
				for _, issue := range resp.Issues {
					fields = append(fields, issue.Field)
				}
				assert.Equal(t, tt.expectedFields, fields)
				svc.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything)
				return
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestPostApproveEndpoint(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name           string
		body           any
		expectedParams *model.ApproveParams
		expectedStatus int
		expectedField  string
	}{
		{
			name:           "numeric chain id",
			body:           `{"token":"0xtoken","spender":"0xspender","amount":"1000","chainId":8453,"from":"0xfrom"}`,
			expectedParams: &model.ApproveParams{Token: "0xtoken", Spender: "0xspender", Amount: "1000", ChainID: 8453, From: "0xfrom"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "string chain id",
			body:           `{"token":"0xtoken","amount":"1000","chainId":"1","from":"0xfrom"}`,
			expectedParams: &model.ApproveParams{Token: "0xtoken", Amount: "1000", ChainID: 1, From: "0xfrom"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing from",
			body:           `{"token":"0xtoken","amount":"1000"}`,
			expectedStatus: http.StatusBadRequest,
			expectedField:  "from",
		},
		{
			name:           "non numeric chain id",
			body:           `{"token":"0xtoken","amount":"1000","chainId":"base","from":"0xfrom"}`,
			expectedStatus: http.StatusBadRequest,
			expectedField:  "chainId",
		},
		{
			name:           "malformed body",
			body:           `{"token":`,
			expectedStatus: http.StatusBadRequest,
			expectedField:  "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			if tt.expectedParams != nil {
				svc.On("PrepareApproval", mock.Anything, *tt.expectedParams).
					Return(model.PreparedTransaction{Type: model.TxTypeApprove}, model.SourceFresh)
			}

			w := doRequest(newTestRouter(svc), "POST", "/api/approve", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedField != "" {
				resp := decodeIssues(t, w)
				require.NotEmpty(t, resp.Issues)
				assert.Equal(t, tt.expectedField, resp.Issues[0].Field)
				return
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestPostSwapEndpoint(t *testing.T) {
	setupGinTestMode()

	valid := SwapRequest{
		FromToken: "USDC",
		ToToken:   "ETH",
		Amount:    "100",
		ChainID:   NewFlexInt(1),
		From:      "0xfrom",
	}

	tests := []struct {
		name           string
		mutate         func(r SwapRequest) SwapRequest
		expectedStatus int
		expectedField  string
		expectedBps    int
	}{
		{
			name:           "default slippage",
			mutate:         func(r SwapRequest) SwapRequest { return r },
			expectedStatus: http.StatusOK,
			expectedBps:    DefaultSlippageBps,
		},
		{
			name:           "upper bound",
			mutate:         func(r SwapRequest) SwapRequest { r.SlippageBps = NewFlexInt(5000); return r },
			expectedStatus: http.StatusOK,
			expectedBps:    5000,
		},
		{
			name:           "slippage above bound",
			mutate:         func(r SwapRequest) SwapRequest { r.SlippageBps = NewFlexInt(6000); return r },
			expectedStatus: http.StatusBadRequest,
			expectedField:  "slippageBps",
		},
		{
			name:           "zero slippage",
			mutate:         func(r SwapRequest) SwapRequest { r.SlippageBps = NewFlexInt(0); return r },
			expectedStatus: http.StatusBadRequest,
			expectedField:  "slippageBps",
		},
		{
			name:           "missing from",
			mutate:         func(r SwapRequest) SwapRequest { r.From = ""; return r },
			expectedStatus: http.StatusBadRequest,
			expectedField:  "from",
		},
		{
			name:           "bad min amount out",
			mutate:         func(r SwapRequest) SwapRequest { r.MinAmountOut = "lots"; return r },
			expectedStatus: http.StatusBadRequest,
			expectedField:  "minAmountOut",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			if tt.expectedStatus == http.StatusOK {
				svc.On("PrepareSwap", mock.Anything, mock.MatchedBy(func(p model.SwapRequest) bool {
					return p.SlippageBps == tt.expectedBps && p.ChainID == 1 && p.From == "0xfrom"
				})).Return(model.PreparedTransaction{Type: model.TxTypeSwap, SlippageBps: tt.expectedBps}, model.SourceFresh)
			}

			w := doRequest(newTestRouter(svc), "POST", "/api/swap", tt.mutate(valid))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedField != "" {
				resp := decodeIssues(t, w)
				require.Len(t, resp.Issues, 1)
				assert.Equal(t, tt.expectedField, resp.Issues[0].Field)
				svc.AssertNotCalled(t, "PrepareSwap", mock.Anything, mock.Anything)
				return
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGetActivityEndpoint(t *testing.T) {
	setupGinTestMode()

	svc := &MockDashboardService{}
	resp := model.ActivityResponse{Address: "0xabc", Items: []model.ActivityItem{}}
	svc.On("Activity", mock.Anything, "0xabc").Return(resp, model.SourceCache)

	w := doRequest(newTestRouter(svc), "GET", "/api/activity/0xabc", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get(CacheHeaderKey))
	assert.JSONEq(t, `{"address":"0xabc","items":[]}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestGetPoolsEndpoint(t *testing.T) {
	setupGinTestMode()

	svc := &MockDashboardService{}
	overview := model.PoolsOverview{TVLUSD: 10, Pools: []model.PoolSummary{{ID: "a", TVLUSD: 10}}}
	svc.On("Pools", mock.Anything).Return(overview, model.SourceFresh)

	w := doRequest(newTestRouter(svc), "GET", "/api/pools", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response model.PoolsOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, overview, response)
}

func TestRecovery(t *testing.T) {
	setupGinTestMode()

	svc := &MockDashboardService{}
	svc.On("Pools", mock.Anything).Run(func(mock.Arguments) { panic("boom") })

	w := doRequest(newTestRouter(svc), "GET", "/api/pools", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	setupGinTestMode()

	w := doRequest(newTestRouter(&MockDashboardService{}), "GET", "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

// newOfflineRouter wires the real services with mock providers and no upstream credentials
func newOfflineRouter() *gin.Engine {
	deps := service.Deps{Cache: data.NewCache(), Logger: setupTestLogger(), Timeout: time.Second}
	up := service.Upstreams{
		Pools: []service.PoolSource{
			upstream.NewSubgraph(upstream.ChainEthereum, "", time.Second),
			upstream.NewSubgraph(upstream.ChainBase, "", time.Second),
		},
		Activity: []service.ActivitySource{
			upstream.NewExplorer(upstream.ChainEthereum, upstream.DefaultEtherscanBase, "", time.Second),
			upstream.NewExplorer(upstream.ChainBase, upstream.DefaultBasescanBase, "", time.Second),
		},
	}
	dashboard := service.NewDashboard(up, service.MockProviders(), deps)
	return NewAPIHandler(dashboard, ServerConfig{}, setupTestLogger()).SetupRoutes()
}

func TestOffline_MockQuote(t *testing.T) {
	setupGinTestMode()
	router := newOfflineRouter()

	w := doRequest(router, "GET", "/api/quotes?fromToken=USDC&toToken=ETH&amount=100&chainId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeaderKey))

	var quote model.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "mock", quote.Provider)
	assert.Equal(t, "99", quote.ToAmount)
	assert.Equal(t, 25, quote.PriceImpactBps)

	again := doRequest(router, "GET", "/api/quotes?fromToken=USDC&toToken=ETH&amount=100&chainId=1", nil)
	assert.Equal(t, "HIT", again.Header().Get(CacheHeaderKey))
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestOffline_ActivityFallback(t *testing.T) {
	setupGinTestMode()

	w := doRequest(newOfflineRouter(), "GET", "/api/activity/0x0000000000000000000000000000000000000000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FALLBACK", w.Header().Get(CacheHeaderKey))

	var resp model.ActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "0xswap1", resp.Items[0].Hash)
	assert.Equal(t, "0xapprove1", resp.Items[1].Hash)
	assert.Equal(t, model.StatusFailed, resp.Items[2].Status)
	assert.Equal(t, "Base", resp.Items[2].Chain)
	assert.NotEmpty(t, resp.Notice)
}

func TestOffline_PoolsFallback(t *testing.T) {
	setupGinTestMode()

	w := doRequest(newOfflineRouter(), "GET", "/api/pools", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.PoolsOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Pools)
	var sum float64
	for _, p := range resp.Pools {
		sum += p.TVLUSD
	}
	assert.Equal(t, sum, resp.TVLUSD)
	assert.NotEmpty(t, resp.Notice)
}

func TestOffline_SwapValidation(t *testing.T) {
	setupGinTestMode()
	router := newOfflineRouter()

	w := doRequest(router, "POST", "/api/swap", `{"fromToken":"USDC","toToken":"ETH","amount":"1","from":"0xfrom","slippageBps":6000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/approve", `{"token":"0xtoken","amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/swap", `{"fromToken":"USDC","toToken":"ETH","amount":"1","from":"0xfrom"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var tx model.PreparedTransaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
	assert.Equal(t, "mock", tx.Provider)
	assert.Equal(t, 50, tx.SlippageBps)
	assert.Equal(t, int64(1), tx.ChainID)
}

func TestOffline_OverlongAmountRejected(t *testing.T) {
	setupGinTestMode()
	router := newOfflineRouter()
	amount := "1" + strings.Repeat("0", 300)

	w := doRequest(router, "GET", "/api/quotes?fromToken=USDC&toToken=ETH&amount="+amount, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be at most 256 characters")

	w = doRequest(router, "POST", "/api/approve", `{"token":"0xtoken","spender":"0xspender","amount":"`+amount+`","from":"0xfrom"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/swap", `{"fromToken":"USDC","toToken":"ETH","amount":"`+amount+`","from":"0xfrom"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

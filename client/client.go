// Package client is a typed Go client for the dashboard proxy API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aamijar/tokenomics/internal/model"
)

// DefaultTimeout bounds one API call
const DefaultTimeout = 15 * time.Second

// Issue mirrors a field-level validation failure reported by the API
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Message    string  `json:"error"`
	Issues     []Issue `json:"issues"`
	RequestID  string  `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	for _, issue := range e.Issues {
		msg += fmt.Sprintf("; %s: %s", issue.Field, issue.Message)
	}
	return msg
}

// ApproveRequest is the body of an approval request
type ApproveRequest struct {
	Token   string `json:"token"`
	Spender string `json:"spender,omitempty"`
	Amount  string `json:"amount"`
	ChainID int64  `json:"chainId,omitempty"`
	From    string `json:"from"`
}

// SwapRequest is the body of a swap request
type SwapRequest struct {
	FromToken    string `json:"fromToken"`
	ToToken      string `json:"toToken"`
	Amount       string `json:"amount"`
	MinAmountOut string `json:"minAmountOut,omitempty"`
	ChainID      int64  `json:"chainId,omitempty"`
	From         string `json:"from"`
	SlippageBps  int    `json:"slippageBps,omitempty"`
}

// Client calls the proxy API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8787
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Health reports whether the server answers /health
func (c *Client) Health(ctx context.Context) (bool, error) {
	var resp struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.OK, nil
}

// Tokens lists the supported tokens
func (c *Client) Tokens(ctx context.Context) ([]model.Token, error) {
	var tokens []model.Token
	err := c.do(ctx, http.MethodGet, "/api/tokens", nil, nil, &tokens)
	return tokens, err
}

// Prices returns market rows for ids; an empty list asks for every supported token
func (c *Client) Prices(ctx context.Context, ids []string) ([]model.MarketRow, error) {
	query := url.Values{}
	if len(ids) > 0 {
		query.Set("ids", strings.Join(ids, ","))
	}
	var rows []model.MarketRow
	err := c.do(ctx, http.MethodGet, "/api/prices", query, nil, &rows)
	return rows, err
}

// Addresses resolves contract addresses of ids
func (c *Client) Addresses(ctx context.Context, ids []string) (model.AddressesResponse, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	var resp model.AddressesResponse
	err := c.do(ctx, http.MethodGet, "/api/addresses", query, nil, &resp)
	return resp, err
}

// Quote asks for a swap quote
func (c *Client) Quote(ctx context.Context, p model.QuoteParams) (model.Quote, error) {
	query := url.Values{}
	query.Set("fromToken", p.FromToken)
	query.Set("toToken", p.ToToken)
	query.Set("amount", p.Amount)
	if p.ChainID != 0 {
		query.Set("chainId", strconv.FormatInt(p.ChainID, 10))
	}
	var quote model.Quote
	err := c.do(ctx, http.MethodGet, "/api/quotes", query, nil, &quote)
	return quote, err
}

// Approve prepares an approval transaction
func (c *Client) Approve(ctx context.Context, req ApproveRequest) (model.PreparedTransaction, error) {
	var tx model.PreparedTransaction
	err := c.do(ctx, http.MethodPost, "/api/approve", nil, req, &tx)
	return tx, err
}

// Swap prepares a swap transaction
func (c *Client) Swap(ctx context.Context, req SwapRequest) (model.PreparedTransaction, error) {
	var tx model.PreparedTransaction
	err := c.do(ctx, http.MethodPost, "/api/swap", nil, req, &tx)
	return tx, err
}

// Activity returns the recent activity of address
func (c *Client) Activity(ctx context.Context, address string) (model.ActivityResponse, error) {
	var resp model.ActivityResponse
	err := c.do(ctx, http.MethodGet, "/api/activity/"+url.PathEscape(address), nil, nil, &resp)
	return resp, err
}

// Pools returns the pools overview
func (c *Client) Pools(ctx context.Context) (model.PoolsOverview, error) {
	var overview model.PoolsOverview
	err := c.do(ctx, http.MethodGet, "/api/pools", nil, nil, &overview)
	return overview, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

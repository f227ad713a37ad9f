// Package upstream wraps the third-party APIs the dashboard proxies: the
// CoinGecko price feed, Uniswap subgraphs, the 1inch aggregator and
// Etherscan-family block explorers.
//
// Clients build the request, apply a timeout and normalise the response.
// They never retry; fallback policy belongs to the callers.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every upstream request
const DefaultTimeout = 5 * time.Second

const maxBodyBytes = 4 << 20

// Chain display names used across clients
const (
	ChainEthereum = "Ethereum"
	ChainBase     = "Base"
)

// ErrNotConfigured is returned when a client lacks the URL or API key it needs
var ErrNotConfigured = errors.New("upstream not configured")

// StatusError is returned for non-2xx upstream responses
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

type httpClient struct {
	client  *http.Client
	timeout time.Duration
}

func newHTTPClient(timeout time.Duration) *httpClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &httpClient{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          50,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   timeout,
				ExpectContinueTimeout: time.Second,
			},
		},
		timeout: timeout,
	}
}

func (h *httpClient) getJSON(ctx context.Context, endpoint string, query url.Values, headers map[string]string, dst any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return h.do(ctx, req, headers, dst)
}

func (h *httpClient) postJSON(ctx context.Context, endpoint string, body any, headers map[string]string, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(ctx, req, headers, dst)
}

func (h *httpClient) do(ctx context.Context, req *http.Request, headers map[string]string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	req = req.WithContext(ctx)

	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("error reading response from %s: %w", req.URL.Host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return &StatusError{URL: req.URL.Host + req.URL.Path, StatusCode: resp.StatusCode, Body: snippet}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", req.URL.Host, err)
	}
	return nil
}

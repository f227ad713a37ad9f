package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aamijar/tokenomics/internal/model"
)

// DefaultOneInchBase is the 1inch developer portal API
const DefaultOneInchBase = "https://api.1inch.dev"

// OneInchProvider is the provider name reported on 1inch payloads
const OneInchProvider = "1inch"

// OneInch is the live quote provider and transaction builder
type OneInch struct {
	baseURL string
	apiKey  string
	http    *httpClient
}

// NewOneInch creates a 1inch client; an empty apiKey yields ErrNotConfigured on use
func NewOneInch(baseURL, apiKey string, timeout time.Duration) *OneInch {
	if baseURL == "" {
		baseURL = DefaultOneInchBase
	}
	return &OneInch{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    newHTTPClient(timeout),
	}
}

// Name returns the provider name
func (o *OneInch) Name() string {
	return OneInchProvider
}

func (o *OneInch) authHeaders() (map[string]string, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("1inch api key: %w", ErrNotConfigured)
	}
	return map[string]string{"Authorization": "Bearer " + o.apiKey}, nil
}

type oneInchQuote struct {
	DstAmount   json.Number `json:"dstAmount"`
	ToAmount    json.Number `json:"toAmount"`
	PriceImpact float64     `json:"priceImpact"`
}

type oneInchTx struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

type oneInchSwap struct {
	Tx          *oneInchTx `json:"tx"`
	Transaction *oneInchTx `json:"transaction"`
	oneInchTx
}

// Quote asks 1inch for the output amount of a swap
func (o *OneInch) Quote(ctx context.Context, p model.QuoteParams) (model.Quote, error) {
	headers, err := o.authHeaders()
	if err != nil {
		return model.Quote{}, err
	}

	query := url.Values{}
	query.Set("src", p.FromToken)
	query.Set("dst", p.ToToken)
	query.Set("amount", p.Amount)

	var resp oneInchQuote
	endpoint := fmt.Sprintf("%s/swap/v6.0/%d/quote", o.baseURL, p.ChainID)
	if err := o.http.getJSON(ctx, endpoint, query, headers, &resp); err != nil {
		return model.Quote{}, fmt.Errorf("1inch quote: %w", err)
	}

	toAmount := resp.DstAmount.String()
	if toAmount == "" {
		toAmount = resp.ToAmount.String()
	}
	if toAmount == "" {
		toAmount = "0"
	}

	return model.Quote{
		Provider:        OneInchProvider,
		FromToken:       p.FromToken,
		ToToken:         p.ToToken,
		Amount:          p.Amount,
		ToAmount:        toAmount,
		PriceImpactBps:  int(decimal.NewFromFloat(resp.PriceImpact).Mul(hundred).Round(0).IntPart()),
		EstimatedGasUSD: 0,
		Route:           []model.RouteStep{{Protocol: OneInchProvider, Portion: 1}},
	}, nil
}

// BuildApproveTx asks 1inch for the calldata of an ERC-20 approval
func (o *OneInch) BuildApproveTx(ctx context.Context, p model.ApproveParams) (model.PreparedTransaction, error) {
	headers, err := o.authHeaders()
	if err != nil {
		return model.PreparedTransaction{}, err
	}

	query := url.Values{}
	query.Set("tokenAddress", p.Token)
	query.Set("amount", p.Amount)

	var resp oneInchTx
	endpoint := fmt.Sprintf("%s/approve/v1.2/%d/transaction", o.baseURL, p.ChainID)
	if err := o.http.getJSON(ctx, endpoint, query, headers, &resp); err != nil {
		return model.PreparedTransaction{}, fmt.Errorf("1inch approve: %w", err)
	}
	if resp.Data == "" {
		return model.PreparedTransaction{}, fmt.Errorf("1inch approve: response missing calldata")
	}

	to := p.Spender
	if to == "" {
		to = resp.To
	}

	return model.PreparedTransaction{
		Provider: OneInchProvider,
		Type:     model.TxTypeApprove,
		ChainID:  p.ChainID,
		From:     p.From,
		To:       to,
		Data:     resp.Data,
		Value:    valueOrZero(resp.Value),
	}, nil
}

// BuildSwapTx asks 1inch for the calldata of a swap
func (o *OneInch) BuildSwapTx(ctx context.Context, p model.SwapRequest) (model.PreparedTransaction, error) {
	headers, err := o.authHeaders()
	if err != nil {
		return model.PreparedTransaction{}, err
	}

	query := url.Values{}
	query.Set("src", p.FromToken)
	query.Set("dst", p.ToToken)
	query.Set("amount", p.Amount)
	query.Set("from", p.From)
	// v6 expects percent
	query.Set("slippage", decimal.New(int64(p.SlippageBps), -2).String())
	query.Set("allowPartialFill", strconv.FormatBool(false))

	var resp oneInchSwap
	endpoint := fmt.Sprintf("%s/swap/v6.0/%d/swap", o.baseURL, p.ChainID)
	if err := o.http.getJSON(ctx, endpoint, query, headers, &resp); err != nil {
		return model.PreparedTransaction{}, fmt.Errorf("1inch swap: %w", err)
	}

	tx := resp.Tx
	if tx == nil {
		tx = resp.Transaction
	}
	if tx == nil {
		tx = &resp.oneInchTx
	}
	if tx.To == "" || tx.Data == "" {
		return model.PreparedTransaction{}, fmt.Errorf("1inch swap: response missing transaction")
	}

	return model.PreparedTransaction{
		Provider:    OneInchProvider,
		Type:        model.TxTypeSwap,
		ChainID:     p.ChainID,
		From:        p.From,
		To:          tx.To,
		Data:        tx.Data,
		Value:       valueOrZero(tx.Value),
		Route:       []model.RouteStep{{Protocol: OneInchProvider, Portion: 1}},
		SlippageBps: p.SlippageBps,
	}, nil
}

func valueOrZero(v string) string {
	if v == "" {
		return "0x0"
	}
	return v
}

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aamijar/tokenomics/internal/model"
)

// DefaultCoinGeckoBase is the public CoinGecko API
const DefaultCoinGeckoBase = "https://api.coingecko.com/api/v3"

// CoinGecko is the price feed and token metadata client
type CoinGecko struct {
	baseURL string
	apiKey  string
	http    *httpClient
}

// NewCoinGecko creates a CoinGecko client; apiKey may be empty for the public tier
func NewCoinGecko(baseURL, apiKey string, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBase
	}
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    newHTTPClient(timeout),
	}
}

type coinGeckoMarket struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	Sparkline                *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

type coinGeckoCoin struct {
	ID        string            `json:"id"`
	Platforms map[string]string `json:"platforms"`
}

func (c *CoinGecko) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}

// Markets fetches USD market rows with 7d sparklines for ids
func (c *CoinGecko) Markets(ctx context.Context, ids []string) ([]model.MarketRow, error) {
	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("ids", strings.Join(ids, ","))
	query.Set("price_change_percentage", "24h")
	query.Set("sparkline", "true")

	var markets []coinGeckoMarket
	if err := c.http.getJSON(ctx, c.baseURL+"/coins/markets", query, c.headers(), &markets); err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}

	rows := make([]model.MarketRow, 0, len(markets))
	for _, m := range markets {
		row := model.MarketRow{
			ID:          m.ID,
			Symbol:      strings.ToUpper(m.Symbol),
			Name:        m.Name,
			Sparkline7d: []float64{},
		}
		if m.CurrentPrice != nil {
			row.Price = *m.CurrentPrice
		}
		if m.MarketCap != nil {
			row.MarketCap = *m.MarketCap
		}
		if m.PriceChangePercentage24h != nil {
			row.Change24hPct = *m.PriceChangePercentage24h
		}
		if m.Sparkline != nil && m.Sparkline.Price != nil {
			row.Sparkline7d = m.Sparkline.Price
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// platformAliases maps our chain keys to CoinGecko platform ids, first match wins
var platformAliases = []struct {
	chain     string
	platforms []string
}{
	{"ethereum", []string{"ethereum"}},
	{"base", []string{"base"}},
	{"polygon", []string{"polygon-pos", "polygon_pos", "polygon"}},
	{"arbitrum", []string{"arbitrum-one", "arbitrum_one"}},
	{"bsc", []string{"binance-smart-chain", "binance_smart_chain"}},
	{"optimism", []string{"optimistic-ethereum", "optimistic_ethereum", "optimism"}},
}

// Platforms fetches the contract address of a token on each supported chain
func (c *CoinGecko) Platforms(ctx context.Context, id string) (model.TokenAddresses, error) {
	query := url.Values{}
	for _, flag := range []string{"localization", "tickers", "market_data", "community_data", "developer_data", "sparkline"} {
		query.Set(flag, "false")
	}

	var coin coinGeckoCoin
	if err := c.http.getJSON(ctx, c.baseURL+"/coins/"+url.PathEscape(id), query, c.headers(), &coin); err != nil {
		return model.TokenAddresses{}, fmt.Errorf("coingecko coin %s: %w", id, err)
	}

	addresses := make(map[string]string, len(platformAliases))
	for _, alias := range platformAliases {
		addresses[alias.chain] = ""
		for _, platform := range alias.platforms {
			if addr := coin.Platforms[platform]; addr != "" {
				addresses[alias.chain] = addr
				break
			}
		}
	}

	return model.TokenAddresses{ID: id, Addresses: addresses}, nil
}

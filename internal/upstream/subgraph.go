package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aamijar/tokenomics/internal/model"
)

const topPoolsQuery = `
	query TopPools($first: Int!) {
		pools(first: $first, orderBy: totalValueLockedUSD, orderDirection: desc) {
			id
			feeTier
			totalValueLockedUSD
			token0 { symbol }
			token1 { symbol }
			poolDayData(first: 1, orderBy: date, orderDirection: desc) {
				volumeUSD
			}
		}
	}
`

const defaultPoolLimit = 10

var (
	feeTierDivisor = decimal.NewFromInt(1_000_000)
	daysPerYear    = decimal.NewFromInt(365)
	hundred        = decimal.NewFromInt(100)
)

// Subgraph queries a Uniswap v3 subgraph for one chain
type Subgraph struct {
	chain    string
	endpoint string
	limit    int
	http     *httpClient
}

// NewSubgraph creates a subgraph client; an empty endpoint yields ErrNotConfigured on use
func NewSubgraph(chain, endpoint string, timeout time.Duration) *Subgraph {
	return &Subgraph{
		chain:    chain,
		endpoint: endpoint,
		limit:    defaultPoolLimit,
		http:     newHTTPClient(timeout),
	}
}

// Chain returns the chain this subgraph indexes
func (s *Subgraph) Chain() string {
	return s.chain
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type subgraphPool struct {
	ID                  string `json:"id"`
	FeeTier             string `json:"feeTier"`
	TotalValueLockedUSD string `json:"totalValueLockedUSD"`
	Token0              struct {
		Symbol string `json:"symbol"`
	} `json:"token0"`
	Token1 struct {
		Symbol string `json:"symbol"`
	} `json:"token1"`
	PoolDayData []struct {
		VolumeUSD string `json:"volumeUSD"`
	} `json:"poolDayData"`
}

type subgraphResponse struct {
	Data struct {
		Pools []subgraphPool `json:"pools"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// TopPools returns the highest-TVL pools of the chain
func (s *Subgraph) TopPools(ctx context.Context) ([]model.PoolSummary, error) {
	if s.endpoint == "" {
		return nil, fmt.Errorf("%s subgraph: %w", s.chain, ErrNotConfigured)
	}

	req := graphQLRequest{
		Query:     topPoolsQuery,
		Variables: map[string]any{"first": s.limit},
	}

	var resp subgraphResponse
	if err := s.http.postJSON(ctx, s.endpoint, req, nil, &resp); err != nil {
		return nil, fmt.Errorf("%s subgraph: %w", s.chain, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%s subgraph: graphql error: %s", s.chain, resp.Errors[0].Message)
	}

	pools := make([]model.PoolSummary, 0, len(resp.Data.Pools))
	for _, p := range resp.Data.Pools {
		pools = append(pools, s.toSummary(p))
	}
	return pools, nil
}

func (s *Subgraph) toSummary(p subgraphPool) model.PoolSummary {
	feeTier := parseDecimal(p.FeeTier)
	tvl := parseDecimal(p.TotalValueLockedUSD)
	volume := decimal.Zero
	if len(p.PoolDayData) > 0 {
		volume = parseDecimal(p.PoolDayData[0].VolumeUSD)
	}

	return model.PoolSummary{
		ID:           strings.ToLower(p.ID),
		Name:         p.Token0.Symbol + "/" + p.Token1.Symbol,
		FeeTierBps:   int(feeTier.Div(hundred).IntPart()),
		TVLUSD:       tvl.Round(2).InexactFloat64(),
		Volume24hUSD: volume.Round(2).InexactFloat64(),
		APR:          poolAPR(volume, feeTier, tvl),
		Chain:        s.chain,
	}
}

// poolAPR annualises one day of fees over TVL, in percent.
// feeTier is in hundredths of a basis point (3000 = 0.3%).
func poolAPR(volume24h, feeTier, tvl decimal.Decimal) float64 {
	if !tvl.IsPositive() {
		return 0
	}
	dailyFees := volume24h.Mul(feeTier).Div(feeTierDivisor)
	return dailyFees.Mul(daysPerYear).Div(tvl).Mul(hundred).Round(2).InexactFloat64()
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

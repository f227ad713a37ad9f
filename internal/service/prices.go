package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aamijar/tokenomics/internal/mock"
	"github.com/aamijar/tokenomics/internal/model"
	"github.com/aamijar/tokenomics/internal/upstream"
)

// MarketFeed fetches market rows from a price feed
type MarketFeed interface {
	Markets(ctx context.Context, ids []string) ([]model.MarketRow, error)
}

// PriceService serves cached market rows
type PriceService struct {
	feed    MarketFeed
	tokens  *TokenService
	fetcher *fetcher
}

// NewPriceService creates a price service
func NewPriceService(feed MarketFeed, tokens *TokenService, deps Deps) *PriceService {
	return &PriceService{
		feed:    feed,
		tokens:  tokens,
		fetcher: newFetcher(deps),
	}
}

// Markets returns market rows for ids, or for every supported token when ids is empty
func (ps *PriceService) Markets(ctx context.Context, ids []string) ([]model.MarketRow, model.Source) {
	if len(ids) == 0 {
		ids = ps.tokens.IDs()
	}

	return readThrough(ctx, ps.fetcher, lookup[[]model.MarketRow]{
		domain: "prices",
		key:    "markets:" + strings.Join(ids, ","),
		ttl:    PricesTTL,
		fetch: func(ctx context.Context) ([]model.MarketRow, error) {
			if ps.feed == nil {
				return nil, fmt.Errorf("price feed: %w", upstream.ErrNotConfigured)
			}
			return ps.feed.Markets(ctx, ids)
		},
		fallback: mock.FallbackMarkets,
	})
}

package service

import (
	"context"
	"fmt"

	"github.com/aamijar/tokenomics/internal/mock"
	"github.com/aamijar/tokenomics/internal/model"
)

// QuoteNotice is attached to mock quotes served because the live provider failed
const QuoteNotice = "Quote provider unavailable; showing mock quote."

// QuoteService serves cached swap quotes
type QuoteService struct {
	provider QuoteProvider
	fallback *mock.QuoteProvider
	fetcher  *fetcher
}

// NewQuoteService creates a quote service
func NewQuoteService(provider QuoteProvider, deps Deps) *QuoteService {
	if provider == nil {
		provider = mock.NewQuoteProvider()
	}
	return &QuoteService{
		provider: provider,
		fallback: mock.NewQuoteProvider(),
		fetcher:  newFetcher(deps),
	}
}

// Quote returns a quote for p, identical for identical parameters within QuotesTTL
func (qs *QuoteService) Quote(ctx context.Context, p model.QuoteParams) (model.Quote, model.Source) {
	key := fmt.Sprintf("quote:%s:%d:%s:%s:%s", qs.provider.Name(), p.ChainID, p.FromToken, p.ToToken, p.Amount)

	return readThrough(ctx, qs.fetcher, lookup[model.Quote]{
		domain: "quotes",
		key:    key,
		ttl:    QuotesTTL,
		fetch: func(ctx context.Context) (model.Quote, error) {
			return qs.provider.Quote(ctx, p)
		},
		fallback: func() model.Quote {
			q, _ := qs.fallback.Quote(ctx, p)
			q.Notice = QuoteNotice
			return q
		},
		degrade: func(q model.Quote) model.Quote {
			q.Notice = mock.StaleNotice
			return q
		},
	})
}

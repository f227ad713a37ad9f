package service

import (
	"context"
	"fmt"

	"github.com/aamijar/tokenomics/internal/mock"
	"github.com/aamijar/tokenomics/internal/model"
	"github.com/aamijar/tokenomics/internal/upstream"
)

// PlatformResolver resolves the contract addresses of a token
type PlatformResolver interface {
	Platforms(ctx context.Context, id string) (model.TokenAddresses, error)
}

// AddressService resolves token contract addresses per chain
type AddressService struct {
	resolver PlatformResolver
	fetcher  *fetcher
}

// NewAddressService creates an address service
func NewAddressService(resolver PlatformResolver, deps Deps) *AddressService {
	return &AddressService{
		resolver: resolver,
		fetcher:  newFetcher(deps),
	}
}

type resolvedAddresses struct {
	item   model.TokenAddresses
	source model.Source
}

// Resolve looks up every id concurrently. A token that cannot be resolved is
// returned with an empty address map and the response carries a notice.
func (as *AddressService) Resolve(ctx context.Context, ids []string) (model.AddressesResponse, model.Source) {
	results := forEach(ctx, ids, func(ctx context.Context, id string) resolvedAddresses {
		item, source := readThrough(ctx, as.fetcher, lookup[model.TokenAddresses]{
			domain: "addresses",
			key:    "platforms:" + id,
			ttl:    AddressesTTL,
			fetch: func(ctx context.Context) (model.TokenAddresses, error) {
				if as.resolver == nil {
					return model.TokenAddresses{}, fmt.Errorf("platform resolver: %w", upstream.ErrNotConfigured)
				}
				return as.resolver.Platforms(ctx, id)
			},
			fallback: func() model.TokenAddresses {
				return mock.FallbackAddresses(id)
			},
		})
		return resolvedAddresses{item: item, source: source}
	})

	resp := model.AddressesResponse{Items: make([]model.TokenAddresses, 0, len(results))}
	source := model.SourceCache
	for _, r := range results {
		resp.Items = append(resp.Items, r.item)
		source = worse(source, r.source)
	}
	if source.Degraded() {
		resp.Notice = mock.AddressesNotice
	}
	return resp, source
}

var sourceRank = map[model.Source]int{
	model.SourceCache:    0,
	model.SourceFresh:    1,
	model.SourceStale:    2,
	model.SourceFallback: 3,
}

// worse returns whichever source is further from a live cache hit
func worse(a, b model.Source) model.Source {
	if sourceRank[b] > sourceRank[a] {
		return b
	}
	return a
}

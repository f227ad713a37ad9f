package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/aamijar/tokenomics/internal/mock"
	"github.com/aamijar/tokenomics/internal/model"
)

// ActivitySource lists the transactions of an address on one chain
type ActivitySource interface {
	Chain() string
	Transactions(ctx context.Context, address string) ([]model.ActivityItem, error)
}

// ActivityService merges address activity across block explorers
type ActivityService struct {
	sources []ActivitySource
	fetcher *fetcher
}

// NewActivityService creates an activity service over the given explorers
func NewActivityService(sources []ActivitySource, deps Deps) *ActivityService {
	return &ActivityService{
		sources: sources,
		fetcher: newFetcher(deps),
	}
}

// ForAddress returns the merged activity of address, newest first
func (as *ActivityService) ForAddress(ctx context.Context, address string) (model.ActivityResponse, model.Source) {
	return readThrough(ctx, as.fetcher, lookup[model.ActivityResponse]{
		domain: "activity",
		key:    "activity:" + strings.ToLower(address),
		ttl:    ActivityTTL,
		fetch: func(ctx context.Context) (model.ActivityResponse, error) {
			return as.fetch(ctx, address)
		},
		fallback: func() model.ActivityResponse {
			return mock.FallbackActivity(address, as.fetcher.now())
		},
		degrade: func(r model.ActivityResponse) model.ActivityResponse {
			r.Notice = mock.StaleNotice
			return r
		},
	})
}

func (as *ActivityService) fetch(ctx context.Context, address string) (model.ActivityResponse, error) {
	results, err := fanOut(ctx, as.sources, func(ctx context.Context, src ActivitySource) ([]model.ActivityItem, error) {
		return src.Transactions(ctx, address)
	})
	if failed := allFailed(results, err); failed != nil {
		return model.ActivityResponse{}, failed
	}
	if err != nil {
		as.fetcher.logger.Warn("partial activity fetch",
			slog.String("address", address),
			slog.String("error", err.Error()))
	}

	items := []model.ActivityItem{}
	for _, r := range results {
		items = append(items, r...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})

	return model.ActivityResponse{Address: address, Items: items}, nil
}

package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/aamijar/tokenomics/internal/mock"
	"github.com/aamijar/tokenomics/internal/model"
)

// PoolSource lists the top pools of one chain
type PoolSource interface {
	Chain() string
	TopPools(ctx context.Context) ([]model.PoolSummary, error)
}

// PoolService aggregates pools across subgraphs
type PoolService struct {
	sources []PoolSource
	fetcher *fetcher
}

// NewPoolService creates a pool service over the given subgraphs
func NewPoolService(sources []PoolSource, deps Deps) *PoolService {
	return &PoolService{
		sources: sources,
		fetcher: newFetcher(deps),
	}
}

// Overview returns the merged pool list sorted by TVL and its total TVL
func (ps *PoolService) Overview(ctx context.Context) (model.PoolsOverview, model.Source) {
	return readThrough(ctx, ps.fetcher, lookup[model.PoolsOverview]{
		domain:   "pools",
		key:      "pools:overview",
		ttl:      PoolsTTL,
		fetch:    ps.fetch,
		fallback: mock.FallbackPools,
		degrade: func(o model.PoolsOverview) model.PoolsOverview {
			o.Notice = mock.StaleNotice
			return o
		},
	})
}

func (ps *PoolService) fetch(ctx context.Context) (model.PoolsOverview, error) {
	results, err := fanOut(ctx, ps.sources, func(ctx context.Context, src PoolSource) ([]model.PoolSummary, error) {
		return src.TopPools(ctx)
	})
	if failed := allFailed(results, err); failed != nil {
		return model.PoolsOverview{}, failed
	}
	if err != nil {
		ps.fetcher.logger.Warn("partial pools fetch", slog.String("error", err.Error()))
	}

	pools := []model.PoolSummary{}
	for _, r := range results {
		pools = append(pools, r...)
	}
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].TVLUSD > pools[j].TVLUSD
	})

	return model.PoolsOverview{TVLUSD: mock.SumTVL(pools), Pools: pools}, nil
}

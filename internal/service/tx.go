package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aamijar/tokenomics/internal/mock"
	"github.com/aamijar/tokenomics/internal/model"
)

// Default request values
const (
	DefaultChainID     int64 = 1
	DefaultSlippageBps       = 50
)

// TxService prepares unsigned transactions for an external wallet
type TxService struct {
	builder  TxBuilder
	fallback *mock.TxBuilder
	fetcher  *fetcher
}

// NewTxService creates a transaction service
func NewTxService(builder TxBuilder, deps Deps) *TxService {
	if builder == nil {
		builder = mock.NewTxBuilder()
	}
	return &TxService{
		builder:  builder,
		fallback: mock.NewTxBuilder(),
		fetcher:  newFetcher(deps),
	}
}

// PrepareApproval builds an ERC-20 approve transaction
func (ts *TxService) PrepareApproval(ctx context.Context, p model.ApproveParams) (model.PreparedTransaction, model.Source) {
	if p.ChainID == 0 {
		p.ChainID = DefaultChainID
	}
	key := fmt.Sprintf("approve:%s:%d:%s:%s:%s:%s",
		ts.builder.Name(), p.ChainID, lower(p.Token), lower(p.Spender), p.Amount, lower(p.From))

	return readThrough(ctx, ts.fetcher, lookup[model.PreparedTransaction]{
		domain: "approve",
		key:    key,
		ttl:    TxTTL,
		fetch: func(ctx context.Context) (model.PreparedTransaction, error) {
			tx, err := ts.builder.BuildApproveTx(ctx, p)
			if err != nil {
				return tx, err
			}
			if tx.From == "" {
				tx.From = p.From
			}
			return tx, nil
		},
		fallback: func() model.PreparedTransaction {
			tx, _ := ts.fallback.BuildApproveTx(ctx, p)
			return tx
		},
	})
}

// PrepareSwap builds a swap transaction
func (ts *TxService) PrepareSwap(ctx context.Context, p model.SwapRequest) (model.PreparedTransaction, model.Source) {
	if p.ChainID == 0 {
		p.ChainID = DefaultChainID
	}
	if p.SlippageBps == 0 {
		p.SlippageBps = DefaultSlippageBps
	}
	key := fmt.Sprintf("swap:%s:%d:%s:%s:%s:%s:%d:%s",
		ts.builder.Name(), p.ChainID, p.FromToken, p.ToToken, p.Amount, p.MinAmountOut, p.SlippageBps, lower(p.From))

	return readThrough(ctx, ts.fetcher, lookup[model.PreparedTransaction]{
		domain: "swap",
		key:    key,
		ttl:    TxTTL,
		fetch: func(ctx context.Context) (model.PreparedTransaction, error) {
			return ts.builder.BuildSwapTx(ctx, p)
		},
		fallback: func() model.PreparedTransaction {
			tx, _ := ts.fallback.BuildSwapTx(ctx, p)
			return tx
		},
	})
}

func lower(s string) string {
	return strings.ToLower(s)
}

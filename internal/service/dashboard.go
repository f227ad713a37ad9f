package service

import (
	"context"

	"github.com/aamijar/tokenomics/internal/model"
)

// Upstreams groups the upstream clients the dashboard reads from
type Upstreams struct {
	Markets   MarketFeed
	Platforms PlatformResolver
	Pools     []PoolSource
	Activity  []ActivitySource
}

// Dashboard exposes every aggregation service behind one value for the API layer
type Dashboard struct {
	tokens    *TokenService
	prices    *PriceService
	addresses *AddressService
	quotes    *QuoteService
	tx        *TxService
	activity  *ActivityService
	pools     *PoolService
}

// NewDashboard wires the aggregation services over a shared cache
func NewDashboard(up Upstreams, providers Providers, deps Deps) *Dashboard {
	tokens := NewTokenService()
	return &Dashboard{
		tokens:    tokens,
		prices:    NewPriceService(up.Markets, tokens, deps),
		addresses: NewAddressService(up.Platforms, deps),
		quotes:    NewQuoteService(providers.Quotes, deps),
		tx:        NewTxService(providers.Tx, deps),
		activity:  NewActivityService(up.Activity, deps),
		pools:     NewPoolService(up.Pools, deps),
	}
}

// Tokens returns the supported token list
func (d *Dashboard) Tokens(ctx context.Context) []model.Token {
	return d.tokens.List(ctx)
}

// Markets returns market rows for ids, or for every supported token when ids is empty
func (d *Dashboard) Markets(ctx context.Context, ids []string) ([]model.MarketRow, model.Source) {
	return d.prices.Markets(ctx, ids)
}

// Addresses resolves contract addresses per chain for ids
func (d *Dashboard) Addresses(ctx context.Context, ids []string) (model.AddressesResponse, model.Source) {
	return d.addresses.Resolve(ctx, ids)
}

// Quote returns a swap quote from the configured provider
func (d *Dashboard) Quote(ctx context.Context, p model.QuoteParams) (model.Quote, model.Source) {
	return d.quotes.Quote(ctx, p)
}

// PrepareApproval builds an unsigned ERC-20 approval
func (d *Dashboard) PrepareApproval(ctx context.Context, p model.ApproveParams) (model.PreparedTransaction, model.Source) {
	return d.tx.PrepareApproval(ctx, p)
}

// PrepareSwap builds an unsigned swap transaction
func (d *Dashboard) PrepareSwap(ctx context.Context, p model.SwapRequest) (model.PreparedTransaction, model.Source) {
	return d.tx.PrepareSwap(ctx, p)
}

// Activity returns recent transactions for address across chains, newest first
func (d *Dashboard) Activity(ctx context.Context, address string) (model.ActivityResponse, model.Source) {
	return d.activity.ForAddress(ctx, address)
}

// Pools returns the top pools across chains by TVL
func (d *Dashboard) Pools(ctx context.Context) (model.PoolsOverview, model.Source) {
	return d.pools.Overview(ctx)
}

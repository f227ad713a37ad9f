package service

import (
	"context"
	"strings"

	"github.com/aamijar/tokenomics/internal/mock"
	"github.com/aamijar/tokenomics/internal/model"
)

// Provider names accepted by QUOTE_PROVIDER
const (
	ProviderMock    = mock.ProviderName
	ProviderOneInch = "1inch"
)

// QuoteProvider produces swap quotes
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, p model.QuoteParams) (model.Quote, error)
}

// TxBuilder prepares unsigned approve and swap transactions
type TxBuilder interface {
	Name() string
	BuildApproveTx(ctx context.Context, p model.ApproveParams) (model.PreparedTransaction, error)
	BuildSwapTx(ctx context.Context, p model.SwapRequest) (model.PreparedTransaction, error)
}

// LiveProvider is an aggregator that both quotes and builds transactions
type LiveProvider interface {
	QuoteProvider
	TxBuilder
}

// Providers is the quote and transaction strategy chosen at startup
type Providers struct {
	Quotes QuoteProvider
	Tx     TxBuilder
}

// NewProviders selects the strategy named by name. Unknown names and a
// missing live client select the mock strategy.
func NewProviders(name string, live LiveProvider) Providers {
	if strings.EqualFold(strings.TrimSpace(name), ProviderOneInch) && live != nil {
		return Providers{Quotes: live, Tx: live}
	}
	return MockProviders()
}

// MockProviders returns the deterministic mock strategy
func MockProviders() Providers {
	return Providers{
		Quotes: mock.NewQuoteProvider(),
		Tx:     mock.NewTxBuilder(),
	}
}

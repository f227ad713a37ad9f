package mock

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/aamijar/tokenomics/internal/model"
)

// ProviderName labels payloads produced by the mock providers
const ProviderName = "mock"

// Notices carried by mock payloads
const (
	QuoteNotice   = "Mock quote for development. Set QUOTE_PROVIDER=1inch and ONEINCH_API_KEY for live quotes."
	ApproveNotice = "Mock approval data. Set QUOTE_PROVIDER=1inch and ONEINCH_API_KEY for live routing."
	SwapNotice    = "Mock swap tx. Configure provider/keys for live execution."
)

// MockRouter is the placeholder destination of mock swap transactions
const MockRouter = "0xrouter000000000000000000000000000000000000"

const (
	mockPriceImpactBps  = 25
	mockEstimatedGasUSD = 2.1
	defaultSlippageBps  = 50
)

var (
	mockRate        = decimal.RequireFromString("0.99")
	approveSelector = hexutil.MustDecode("0x095ea7b3")
	uint256Modulus  = new(big.Int).Lsh(big.NewInt(1), 256)
	mockRoute       = []model.RouteStep{{Protocol: "MOCK", Portion: 1}}
)

// QuoteProvider quotes every pair at a fixed 0.99 rate
type QuoteProvider struct{}

// NewQuoteProvider creates the mock quote provider
func NewQuoteProvider() *QuoteProvider {
	return &QuoteProvider{}
}

// Name returns the provider name
func (q *QuoteProvider) Name() string {
	return ProviderName
}

// Quote never fails
func (q *QuoteProvider) Quote(_ context.Context, p model.QuoteParams) (model.Quote, error) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		amount = decimal.Zero
	}

	return model.Quote{
		Provider:        ProviderName,
		FromToken:       p.FromToken,
		ToToken:         p.ToToken,
		Amount:          p.Amount,
		ToAmount:        amount.Mul(mockRate).String(),
		PriceImpactBps:  mockPriceImpactBps,
		EstimatedGasUSD: mockEstimatedGasUSD,
		Route:           append([]model.RouteStep(nil), mockRoute...),
		Notice:          QuoteNotice,
	}, nil
}

// TxBuilder produces placeholder transactions that are well-formed but route nowhere
type TxBuilder struct{}

// NewTxBuilder creates the mock transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{}
}

// Name returns the provider name
func (b *TxBuilder) Name() string {
	return ProviderName
}

// BuildApproveTx encodes approve(spender, amount) against the token contract
func (b *TxBuilder) BuildApproveTx(_ context.Context, p model.ApproveParams) (model.PreparedTransaction, error) {
	return model.PreparedTransaction{
		Provider: ProviderName,
		Type:     model.TxTypeApprove,
		ChainID:  p.ChainID,
		From:     p.From,
		To:       p.Token,
		Data:     EncodeApprove(p.Spender, p.Amount),
		Value:    "0x0",
		Notice:   ApproveNotice,
	}, nil
}

// BuildSwapTx returns a placeholder swap against MockRouter
func (b *TxBuilder) BuildSwapTx(_ context.Context, p model.SwapRequest) (model.PreparedTransaction, error) {
	slippage := p.SlippageBps
	if slippage == 0 {
		slippage = defaultSlippageBps
	}

	return model.PreparedTransaction{
		Provider:    ProviderName,
		Type:        model.TxTypeSwap,
		ChainID:     p.ChainID,
		From:        p.From,
		To:          MockRouter,
		Data:        "0x" + "deadbeef" + strings.Repeat("0", 56),
		Value:       "0x0",
		Route:       append([]model.RouteStep(nil), mockRoute...),
		SlippageBps: slippage,
		Params: &model.SwapParams{
			FromToken:    p.FromToken,
			ToToken:      p.ToToken,
			Amount:       p.Amount,
			MinAmountOut: p.MinAmountOut,
		},
		Notice: SwapNotice,
	}, nil
}

// EncodeApprove builds ERC-20 approve calldata. Non-hex spenders encode as the
// zero address and amounts wrap modulo 2^256.
func EncodeApprove(spender, amount string) string {
	var spenderAddr common.Address
	if common.IsHexAddress(spender) {
		spenderAddr = common.HexToAddress(spender)
	}

	value := big.NewInt(0)
	if d, err := decimal.NewFromString(amount); err == nil && !d.IsNegative() {
		value = d.BigInt()
	}
	value.Mod(value, uint256Modulus)

	calldata := make([]byte, 0, len(approveSelector)+64)
	calldata = append(calldata, approveSelector...)
	calldata = append(calldata, common.LeftPadBytes(spenderAddr.Bytes(), 32)...)
	calldata = append(calldata, common.LeftPadBytes(value.Bytes(), 32)...)
	return hexutil.Encode(calldata)
}

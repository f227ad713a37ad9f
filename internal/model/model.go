package model

// Source tells where a response payload came from
type Source string

const (
	SourceFresh    Source = "fresh"    // upstream answered for this request
	SourceCache    Source = "cache"    // served from a live cache entry
	SourceStale    Source = "stale"    // upstream failed, served last-known data
	SourceFallback Source = "fallback" // upstream failed, served a static sample
)

// Degraded reports whether the payload was served without a live upstream answer
func (s Source) Degraded() bool {
	return s == SourceStale || s == SourceFallback
}

// Token is an entry of the supported token list
type Token struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// MarketRow represents one row of the markets table
type MarketRow struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	MarketCap    float64   `json:"marketCap"`
	Change24hPct float64   `json:"change24hPct"`
	Sparkline7d  []float64 `json:"sparkline7d"`
}

// TokenAddresses maps a token id to its contract address per chain
type TokenAddresses struct {
	ID        string            `json:"id"`
	Addresses map[string]string `json:"addresses"`
}

// AddressesResponse is the body of GET /addresses
type AddressesResponse struct {
	Items  []TokenAddresses `json:"items"`
	Notice string           `json:"notice,omitempty"`
}

// RouteStep is one hop of a swap route
type RouteStep struct {
	Protocol string  `json:"protocol"`
	Portion  float64 `json:"portion"`
}

// Quote is a swap quote from a provider
type Quote struct {
	Provider        string      `json:"provider"`
	FromToken       string      `json:"fromToken"`
	ToToken         string      `json:"toToken"`
	Amount          string      `json:"amount"`
	ToAmount        string      `json:"toAmount"`
	PriceImpactBps  int         `json:"priceImpactBps"`
	EstimatedGasUSD float64     `json:"estimatedGasUSD"`
	Route           []RouteStep `json:"route"`
	Notice          string      `json:"notice,omitempty"`
}

// QuoteParams identifies a quote request
type QuoteParams struct {
	FromToken string
	ToToken   string
	Amount    string
	ChainID   int64
}

// Transaction types
const (
	TxTypeApprove = "approve"
	TxTypeSwap    = "swap"
)

// SwapParams echoes the swap inputs on mock transactions
type SwapParams struct {
	FromToken    string `json:"fromToken"`
	ToToken      string `json:"toToken"`
	Amount       string `json:"amount"`
	MinAmountOut string `json:"minAmountOut,omitempty"`
}

// PreparedTransaction describes an unsigned transaction for an external wallet
type PreparedTransaction struct {
	Provider    string      `json:"provider"`
	Type        string      `json:"type"`
	ChainID     int64       `json:"chainId"`
	From        string      `json:"from,omitempty"`
	To          string      `json:"to"`
	Data        string      `json:"data"`
	Value       string      `json:"value"`
	Route       []RouteStep `json:"route,omitempty"`
	SlippageBps int         `json:"slippageBps,omitempty"`
	Params      *SwapParams `json:"params,omitempty"`
	Notice      string      `json:"notice,omitempty"`
}

// ApproveParams holds the inputs of an ERC-20 approval
type ApproveParams struct {
	Token   string
	Spender string
	Amount  string
	ChainID int64
	From    string
}

// SwapRequest holds the inputs of a swap transaction
type SwapRequest struct {
	FromToken    string
	ToToken      string
	Amount       string
	MinAmountOut string
	ChainID      int64
	From         string
	SlippageBps  int
}

// PoolSummary represents one liquidity pool
type PoolSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	FeeTierBps   int     `json:"feeTierBps"`
	TVLUSD       float64 `json:"tvlUSD"`
	Volume24hUSD float64 `json:"volume24hUSD"`
	APR          float64 `json:"apr"`
	Chain        string  `json:"chain"`
}

// PoolsOverview is the body of GET /pools
type PoolsOverview struct {
	TVLUSD float64       `json:"tvlUSD"`
	Pools  []PoolSummary `json:"pools"`
	Notice string        `json:"notice,omitempty"`
}

// Activity statuses
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ActivityItem is one entry of an address activity feed
type ActivityItem struct {
	Type      string `json:"type"`
	Hash      string `json:"hash"`
	Timestamp int64  `json:"timestamp"`
	Summary   string `json:"summary"`
	Status    string `json:"status"`
	Chain     string `json:"chain"`
}

// ActivityResponse is the body of GET /activity/:address
type ActivityResponse struct {
	Address string         `json:"address"`
	Items   []ActivityItem `json:"items"`
	Notice  string         `json:"notice,omitempty"`
}

// Holding is a user-editable portfolio position
type Holding struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

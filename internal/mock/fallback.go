package mock

import (
	"time"

	"github.com/aamijar/tokenomics/internal/model"
)

// Degraded-mode notices attached to fallback payloads
const (
	PoolsNotice     = "Live pool data unavailable; showing sample pools. Configure SUBGRAPH_ETHEREUM_URL / SUBGRAPH_BASE_URL."
	ActivityNotice  = "Live activity unavailable; showing sample activity. Configure ETHERSCAN_API_KEY / BASESCAN_API_KEY."
	AddressesNotice = "Some token addresses could not be resolved."
	StaleNotice     = "Upstream unavailable; showing last known data."
)

// FallbackPools returns the sample pools served when no subgraph answers
func FallbackPools() model.PoolsOverview {
	pools := []model.PoolSummary{
		{
			ID:           "rndr-grt-3000",
			Name:         "RNDR/GRT",
			FeeTierBps:   300,
			TVLUSD:       3250000,
			Volume24hUSD: 410000,
			APR:          12.5,
			Chain:        "Ethereum",
		},
		{
			ID:           "fet-ocean-500",
			Name:         "FET/OCEAN",
			FeeTierBps:   50,
			TVLUSD:       1870000,
			Volume24hUSD: 220000,
			APR:          9.1,
			Chain:        "Base",
		},
	}

	return model.PoolsOverview{
		TVLUSD: SumTVL(pools),
		Pools:  pools,
		Notice: PoolsNotice,
	}
}

// SumTVL adds up the TVL of pools
func SumTVL(pools []model.PoolSummary) float64 {
	var total float64
	for _, p := range pools {
		total += p.TVLUSD
	}
	return total
}

// FallbackActivity returns the sample activity served when no explorer answers
func FallbackActivity(address string, now time.Time) model.ActivityResponse {
	ts := now.Unix()
	return model.ActivityResponse{
		Address: address,
		Items: []model.ActivityItem{
			{
				Type:      model.TxTypeSwap,
				Hash:      "0xswap1",
				Timestamp: ts - 3600,
				Summary:   "Swapped 100 RNDR for 99 GRT",
				Status:    model.StatusSuccess,
				Chain:     "Ethereum",
			},
			{
				Type:      model.TxTypeApprove,
				Hash:      "0xapprove1",
				Timestamp: ts - 7200,
				Summary:   "Approved RNDR for trading",
				Status:    model.StatusSuccess,
				Chain:     "Ethereum",
			},
			{
				Type:      model.TxTypeSwap,
				Hash:      "0xswap2",
				Timestamp: ts - 86000,
				Summary:   "Swapped 50 FET for 49 OCEAN",
				Status:    model.StatusFailed,
				Chain:     "Base",
			},
		},
		Notice: ActivityNotice,
	}
}

// FallbackMarkets is served when the price feed is down and nothing is cached
func FallbackMarkets() []model.MarketRow {
	return []model.MarketRow{}
}

// FallbackAddresses is served for a token whose platforms could not be resolved
func FallbackAddresses(id string) model.TokenAddresses {
	return model.TokenAddresses{ID: id, Addresses: map[string]string{}}
}

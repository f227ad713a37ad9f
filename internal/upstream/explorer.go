package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aamijar/tokenomics/internal/model"
)

// Default Etherscan-family API bases
const (
	DefaultEtherscanBase = "https://api.etherscan.io/api"
	DefaultBasescanBase  = "https://api.basescan.org/api"
)

const (
	approveMethodID = "0x095ea7b3"
	activityLimit   = 25
	weiDecimals     = 18
)

// Explorer reads account transactions from an Etherscan-compatible API
type Explorer struct {
	chain   string
	baseURL string
	apiKey  string
	http    *httpClient
}

// NewExplorer creates an explorer client; an empty apiKey yields ErrNotConfigured on use
func NewExplorer(chain, baseURL, apiKey string, timeout time.Duration) *Explorer {
	return &Explorer{
		chain:   chain,
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    newHTTPClient(timeout),
	}
}

// Chain returns the chain this explorer indexes
func (e *Explorer) Chain() string {
	return e.chain
}

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type explorerTx struct {
	Hash            string `json:"hash"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	IsError         string `json:"isError"`
	TxReceiptStatus string `json:"txreceipt_status"`
	Input           string `json:"input"`
	MethodID        string `json:"methodId"`
	FunctionName    string `json:"functionName"`
}

// Transactions returns the most recent normal transactions of address
func (e *Explorer) Transactions(ctx context.Context, address string) ([]model.ActivityItem, error) {
	if e.apiKey == "" || e.baseURL == "" {
		return nil, fmt.Errorf("%s explorer: %w", e.chain, ErrNotConfigured)
	}

	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "txlist")
	query.Set("address", address)
	query.Set("page", "1")
	query.Set("offset", strconv.Itoa(activityLimit))
	query.Set("sort", "desc")
	query.Set("apikey", e.apiKey)

	var resp explorerResponse
	if err := e.http.getJSON(ctx, e.baseURL, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("%s explorer: %w", e.chain, err)
	}

	if resp.Status != "1" {
		if strings.HasPrefix(resp.Message, "No transactions found") {
			return []model.ActivityItem{}, nil
		}
		var reason string
		_ = json.Unmarshal(resp.Result, &reason)
		return nil, fmt.Errorf("%s explorer: %s: %s", e.chain, resp.Message, reason)
	}

	var txs []explorerTx
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("%s explorer: error decoding result: %w", e.chain, err)
	}

	items := make([]model.ActivityItem, 0, len(txs))
	for _, tx := range txs {
		items = append(items, e.toActivity(tx))
	}
	return items, nil
}

func (e *Explorer) toActivity(tx explorerTx) model.ActivityItem {
	timestamp, _ := strconv.ParseInt(tx.TimeStamp, 10, 64)

	// txlist only returns mined transactions, so nothing here is pending
	status := model.StatusSuccess
	if tx.IsError == "1" || tx.TxReceiptStatus == "0" {
		status = model.StatusFailed
	}

	methodID := strings.ToLower(tx.MethodID)
	if methodID == "" && len(tx.Input) >= len(approveMethodID) {
		methodID = strings.ToLower(tx.Input[:len(approveMethodID)])
	}

	item := model.ActivityItem{
		Hash:      tx.Hash,
		Timestamp: timestamp,
		Status:    status,
		Chain:     e.chain,
	}

	fn := strings.ToLower(tx.FunctionName)
	switch {
	case methodID == approveMethodID:
		item.Type = model.TxTypeApprove
		item.Summary = "Approved token spending on " + shortAddress(tx.To)
	case strings.Contains(fn, "swap"):
		item.Type = model.TxTypeSwap
		item.Summary = "Swapped via " + shortAddress(tx.To)
	default:
		item.Type = "transfer"
		item.Summary = fmt.Sprintf("Sent %s ETH to %s", weiToEther(tx.Value), shortAddress(tx.To))
	}
	return item
}

func weiToEther(wei string) string {
	return parseDecimal(wei).Shift(-weiDecimals).Round(6).String()
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

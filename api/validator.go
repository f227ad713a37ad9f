package api

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/aamijar/tokenomics/internal/model"
)

// Request defaults and bounds
const (
	DefaultChainID     int64 = 1
	DefaultSlippageBps       = 50
	MinSlippageBps           = 1
	MaxSlippageBps           = 5000
	maxInputLength           = 256
)

// Issue is one field-level validation failure
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every issue found in a request
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Issues = append(e.Issues, Issue{Field: field, Message: message})
}

// err returns nil when no issue was recorded
func (e *ValidationError) err() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

func invalidBody(err error) error {
	return &ValidationError{Issues: []Issue{{Field: "body", Message: "invalid JSON: " + err.Error()}}}
}

// FlexInt accepts a JSON number or a numeric string. Parsing is left to the
// validator so a bad value is reported against its field.
type FlexInt struct {
	raw string
	set bool
}

// NewFlexInt wraps an integer
func NewFlexInt(v int64) FlexInt {
	return FlexInt{raw: strconv.FormatInt(v, 10), set: true}
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	f.set = true

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.raw = s
		return nil
	}
	f.raw = string(b)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(f.raw, 10, 64); err == nil {
		return []byte(f.raw), nil
	}
	return json.Marshal(f.raw)
}

// ApproveRequest is the body of POST /api/approve
type ApproveRequest struct {
	Token   string  `json:"token"`
	Spender string  `json:"spender"`
	Amount  string  `json:"amount"`
	ChainID FlexInt `json:"chainId"`
	From    string  `json:"from"`
}

// SwapRequest is the body of POST /api/swap
type SwapRequest struct {
	FromToken    string  `json:"fromToken"`
	ToToken      string  `json:"toToken"`
	Amount       string  `json:"amount"`
	MinAmountOut string  `json:"minAmountOut"`
	ChainID      FlexInt `json:"chainId"`
	From         string  `json:"from"`
	SlippageBps  FlexInt `json:"slippageBps"`
}

// Validator handles validation logic separate from HTTP concerns
type Validator struct {
	amountRegex *regexp.Regexp
}

var (
	validatorInstance *Validator
	validatorOnce     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{
			amountRegex: regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`),
		}
	})
	return validatorInstance
}

// ValidatePricesRequest parses the ids list. An empty list selects every supported token.
func (v *Validator) ValidatePricesRequest(ids string) []string {
	return v.parseIDs(ids)
}

// ValidateAddressesRequest parses the ids list, which must not be empty
func (v *Validator) ValidateAddressesRequest(ids string) ([]string, error) {
	parsed := v.parseIDs(ids)
	if len(parsed) == 0 {
		return nil, &ValidationError{Issues: []Issue{{Field: "ids", Message: "at least one token id is required"}}}
	}
	return parsed, nil
}

// ValidateQuoteRequest validates and sanitizes the query of GET /api/quotes
func (v *Validator) ValidateQuoteRequest(fromToken, toToken, amount, chainID string) (model.QuoteParams, error) {
	verr := &ValidationError{}

	params := model.QuoteParams{
		FromToken: v.requireToken(verr, "fromToken", fromToken),
		ToToken:   v.requireToken(verr, "toToken", toToken),
		Amount:    v.requireAmount(verr, "amount", amount),
		ChainID:   v.chainID(verr, v.sanitizeInput(chainID), chainID != ""),
	}

	return params, verr.err()
}

// ValidateApproveRequest validates the body of POST /api/approve
func (v *Validator) ValidateApproveRequest(req ApproveRequest) (model.ApproveParams, error) {
	verr := &ValidationError{}
	spender, _ := v.bounded(verr, "spender", req.Spender)

	params := model.ApproveParams{
		Token:   v.requireToken(verr, "token", req.Token),
		Spender: spender,
		Amount:  v.requireAmount(verr, "amount", req.Amount),
		ChainID: v.chainID(verr, v.sanitizeInput(req.ChainID.raw), req.ChainID.set),
		From:    v.requireFrom(verr, req.From),
	}

	return params, verr.err()
}

// ValidateSwapRequest validates the body of POST /api/swap
func (v *Validator) ValidateSwapRequest(req SwapRequest) (model.SwapRequest, error) {
	verr := &ValidationError{}

	params := model.SwapRequest{
		FromToken:   v.requireToken(verr, "fromToken", req.FromToken),
		ToToken:     v.requireToken(verr, "toToken", req.ToToken),
		Amount:      v.requireAmount(verr, "amount", req.Amount),
		ChainID:     v.chainID(verr, v.sanitizeInput(req.ChainID.raw), req.ChainID.set),
		From:        v.requireFrom(verr, req.From),
		SlippageBps: v.slippage(verr, v.sanitizeInput(req.SlippageBps.raw), req.SlippageBps.set),
	}

	if minOut, ok := v.bounded(verr, "minAmountOut", req.MinAmountOut); ok && minOut != "" {
		if !v.amountRegex.MatchString(minOut) {
			verr.add("minAmountOut", "must be a non-negative decimal number")
		}
		params.MinAmountOut = minOut
	}

	return params, verr.err()
}

// ValidateActivityRequest validates the address path parameter
func (v *Validator) ValidateActivityRequest(address string) (string, error) {
	verr := &ValidationError{}
	clean, ok := v.bounded(verr, "address", address)
	if ok && clean == "" {
		verr.add("address", "address is required")
	}
	return clean, verr.err()
}

func (v *Validator) parseIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(v.sanitizeInput(raw), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// bounded strips input and rejects it when it is longer than maxInputLength
// characters. Values are never shortened.
func (v *Validator) bounded(verr *ValidationError, field, value string) (string, bool) {
	clean := v.stripInput(value)
	if utf8.RuneCountInString(clean) > maxInputLength {
		verr.add(field, fmt.Sprintf("must be at most %d characters", maxInputLength))
		return "", false
	}
	return clean, true
}

func (v *Validator) requireToken(verr *ValidationError, field, value string) string {
	clean, ok := v.bounded(verr, field, value)
	if ok && clean == "" {
		verr.add(field, "token identifier is required")
	}
	return clean
}

func (v *Validator) requireAmount(verr *ValidationError, field, value string) string {
	clean, ok := v.bounded(verr, field, value)
	switch {
	case !ok:
	case clean == "":
		verr.add(field, "amount is required")
	case !v.amountRegex.MatchString(clean):
		verr.add(field, "must be a non-negative decimal number")
	}
	return clean
}

func (v *Validator) requireFrom(verr *ValidationError, value string) string {
	clean, ok := v.bounded(verr, "from", value)
	if ok && clean == "" {
		verr.add("from", "sender address is required")
	}
	return clean
}

// integer parses a JSON number or numeric string such as "8453", 1.0 or 1e0
func integer(raw string) (int64, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	// bound the exponent before any big.Int work; int64 has 19 digits
	if exp := d.Exponent(); exp > 18 || exp < -maxInputLength {
		return 0, false
	}
	if !d.IsInteger() {
		return 0, false
	}
	n := d.BigInt()
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

func (v *Validator) chainID(verr *ValidationError, raw string, set bool) int64 {
	if !set || raw == "" {
		return DefaultChainID
	}
	id, ok := integer(raw)
	if !ok || id <= 0 {
		verr.add("chainId", "must be a positive integer")
		return 0
	}
	return id
}

func (v *Validator) slippage(verr *ValidationError, raw string, set bool) int {
	if !set || raw == "" {
		return DefaultSlippageBps
	}
	n, ok := integer(raw)
	if !ok {
		verr.add("slippageBps", "must be an integer")
		return 0
	}
	if n < MinSlippageBps || n > MaxSlippageBps {
		verr.add("slippageBps", fmt.Sprintf("must be between %d and %d", MinSlippageBps, MaxSlippageBps))
		return 0
	}
	return int(n)
}

// stripInput removes potentially dangerous characters and trims whitespace
func (v *Validator) stripInput(input string) string {
	input = strings.TrimSpace(input)

	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, input)
}

// sanitizeInput strips input and caps it at maxInputLength characters. Only
// id lists and numeric fields go through it; a capped number fails to parse.
func (v *Validator) sanitizeInput(input string) string {
	input = v.stripInput(input)

	// Limit length to prevent DoS
	if utf8.RuneCountInString(input) > maxInputLength {
		input = string([]rune(input)[:maxInputLength])
	}

	return input
}

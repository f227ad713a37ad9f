package api

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValidatorSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestSanitizeInput(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trims whitespace", input: "  USDC \n", expected: "USDC"},
		{name: "drops null bytes", input: "US\x00DC", expected: "USDC"},
		{name: "drops control chars", input: "US\x07DC", expected: "USDC"},
		{name: "caps length", input: strings.Repeat("a", 300), expected: strings.Repeat("a", maxInputLength)},
		{name: "caps on rune boundary", input: strings.Repeat("a", 255) + "éé", expected: strings.Repeat("a", 255) + "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.sanitizeInput(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestValidatePricesRequest(t *testing.T) {
	v := GetValidator()

	assert.Equal(t, []string{"render-token", "the-graph"}, v.ValidatePricesRequest(" render-token, the-graph ,,"))
	assert.Nil(t, v.ValidatePricesRequest(""))
}

func TestValidateQuoteRequest_AmountPattern(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		amount string
		valid  bool
	}{
		{"100", true},
		{"0", true},
		{"0.5", true},
		{"12.000001", true},
		{".5", false},
		{"5.", false},
		{"1e18", false},
		{"-3", false},
		{"1,000", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			_, err := v.ValidateQuoteRequest("USDC", "ETH", tt.amount, "")
			assert.Equal(t, tt.valid, err == nil, "amount %q", tt.amount)
		})
	}
}

func TestValidateQuoteRequest_CollectsIssues(t *testing.T) {
	_, err := GetValidator().ValidateQuoteRequest("", "", "", "0")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Issues, 4)
	assert.Contains(t, err.Error(), "chainId: must be a positive integer")
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FlexInt
	}{
		{name: "number", input: `{"chainId":8453}`, expected: FlexInt{raw: "8453", set: true}},
		{name: "string", input: `{"chainId":"8453"}`, expected: FlexInt{raw: "8453", set: true}},
		{name: "null", input: `{"chainId":null}`, expected: FlexInt{}},
		{name: "absent", input: `{}`, expected: FlexInt{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ApproveRequest
			require.NoError(t, json.Unmarshal([]byte(tt.input), &req))
			assert.Equal(t, tt.expected, req.ChainID)
		})
	}

	raw, err := json.Marshal(SwapRequest{ChainID: NewFlexInt(1), SlippageBps: FlexInt{raw: "fast", set: true}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"chainId":1`)
	assert.Contains(t, string(raw), `"slippageBps":"fast"`)
}

func TestValidateSwapRequest_Defaults(t *testing.T) {
	params, err := GetValidator().ValidateSwapRequest(SwapRequest{
		FromToken: "USDC", ToToken: "ETH", Amount: "1", From: "0xfrom",
	})

	require.NoError(t, err)
	assert.Equal(t, DefaultChainID, params.ChainID)
	assert.Equal(t, DefaultSlippageBps, params.SlippageBps)
	assert.Empty(t, params.MinAmountOut)
}

func TestValidateActivityRequest(t *testing.T) {
	v := GetValidator()

	address, err := v.ValidateActivityRequest(" 0xabc ")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", address)

	_, err = v.ValidateActivityRequest("   ")
	assert.Error(t, err)
}

func TestValidateQuoteRequest_RejectsOverlongAmount(t *testing.T) {
	amount := "1" + strings.Repeat("0", 300)

	_, err := GetValidator().ValidateQuoteRequest("USDC", "ETH", amount, "")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, Issue{Field: "amount", Message: "must be at most 256 characters"}, verr.Issues[0])
}

func TestValidateQuoteRequest_TokenLengthCountsCharacters(t *testing.T) {
	v := GetValidator()

	// 256 characters but more than 256 bytes
	atLimit := strings.Repeat("a", 255) + "é"
	params, err := v.ValidateQuoteRequest(atLimit, "ETH", "1", "")
	require.NoError(t, err)
	assert.Equal(t, atLimit, params.FromToken)

	_, err = v.ValidateQuoteRequest(atLimit+"é", "ETH", "1", "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "fromToken", verr.Issues[0].Field)
}

func TestValidateSwapRequest_NeverTruncates(t *testing.T) {
	long := "1" + strings.Repeat("0", 300)

	_, err := GetValidator().ValidateSwapRequest(SwapRequest{
		FromToken: "USDC", ToToken: "ETH", Amount: long, MinAmountOut: long, From: "0xfrom",
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	assert.ElementsMatch(t, []string{"amount", "minAmountOut"}, fields)
}

func TestValidateApproveRequest_ChainIDForms(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name     string
		body     string
		expected int64
		valid    bool
	}{
		{name: "integer", body: `8453`, expected: 8453, valid: true},
		{name: "string", body: `"8453"`, expected: 8453, valid: true},
		{name: "trailing zero", body: `1.0`, expected: 1, valid: true},
		{name: "exponent", body: `1e0`, expected: 1, valid: true},
		{name: "fraction", body: `1.5`, valid: false},
		{name: "zero", body: `0`, valid: false},
		{name: "negative", body: `-1`, valid: false},
		{name: "huge exponent", body: `1e999999999`, valid: false},
		{name: "overflow", body: `"99999999999999999999"`, valid: false},
		{name: "text", body: `"mainnet"`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ApproveRequest
			body := `{"token":"0xtoken","spender":"0xspender","amount":"1","from":"0xfrom","chainId":` + tt.body + `}`
			require.NoError(t, json.Unmarshal([]byte(body), &req))

			params, err := v.ValidateApproveRequest(req)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, params.ChainID)
		})
	}
}

func TestValidateSwapRequest_SlippageForms(t *testing.T) {
	v := GetValidator()
	base := SwapRequest{FromToken: "USDC", ToToken: "ETH", Amount: "1", From: "0xfrom"}

	base.SlippageBps = FlexInt{raw: "1e2", set: true}
	params, err := v.ValidateSwapRequest(base)
	require.NoError(t, err)
	assert.Equal(t, 100, params.SlippageBps)

	base.SlippageBps = FlexInt{raw: "6000", set: true}
	_, err = v.ValidateSwapRequest(base)
	assert.ErrorContains(t, err, "slippageBps: must be between 1 and 5000")
}

package service

import (
	"context"

	"github.com/aamijar/tokenomics/internal/model"
)

var defaultTokens = []model.Token{
	{ID: "render-token", Symbol: "RNDR", Name: "Render"},
	{ID: "the-graph", Symbol: "GRT", Name: "The Graph"},
	{ID: "fetch-ai", Symbol: "FET", Name: "Fetch.ai"},
	{ID: "singularitynet", Symbol: "AGIX", Name: "SingularityNET"},
	{ID: "akash-network", Symbol: "AKT", Name: "Akash"},
	{ID: "bittensor", Symbol: "TAO", Name: "Bittensor"},
	{ID: "cyber", Symbol: "CYBER", Name: "Cyber"},
	{ID: "ocean-protocol", Symbol: "OCEAN", Name: "Ocean"},
}

// TokenService serves the static list of supported tokens
type TokenService struct {
	tokens []model.Token
}

// NewTokenService creates a token service over the default AI token list
func NewTokenService() *TokenService {
	return &TokenService{tokens: defaultTokens}
}

// List returns a copy of the supported tokens
func (ts *TokenService) List(_ context.Context) []model.Token {
	return append([]model.Token(nil), ts.tokens...)
}

// IDs returns the identifiers of the supported tokens
func (ts *TokenService) IDs() []string {
	ids := make([]string, 0, len(ts.tokens))
	for _, t := range ts.tokens {
		ids = append(ids, t.ID)
	}
	return ids
}

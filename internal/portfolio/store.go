package portfolio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aamijar/tokenomics/internal/model"
)

var (
	ErrUnknownHolding = errors.New("unknown holding")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Store keeps the user-editable holdings of the mock portfolio
type Store struct {
	mu       sync.RWMutex
	holdings []model.Holding
}

// NewStore creates a store seeded with the default holdings
func NewStore() *Store {
	return NewStoreWith([]model.Holding{
		{ID: "render-token", Symbol: "RNDR", Name: "Render", Amount: 120},
		{ID: "the-graph", Symbol: "GRT", Name: "The Graph", Amount: 1000},
		{ID: "fetch-ai", Symbol: "FET", Name: "Fetch.ai", Amount: 800},
	})
}

// NewStoreWith creates a store holding a copy of holdings
func NewStoreWith(holdings []model.Holding) *Store {
	return &Store{holdings: append([]model.Holding(nil), holdings...)}
}

// List returns a copy of the holdings in insertion order
func (s *Store) List() []model.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Holding(nil), s.holdings...)
}

// IDs returns the token ids held
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.holdings))
	for _, h := range s.holdings {
		ids = append(ids, h.ID)
	}
	return ids
}

// Set changes the amount held of id
func (s *Store) Set(id string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("set %s: %w", id, ErrNegativeAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.holdings {
		if s.holdings[i].ID == id {
			s.holdings[i].Amount = amount
			return nil
		}
	}
	return fmt.Errorf("set %s: %w", id, ErrUnknownHolding)
}

// Position is a holding priced against the market
type Position struct {
	model.Holding
	Price  decimal.Decimal
	Value  decimal.Decimal
	Priced bool
}

// Valuation is the priced portfolio
type Valuation struct {
	Positions []Position
	Total     decimal.Decimal
}

// Value prices every holding from rows. Holdings without a market row are
// valued at zero and reported with Priced false.
func (s *Store) Value(rows []model.MarketRow) Valuation {
	prices := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		prices[r.ID] = decimal.NewFromFloat(r.Price)
	}

	v := Valuation{Total: decimal.Zero}
	for _, h := range s.List() {
		price, ok := prices[h.ID]
		if !ok {
			price = decimal.Zero
		}
		value := price.Mul(decimal.NewFromFloat(h.Amount))

		v.Positions = append(v.Positions, Position{Holding: h, Price: price, Value: value, Priced: ok})
		v.Total = v.Total.Add(value)
	}
	return v
}

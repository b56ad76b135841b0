package quotes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"lv-papertrade/internal/model"
)

// Fixed serves prices from memory. It backs offline development
// (QUOTE_FIXED_PRICES) and tests; prices can be moved with Set.
type Fixed struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewFixed(prices map[string]decimal.Decimal) *Fixed {
	f := &Fixed{prices: make(map[string]decimal.Decimal, len(prices))}
	for sym, p := range prices {
		f.prices[Normalize(sym)] = p
	}
	return f
}

// ParseFixed reads "AAPL=150,MSFT=301.25".
func ParseFixed(list string) (*Fixed, error) {
	prices := map[string]decimal.Decimal{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		sym, raw, ok := strings.Cut(item, "=")
		if !ok || Normalize(sym) == "" {
			return nil, fmt.Errorf("invalid fixed price %q", item)
		}
		p, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !p.IsPositive() {
			return nil, fmt.Errorf("invalid fixed price %q", item)
		}
		prices[sym] = p
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no fixed prices in %q", list)
	}
	return NewFixed(prices), nil
}

func (f *Fixed) Set(symbol string, price decimal.Decimal) {
	f.mu.Lock()
	f.prices[Normalize(symbol)] = price
	f.mu.Unlock()
}

func (f *Fixed) Lookup(ctx context.Context, symbol string) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}
	f.mu.RLock()
	p, ok := f.prices[Normalize(symbol)]
	f.mu.RUnlock()
	if !ok {
		return model.Quote{}, ErrNotFound
	}
	return model.Quote{Symbol: Normalize(symbol), Price: p}, nil
}

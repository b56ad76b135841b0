// Package quotes looks up live stock prices. Quotes are fetched on every
// call and never cached: a price is only valid at the moment it was read.
package quotes

import (
	"context"
	"errors"
	"strings"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/model"
)

// ErrNotFound is returned by a Provider when the symbol does not exist.
// Any other error is treated as transient.
var ErrNotFound = errors.New("quotes: symbol not found")

type Provider interface {
	Lookup(ctx context.Context, symbol string) (model.Quote, error)
}

// Normalize canonicalises a user supplied ticker.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Resolve looks symbol up and translates provider failures into the
// apperr taxonomy: unknown symbols become UnknownSymbol, everything else
// QuoteUnavailable.
func Resolve(ctx context.Context, p Provider, symbol string) (model.Quote, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return model.Quote{}, apperr.ErrMissingSymbol
	}
	q, err := p.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Quote{}, apperr.Wrap(apperr.ErrUnknownSymbol, err)
		}
		return model.Quote{}, apperr.Wrap(apperr.ErrQuoteUnavailable, err)
	}
	if !q.Price.IsPositive() {
		return model.Quote{}, apperr.Wrap(apperr.ErrUnknownSymbol, ErrNotFound)
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	q.Symbol = Normalize(q.Symbol)
	return q, nil
}

// Package events announces committed trades. Publishing happens after the
// ledger commit and can never undo it.
package events

import (
	"context"
	"errors"

	"lv-papertrade/internal/model"
)

const TypeTrade = "trade"

type Event struct {
	Type string            `json:"type"`
	Data model.Transaction `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, t model.Transaction) error
}

type discard struct{}

func (discard) Publish(context.Context, model.Transaction) error { return nil }

// Discard drops every event.
var Discard Publisher = discard{}

// Fanout delivers to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, t model.Transaction) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

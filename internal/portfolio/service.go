package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/ledger"
	"lv-papertrade/internal/model"
	"lv-papertrade/internal/quotes"
)

// maxQuoteLookups bounds concurrent provider calls while valuing one
// portfolio.
const maxQuoteLookups = 4

type Ledger interface {
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	GetCash(ctx context.Context, userID string) (decimal.Decimal, error)
}

type Service struct {
	ledger Ledger
	quotes quotes.Provider
	logger *zap.Logger
}

func NewService(l Ledger, q quotes.Provider, logger *zap.Logger) *Service {
	return &Service{ledger: l, quotes: q, logger: logger}
}

// Holdings returns the user's positive positions without pricing them.
func (s *Service) Holdings(ctx context.Context, userID string) ([]model.Holding, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	net := Aggregate(txs)
	out := make([]model.Holding, 0, len(net))
	for _, sym := range Held(net) {
		out = append(out, model.Holding{Symbol: sym, Shares: net[sym]})
	}
	return out, nil
}

// Valued prices every holding with a freshly fetched quote. If any quote
// cannot be fetched the whole call fails with QuoteUnavailable.
func (s *Service) Valued(ctx context.Context, userID string) ([]model.Holding, error) {
	holdings, err := s.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxQuoteLookups)
	for i := range holdings {
		h := &holdings[i]
		g.Go(func() error {
			q, err := quotes.Resolve(gctx, s.quotes, h.Symbol)
			if err != nil {
				return apperr.Wrap(apperr.ErrQuoteUnavailable, fmt.Errorf("%s: %w", h.Symbol, err))
			}
			h.Price = q.Price
			h.Value = q.Price.Mul(decimal.NewFromInt(h.Shares))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("portfolio valuation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return holdings, nil
}

// Portfolio is the valued holdings plus cash and net worth.
func (s *Service) Portfolio(ctx context.Context, userID string) (model.Portfolio, error) {
	holdings, err := s.Valued(ctx, userID)
	if err != nil {
		return model.Portfolio{}, err
	}
	cash, err := s.ledger.GetCash(ctx, userID)
	if err != nil {
		return model.Portfolio{}, storeErr(err)
	}
	worth := cash
	for _, h := range holdings {
		worth = worth.Add(h.Value)
	}
	return model.Portfolio{UserID: userID, Holdings: holdings, Cash: cash, NetWorth: worth}, nil
}

func storeErr(err error) error {
	if errors.Is(err, ledger.ErrUnknownUser) {
		return apperr.Wrap(apperr.ErrUnknownUser, err)
	}
	return err
}

// Package trading validates market buy and sell requests against a fresh
// quote, the user's cash and the user's holdings, and commits them to the
// ledger.
package trading

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/events"
	"lv-papertrade/internal/ledger"
	"lv-papertrade/internal/model"
	"lv-papertrade/internal/portfolio"
	"lv-papertrade/internal/quotes"
	"lv-papertrade/internal/types"
)

const defaultRetries = 3

type Executor struct {
	store     ledger.Store
	quotes    quotes.Provider
	publisher events.Publisher
	logger    *zap.Logger
	retries   int
}

func NewExecutor(store ledger.Store, q quotes.Provider, publisher events.Publisher, logger *zap.Logger, retries int) *Executor {
	if publisher == nil {
		publisher = events.Discard
	}
	if retries <= 0 {
		retries = defaultRetries
	}
	return &Executor{store: store, quotes: q, publisher: publisher, logger: logger, retries: retries}
}

// ParseShares accepts a positive base-10 integer.
func ParseShares(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.ErrInvalidShareCount
	}
	return n, nil
}

// Execute runs one market order for userID. Checks run in order and the
// first failure is returned: symbol present, share count valid, symbol
// quotable, then cash (buy) or holdings (sell). The quote is fetched here,
// never reused from an earlier view. If the commit loses a race with
// another trade by the same user, validation is repeated against the new
// state, so the loser normally fails with the precise precondition error.
func (e *Executor) Execute(ctx context.Context, userID, symbol, shares string, side types.TradeSide) (model.Transaction, error) {
	if side != types.TradeSideBuy && side != types.TradeSideSell {
		return model.Transaction{}, fmt.Errorf("trading: invalid side %q", side)
	}
	symbol = quotes.Normalize(symbol)
	if symbol == "" {
		return model.Transaction{}, e.reject(userID, symbol, side, apperr.ErrMissingSymbol)
	}
	qty, err := ParseShares(shares)
	if err != nil {
		return model.Transaction{}, e.reject(userID, symbol, side, err)
	}

	for attempt := 1; ; attempt++ {
		trade, err := e.validate(ctx, userID, symbol, qty, side)
		if err != nil {
			return model.Transaction{}, e.reject(userID, symbol, side, err)
		}
		t, err := e.store.CommitTrade(ctx, userID, trade, trade.CashDelta())
		switch {
		case err == nil:
			e.committed(ctx, t)
			return t, nil
		case errors.Is(err, ledger.ErrConflict):
			if attempt >= e.retries {
				return model.Transaction{}, e.reject(userID, symbol, side, apperr.Wrap(apperr.ErrStoreConflict, err))
			}
			e.logger.Debug("trade commit conflicted, revalidating",
				zap.String("user_id", userID), zap.String("symbol", symbol), zap.Int("attempt", attempt))
		case errors.Is(err, ledger.ErrUnknownUser):
			return model.Transaction{}, e.reject(userID, symbol, side, apperr.Wrap(apperr.ErrUnknownUser, err))
		default:
			e.logger.Error("trade commit failed", zap.String("user_id", userID), zap.String("symbol", symbol), zap.Error(err))
			return model.Transaction{}, fmt.Errorf("commit trade: %w", err)
		}
	}
}

func (e *Executor) validate(ctx context.Context, userID, symbol string, qty int64, side types.TradeSide) (model.Trade, error) {
	quote, err := quotes.Resolve(ctx, e.quotes, symbol)
	if err != nil {
		return model.Trade{}, err
	}
	trade := model.Trade{
		Symbol: quote.Symbol,
		Shares: qty * side.Sign(),
		Price:  quote.Price.Round(ledger.PriceScale),
	}
	switch side {
	case types.TradeSideBuy:
		cash, err := e.store.GetCash(ctx, userID)
		if err != nil {
			return model.Trade{}, readErr(err)
		}
		cost := trade.Price.Mul(decimal.NewFromInt(qty))
		if cost.GreaterThan(cash) {
			return model.Trade{}, apperr.ErrInsufficientFunds
		}
	case types.TradeSideSell:
		txs, err := e.store.ListTransactions(ctx, userID)
		if err != nil {
			return model.Trade{}, readErr(err)
		}
		held := portfolio.NetShares(txs, trade.Symbol)
		if held <= 0 {
			return model.Trade{}, apperr.ErrNoSuchHolding
		}
		if held < qty {
			return model.Trade{}, apperr.ErrInsufficientShares
		}
	}
	return trade, nil
}

func (e *Executor) committed(ctx context.Context, t model.Transaction) {
	e.logger.Info("trade committed",
		zap.String("user_id", t.UserID),
		zap.String("tx_id", t.ID),
		zap.String("symbol", t.Symbol),
		zap.Int64("shares", t.Shares),
		zap.String("price", t.Price.String()),
	)
	if err := e.publisher.Publish(ctx, t); err != nil {
		e.logger.Warn("trade event not published", zap.String("tx_id", t.ID), zap.Error(err))
	}
}

func (e *Executor) reject(userID, symbol string, side types.TradeSide, err error) error {
	kind, ok := apperr.KindOf(err)
	if !ok {
		e.logger.Error("trade failed", zap.String("user_id", userID), zap.String("symbol", symbol), zap.Error(err))
		return err
	}
	e.logger.Debug("trade rejected",
		zap.String("user_id", userID),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.String("kind", string(kind)),
	)
	return err
}

func readErr(err error) error {
	if errors.Is(err, ledger.ErrUnknownUser) {
		return apperr.Wrap(apperr.ErrUnknownUser, err)
	}
	return fmt.Errorf("read ledger: %w", err)
}

// Package ledger persists the append-only transaction log and the per-user
// cash balance derived from it.
package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"lv-papertrade/internal/model"
)

// PriceScale is the number of fractional digits kept for execution prices
// and cash.
const PriceScale = 4

var (
	// ErrConflict means the commit-time re-check failed because another
	// commit for the same user changed cash or holdings first.
	ErrConflict    = errors.New("ledger: commit conflict")
	ErrUnknownUser = errors.New("ledger: unknown user")
)

type Store interface {
	// ListTransactions returns the user's transactions in commit order.
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	GetCash(ctx context.Context, userID string) (decimal.Decimal, error)
	// CommitTrade appends the transaction and applies cashDelta in one
	// atomic step. Cash may not go negative and a sell may not exceed the
	// shares held at commit time; either violation returns ErrConflict and
	// leaves the ledger untouched.
	CommitTrade(ctx context.Context, userID string, trade model.Trade, cashDelta decimal.Decimal) (model.Transaction, error)
}

// Auditable stores also expose each user's opening balance so the cash
// column can be re-derived from the log.
type Auditable interface {
	Store
	StartingCash(ctx context.Context, userID string) (decimal.Decimal, error)
}

func checkCommit(cash, cashDelta decimal.Decimal, held int64, trade model.Trade) error {
	if trade.Shares == 0 || !trade.Price.IsPositive() {
		return errors.New("ledger: empty trade")
	}
	if cash.Add(cashDelta).IsNegative() {
		return ErrConflict
	}
	if trade.Shares < 0 && held+trade.Shares < 0 {
		return ErrConflict
	}
	return nil
}

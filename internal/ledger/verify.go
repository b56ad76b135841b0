package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"lv-papertrade/internal/model"
)

// IntegrityError points at the first transaction where the log stops being
// consistent.
type IntegrityError struct {
	Sequence int64
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity: sequence %d: %s", e.Sequence, e.Reason)
}

// Replay walks txs from genesis and returns the cash they imply. It fails
// on a broken hash link, a gap in sequence numbers, a timestamp going
// backwards, a sell exceeding the shares held or cash dipping below zero.
func Replay(startingCash decimal.Decimal, txs []model.Transaction) (decimal.Decimal, error) {
	cash := startingCash
	held := map[string]int64{}
	var prev model.Transaction
	for i, t := range txs {
		switch {
		case t.Sequence != prev.Sequence+1:
			return cash, &IntegrityError{Sequence: t.Sequence, Reason: fmt.Sprintf("expected sequence %d", prev.Sequence+1)}
		case t.PrevHash != prev.Hash:
			return cash, &IntegrityError{Sequence: t.Sequence, Reason: "previous hash mismatch"}
		case hashOf(t) != t.Hash:
			return cash, &IntegrityError{Sequence: t.Sequence, Reason: "hash mismatch"}
		case i > 0 && t.CreatedAt.Before(prev.CreatedAt):
			return cash, &IntegrityError{Sequence: t.Sequence, Reason: "timestamp before predecessor"}
		}
		held[t.Symbol] += t.Shares
		if held[t.Symbol] < 0 {
			return cash, &IntegrityError{Sequence: t.Sequence, Reason: "sold more " + t.Symbol + " than held"}
		}
		cash = cash.Add(t.Amount())
		if cash.IsNegative() {
			return cash, &IntegrityError{Sequence: t.Sequence, Reason: "cash below zero"}
		}
		prev = t
	}
	return cash, nil
}

type Report struct {
	UserID       string          `json:"user_id"`
	Transactions int             `json:"transactions"`
	StartingCash decimal.Decimal `json:"starting_cash"`
	StoredCash   decimal.Decimal `json:"stored_cash"`
	DerivedCash  decimal.Decimal `json:"derived_cash"`
}

// Verify replays a user's log and checks the stored cash against it.
func Verify(ctx context.Context, s Auditable, userID string) (Report, error) {
	r := Report{UserID: userID}
	var err error
	if r.StartingCash, err = s.StartingCash(ctx, userID); err != nil {
		return r, err
	}
	txs, err := s.ListTransactions(ctx, userID)
	if err != nil {
		return r, err
	}
	r.Transactions = len(txs)
	if r.StoredCash, err = s.GetCash(ctx, userID); err != nil {
		return r, err
	}
	if r.DerivedCash, err = Replay(r.StartingCash, txs); err != nil {
		return r, err
	}
	if !r.DerivedCash.Equal(r.StoredCash) {
		var last int64
		if len(txs) > 0 {
			last = txs[len(txs)-1].Sequence
		}
		return r, &IntegrityError{Sequence: last, Reason: fmt.Sprintf("stored cash %s differs from derived %s", r.StoredCash, r.DerivedCash)}
	}
	return r, nil
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Cash      decimal.Decimal `json:"cash"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transaction is one committed trade. Shares are signed: positive for buys,
// negative for sells. Rows are never updated after insert.
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Sequence  int64           `json:"sequence"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	PrevHash  string          `json:"prev_hash,omitempty"`
	Hash      string          `json:"hash"`
	CreatedAt time.Time       `json:"created_at"`
}

// Amount is the signed cash effect of the transaction on the owner's balance.
func (t Transaction) Amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares)).Neg()
}

// Trade is a validated, not yet committed, transaction.
type Trade struct {
	Symbol string
	Shares int64
	Price  decimal.Decimal
}

// CashDelta is the change in cash that committing the trade applies.
func (t Trade) CashDelta() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares)).Neg()
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lv-papertrade/internal/model"
)

type PGStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, now: time.Now}
}

func (s *PGStore) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		select id, user_id, sequence, symbol, shares, price,
			coalesce(encode(prev_hash, 'hex'), ''), encode(hash, 'hex'), created_at
		from transactions
		where user_id = $1
		order by sequence asc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Sequence, &t.Symbol, &t.Shares, &t.Price, &t.PrevHash, &t.Hash, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PGStore) GetCash(ctx context.Context, userID string) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := s.pool.QueryRow(ctx, "select cash from users where id = $1", userID).Scan(&cash)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrUnknownUser
	}
	return cash, err
}

func (s *PGStore) StartingCash(ctx context.Context, userID string) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := s.pool.QueryRow(ctx, "select starting_cash from users where id = $1", userID).Scan(&cash)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrUnknownUser
	}
	return cash, err
}

// CommitTrade locks the user row, re-checks cash and holdings, then inserts
// the transaction and updates cash in one serializable transaction.
func (s *PGStore) CommitTrade(ctx context.Context, userID string, trade model.Trade, cashDelta decimal.Decimal) (model.Transaction, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return model.Transaction{}, err
	}
	defer tx.Rollback(ctx)

	t, err := s.commit(ctx, tx, userID, trade, cashDelta)
	if err != nil {
		return model.Transaction{}, classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Transaction{}, classify(err)
	}
	return t, nil
}

func (s *PGStore) commit(ctx context.Context, tx pgx.Tx, userID string, trade model.Trade, cashDelta decimal.Decimal) (model.Transaction, error) {
	var cash decimal.Decimal
	err := tx.QueryRow(ctx, "select cash from users where id = $1 for update", userID).Scan(&cash)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Transaction{}, ErrUnknownUser
	}
	if err != nil {
		return model.Transaction{}, err
	}
	var held int64
	err = tx.QueryRow(ctx, "select coalesce(sum(shares), 0)::bigint from transactions where user_id = $1 and symbol = $2", userID, trade.Symbol).Scan(&held)
	if err != nil {
		return model.Transaction{}, err
	}
	if err := checkCommit(cash, cashDelta, held, trade); err != nil {
		return model.Transaction{}, err
	}

	var last model.Transaction
	err = tx.QueryRow(ctx, `
		select sequence, encode(hash, 'hex'), created_at
		from transactions
		where user_id = $1
		order by sequence desc
		limit 1
	`, userID).Scan(&last.Sequence, &last.Hash, &last.CreatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Transaction{}, err
	}
	t := model.Transaction{
		UserID:    userID,
		Sequence:  last.Sequence + 1,
		Symbol:    trade.Symbol,
		Shares:    trade.Shares,
		Price:     trade.Price.Round(PriceScale),
		PrevHash:  last.Hash,
		CreatedAt: commitTime(s.now(), last.CreatedAt.UTC()),
	}
	t.Hash = hashOf(t)
	err = tx.QueryRow(ctx, `
		insert into transactions (user_id, sequence, symbol, shares, price, prev_hash, hash, created_at)
		values ($1, $2, $3, $4, $5, decode(nullif($6, ''), 'hex'), decode($7, 'hex'), $8)
		returning id
	`, userID, t.Sequence, t.Symbol, t.Shares, t.Price, t.PrevHash, t.Hash, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return model.Transaction{}, err
	}
	if _, err := tx.Exec(ctx, "update users set cash = cash + $1 where id = $2", cashDelta, userID); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// classify folds serialization failures and the cash check constraint into
// ErrConflict so callers can re-validate and retry.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23514":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}

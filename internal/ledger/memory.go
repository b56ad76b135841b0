package ledger

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"lv-papertrade/internal/model"
)

// MemStore is a mutex guarded Store. Commits for all users are serialised
// by one lock, which trivially gives the per-user atomicity Store requires.
type MemStore struct {
	mu     sync.Mutex
	users  map[string]*memAccount
	nextID int64
	now    func() time.Time
}

type memAccount struct {
	starting decimal.Decimal
	cash     decimal.Decimal
	txs      []model.Transaction
}

func NewMemStore() *MemStore {
	return &MemStore{users: map[string]*memAccount{}, now: time.Now}
}

// AddUser opens an account with cash as its starting balance.
func (s *MemStore) AddUser(userID string, cash decimal.Decimal) {
	s.mu.Lock()
	s.users[userID] = &memAccount{starting: cash, cash: cash}
	s.mu.Unlock()
}

func (s *MemStore) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[userID]
	if !ok {
		return nil, ErrUnknownUser
	}
	out := make([]model.Transaction, len(acc.txs))
	copy(out, acc.txs)
	return out, nil
}

func (s *MemStore) GetCash(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[userID]
	if !ok {
		return decimal.Zero, ErrUnknownUser
	}
	return acc.cash, nil
}

func (s *MemStore) StartingCash(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[userID]
	if !ok {
		return decimal.Zero, ErrUnknownUser
	}
	return acc.starting, nil
}

func (s *MemStore) CommitTrade(ctx context.Context, userID string, trade model.Trade, cashDelta decimal.Decimal) (model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return model.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[userID]
	if !ok {
		return model.Transaction{}, ErrUnknownUser
	}
	var held int64
	for _, t := range acc.txs {
		if t.Symbol == trade.Symbol {
			held += t.Shares
		}
	}
	if err := checkCommit(acc.cash, cashDelta, held, trade); err != nil {
		return model.Transaction{}, err
	}
	var last model.Transaction
	if n := len(acc.txs); n > 0 {
		last = acc.txs[n-1]
	}
	s.nextID++
	t := model.Transaction{
		ID:        strconv.FormatInt(s.nextID, 10),
		UserID:    userID,
		Sequence:  last.Sequence + 1,
		Symbol:    trade.Symbol,
		Shares:    trade.Shares,
		Price:     trade.Price,
		PrevHash:  last.Hash,
		CreatedAt: commitTime(s.now(), last.CreatedAt),
	}
	t.Hash = hashOf(t)
	acc.txs = append(acc.txs, t)
	acc.cash = acc.cash.Add(cashDelta)
	return t, nil
}

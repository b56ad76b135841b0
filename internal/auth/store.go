package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lv-papertrade/internal/model"
)

var (
	ErrDuplicateUsername = errors.New("auth: duplicate username")
	ErrNoUser            = errors.New("auth: user not found")
)

type Credentials struct {
	UserID       string
	PasswordHash string
}

type UserStore interface {
	// CreateUser opens an account funded with startingCash. It returns
	// ErrDuplicateUsername when the name is already registered.
	CreateUser(ctx context.Context, username, passwordHash string, startingCash decimal.Decimal) (string, error)
	FindCredentials(ctx context.Context, username string) (Credentials, error)
	GetUser(ctx context.Context, userID string) (model.User, error)
}

type PGUserStore struct {
	pool *pgxpool.Pool
}

func NewPGUserStore(pool *pgxpool.Pool) *PGUserStore {
	return &PGUserStore{pool: pool}
}

func (s *PGUserStore) CreateUser(ctx context.Context, username, passwordHash string, startingCash decimal.Decimal) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		insert into users (username, password_hash, starting_cash, cash)
		values ($1, $2, $3, $3)
		returning id
	`, username, passwordHash, startingCash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicateUsername
		}
		return "", err
	}
	return id, nil
}

func (s *PGUserStore) FindCredentials(ctx context.Context, username string) (Credentials, error) {
	var c Credentials
	err := s.pool.QueryRow(ctx, "select id, password_hash from users where username = $1", username).Scan(&c.UserID, &c.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrNoUser
	}
	return c, err
}

func (s *PGUserStore) GetUser(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, `
		select id, username, cash, created_at
		from users
		where id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.Cash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNoUser
	}
	return u, err
}

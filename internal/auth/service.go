// Package auth registers users, checks their passwords and issues the
// bearer tokens that identify them on every other endpoint.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/model"
)

type Service struct {
	users        UserStore
	issuer       string
	secret       []byte
	ttl          time.Duration
	startingCash decimal.Decimal
	cost         int
	now          func() time.Time
}

func NewService(users UserStore, issuer string, secret []byte, ttl time.Duration, startingCash decimal.Decimal) *Service {
	return &Service{
		users:        users,
		issuer:       issuer,
		secret:       secret,
		ttl:          ttl,
		startingCash: startingCash,
		cost:         bcrypt.DefaultCost,
		now:          time.Now,
	}
}

// Register creates a funded account. Checks run in the order the fields
// appear on the form.
func (s *Service) Register(ctx context.Context, username, password, confirmation string) (string, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return "", apperr.ErrMissingUsername
	case password == "":
		return "", apperr.ErrMissingPassword
	case confirmation == "":
		return "", apperr.ErrMissingConfirmation
	case password != confirmation:
		return "", apperr.ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	id, err := s.users.CreateUser(ctx, username, string(hash), s.startingCash)
	if errors.Is(err, ErrDuplicateUsername) {
		return "", apperr.Wrap(apperr.ErrUsernameTaken, err)
	}
	return id, err
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperr.ErrMissingUsername
	}
	if password == "" {
		return "", apperr.ErrMissingPassword
	}
	creds, err := s.users.FindCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			return "", apperr.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", apperr.ErrInvalidCredentials
	}
	return s.signToken(creds.UserID)
}

func (s *Service) signToken(userID string) (string, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) ParseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Issuer != s.issuer {
		return "", errors.New("invalid issuer")
	}
	if claims.Subject == "" {
		return "", errors.New("invalid subject")
	}
	return claims.Subject, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (model.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, ErrNoUser) {
		return model.User{}, apperr.Wrap(apperr.ErrUnknownUser, err)
	}
	return u, err
}

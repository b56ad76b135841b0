package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/model"
)

type memUsers struct {
	mu     sync.Mutex
	byName map[string]Credentials
	byID   map[string]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byName: map[string]Credentials{}, byID: map[string]model.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, username, hash string, cash decimal.Decimal) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[username]; ok {
		return "", ErrDuplicateUsername
	}
	id := "u" + strconv.Itoa(len(m.byID)+1)
	m.byName[username] = Credentials{UserID: id, PasswordHash: hash}
	m.byID[id] = model.User{ID: id, Username: username, Cash: cash}
	return id, nil
}

func (m *memUsers) FindCredentials(_ context.Context, username string) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byName[username]
	if !ok {
		return Credentials{}, ErrNoUser
	}
	return c, nil
}

func (m *memUsers) GetUser(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, ErrNoUser
	}
	return u, nil
}

func newTestService() *Service {
	svc := NewService(newMemUsers(), "papertrade-test", []byte("secret"), time.Hour, decimal.NewFromInt(10000))
	svc.cost = bcrypt.MinCost
	return svc
}

func TestRegisterValidationOrder(t *testing.T) {
	cases := []struct {
		user, pass, confirm string
		want                error
	}{
		{"", "", "", apperr.ErrMissingUsername},
		{"  ", "pw", "pw", apperr.ErrMissingUsername},
		{"alice", "", "pw", apperr.ErrMissingPassword},
		{"alice", "pw", "", apperr.ErrMissingConfirmation},
		{"alice", "pw", "px", apperr.ErrPasswordMismatch},
	}
	svc := newTestService()
	for _, c := range cases {
		if _, err := svc.Register(context.Background(), c.user, c.pass, c.confirm); !errors.Is(err, c.want) {
			t.Fatalf("Register(%q,%q,%q) = %v, want %v", c.user, c.pass, c.confirm, err, c.want)
		}
	}
}

func TestRegisterLoginAndToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	id, err := svc.Register(ctx, "alice", "hunter2", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other", "other"); !errors.Is(err, apperr.ErrUsernameTaken) {
		t.Fatalf("expected username_taken, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid_credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "hunter2"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid_credentials for unknown user, got %v", err)
	}
	token, err := svc.Login(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sub, err := svc.ParseToken(token)
	if err != nil || sub != id {
		t.Fatalf("ParseToken = %q, %v; want %q", sub, err, id)
	}
	u, err := svc.GetUser(ctx, id)
	if err != nil || !u.Cash.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("GetUser = %+v, %v", u, err)
	}
	if _, err := svc.GetUser(ctx, "ghost"); !errors.Is(err, apperr.ErrUnknownUser) {
		t.Fatalf("expected unknown_user, got %v", err)
	}
}

func TestParseTokenRejectsForeignAndExpired(t *testing.T) {
	svc := newTestService()
	token, err := svc.signToken("u1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := NewService(newMemUsers(), "someone-else", []byte("secret"), time.Hour, decimal.Zero)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("token from another issuer accepted")
	}
	wrongKey := NewService(newMemUsers(), "papertrade-test", []byte("other"), time.Hour, decimal.Zero)
	if _, err := wrongKey.ParseToken(token); err == nil {
		t.Fatal("token with wrong key accepted")
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ParseToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestHandlerRegisterLoginMe(t *testing.T) {
	h := NewHandler(newTestService(), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"username":"alice","password":"pw","confirmation":"pw"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}
	var reg map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &reg)
	if reg["access_token"] == "" || reg["user_id"] == "" {
		t.Fatalf("unexpected register body %v", reg)
	}

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"username":"alice","password":"pw","confirmation":"pw"}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"username":"alice","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil), reg["user_id"])
	var me map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &me)
	if rec.Code != http.StatusOK || me["username"] != "alice" || me["cash_display"] != "$10,000.00" {
		t.Fatalf("me status %d body %v", rec.Code, me)
	}
}

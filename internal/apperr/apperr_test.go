package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrappedErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("sell AAPL: %w", Wrap(ErrQuoteUnavailable, errors.New("dial tcp: timeout")))
	if !errors.Is(err, ErrQuoteUnavailable) {
		t.Fatalf("expected errors.Is to match quote_unavailable, got %v", err)
	}
	if errors.Is(err, ErrUnknownSymbol) {
		t.Fatal("quote_unavailable must not match unknown_symbol")
	}
	if got := Message(err); got != ErrQuoteUnavailable.Msg {
		t.Fatalf("message leaked cause: %q", got)
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrMissingSymbol, http.StatusBadRequest},
		{ErrInvalidShareCount, http.StatusBadRequest},
		{ErrUnknownSymbol, http.StatusBadRequest},
		{ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{ErrInsufficientShares, http.StatusUnprocessableEntity},
		{ErrNoSuchHolding, http.StatusUnprocessableEntity},
		{ErrQuoteUnavailable, http.StatusServiceUnavailable},
		{ErrStoreConflict, http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusServiceUnavailable},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Fatalf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestMessagesAreDistinct(t *testing.T) {
	all := []*Error{
		ErrMissingSymbol, ErrInvalidShareCount, ErrUnknownSymbol, ErrInsufficientFunds,
		ErrInsufficientShares, ErrNoSuchHolding, ErrQuoteUnavailable, ErrStoreConflict,
	}
	seen := map[string]Kind{}
	for _, e := range all {
		if prev, ok := seen[e.Msg]; ok {
			t.Fatalf("%s and %s share message %q", prev, e.Kind, e.Msg)
		}
		seen[e.Msg] = e.Kind
	}
	if Message(errors.New("pg: broken pipe")) != unavailableMessage {
		t.Fatal("infrastructure errors must render as unavailable")
	}
}

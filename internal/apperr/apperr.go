// Package apperr defines the failure kinds the trading core reports to its
// callers. Every kind carries a distinct human readable message and maps to
// one HTTP status; anything that is not an *Error is an infrastructure fault.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindMissingSymbol       Kind = "missing_symbol"
	KindInvalidShareCount   Kind = "invalid_share_count"
	KindUnknownSymbol       Kind = "unknown_symbol"
	KindInsufficientFunds   Kind = "insufficient_funds"
	KindInsufficientShares  Kind = "insufficient_shares"
	KindNoSuchHolding       Kind = "no_such_holding"
	KindQuoteUnavailable    Kind = "quote_unavailable"
	KindStoreConflict       Kind = "store_conflict"
	KindMissingUsername     Kind = "missing_username"
	KindMissingPassword     Kind = "missing_password"
	KindMissingConfirmation Kind = "missing_confirmation"
	KindPasswordMismatch    Kind = "password_mismatch"
	KindUsernameTaken       Kind = "username_taken"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindUnknownUser         Kind = "unknown_user"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so wrapped errors match the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingSymbol       = &Error{Kind: KindMissingSymbol, Msg: "must provide stock symbol"}
	ErrInvalidShareCount   = &Error{Kind: KindInvalidShareCount, Msg: "must provide valid share number"}
	ErrUnknownSymbol       = &Error{Kind: KindUnknownSymbol, Msg: "stock symbol not valid"}
	ErrInsufficientFunds   = &Error{Kind: KindInsufficientFunds, Msg: "not enough cash available"}
	ErrInsufficientShares  = &Error{Kind: KindInsufficientShares, Msg: "you do not have enough shares"}
	ErrNoSuchHolding       = &Error{Kind: KindNoSuchHolding, Msg: "you do not have this stock symbol"}
	ErrQuoteUnavailable    = &Error{Kind: KindQuoteUnavailable, Msg: "quote service unavailable"}
	ErrStoreConflict       = &Error{Kind: KindStoreConflict, Msg: "trade conflicted with a concurrent trade, please retry"}
	ErrMissingUsername     = &Error{Kind: KindMissingUsername, Msg: "must provide username"}
	ErrMissingPassword     = &Error{Kind: KindMissingPassword, Msg: "must provide password"}
	ErrMissingConfirmation = &Error{Kind: KindMissingConfirmation, Msg: "must provide password confirmation"}
	ErrPasswordMismatch    = &Error{Kind: KindPasswordMismatch, Msg: "passwords do not match"}
	ErrUsernameTaken       = &Error{Kind: KindUsernameTaken, Msg: "username exists"}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials, Msg: "invalid username and/or password"}
	ErrUnknownUser         = &Error{Kind: KindUnknownUser, Msg: "user not found"}
)

// Wrap attaches cause to a copy of the sentinel for kind.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Msg: sentinel.Msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

const unavailableMessage = "service unavailable"

// Message is the text shown to end users. Infrastructure errors are never
// echoed back.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return unavailableMessage
}

func Status(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusServiceUnavailable
	}
	switch kind {
	case KindInsufficientFunds, KindInsufficientShares, KindNoSuchHolding:
		return http.StatusUnprocessableEntity
	case KindQuoteUnavailable:
		return http.StatusServiceUnavailable
	case KindStoreConflict, KindUsernameTaken:
		return http.StatusConflict
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindUnknownUser:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

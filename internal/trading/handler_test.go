package trading

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"lv-papertrade/internal/httputil"
)

func newTestHandler(t *testing.T) *Handler {
	f := newFixture(t, "10000")
	return NewHandler(f.exec, f.store, zap.NewNop())
}

func post(h func(http.ResponseWriter, *http.Request, string), body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/trade", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h(rec, req, "u1")
	return rec
}

func TestHandlerBuySellHistory(t *testing.T) {
	h := newTestHandler(t)

	rec := post(h.Buy, `{"symbol":"aapl","shares":"10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("buy status %d: %s", rec.Code, rec.Body.String())
	}
	var bought struct {
		Message     string              `json:"message"`
		Transaction transactionResponse `json:"transaction"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &bought); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bought.Message != "Bought!" || bought.Transaction.Symbol != "AAPL" || bought.Transaction.Side != "buy" ||
		bought.Transaction.TotalDisplay != "$1,500.00" {
		t.Fatalf("unexpected buy body %+v", bought)
	}

	rec = post(h.Sell, `{"symbol":"AAPL","shares":4}`)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "Sold!") {
		t.Fatalf("sell status %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/v1/history", nil), "u1")
	var hist struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Transactions) != 2 || hist.Transactions[1].Shares != -4 || hist.Transactions[1].Side != "sell" {
		t.Fatalf("unexpected history %+v", hist.Transactions)
	}
}

func TestHandlerRejections(t *testing.T) {
	cases := []struct {
		name   string
		sell   bool
		body   string
		status int
		code   string
	}{
		{"missing symbol", false, `{"shares":"1"}`, http.StatusBadRequest, "missing_symbol"},
		{"fractional shares", false, `{"symbol":"AAPL","shares":1.5}`, http.StatusBadRequest, "invalid_share_count"},
		{"null shares", false, `{"symbol":"AAPL","shares":null}`, http.StatusBadRequest, "invalid_share_count"},
		{"unknown symbol", false, `{"symbol":"ZZZZ","shares":"1"}`, http.StatusBadRequest, "unknown_symbol"},
		{"too expensive", false, `{"symbol":"AAPL","shares":"100"}`, http.StatusUnprocessableEntity, "insufficient_funds"},
		{"not held", true, `{"symbol":"AAPL","shares":"1"}`, http.StatusUnprocessableEntity, "no_such_holding"},
		{"bad json", false, `{"symbol":`, http.StatusBadRequest, ""},
		{"unknown field", false, `{"symbol":"AAPL","shares":"1","limit":3}`, http.StatusBadRequest, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newTestHandler(t)
			fn := h.Buy
			if c.sell {
				fn = h.Sell
			}
			rec := post(fn, c.body)
			if rec.Code != c.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, c.status, rec.Body.String())
			}
			var body httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != c.code || body.Error == "" {
				t.Fatalf("unexpected error body %+v", body)
			}
		})
	}
}

func TestHandlerHistoryUnknownUser(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/v1/history", nil), "ghost")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

package trading

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/httputil"
	"lv-papertrade/internal/ledger"
	"lv-papertrade/internal/model"
	"lv-papertrade/internal/types"
	"lv-papertrade/internal/usd"
)

type Handler struct {
	exec   *Executor
	store  ledger.Store
	logger *zap.Logger
}

func NewHandler(exec *Executor, store ledger.Store, logger *zap.Logger) *Handler {
	return &Handler{exec: exec, store: store, logger: logger}
}

// shareInput keeps the raw share count so that "10", 10, "1.5" and null
// all reach ParseShares and fail the same way.
type shareInput string

func (s *shareInput) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = shareInput(str)
		return nil
	}
	*s = shareInput(strings.TrimSpace(string(b)))
	return nil
}

type tradeRequest struct {
	Symbol string     `json:"symbol"`
	Shares shareInput `json:"shares"`
}

type transactionResponse struct {
	ID           string `json:"id"`
	Sequence     int64  `json:"sequence"`
	Symbol       string `json:"symbol"`
	Side         string `json:"side"`
	Shares       int64  `json:"shares"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
	Total        string `json:"total"`
	TotalDisplay string `json:"total_display"`
	CreatedAt    string `json:"created_at"`
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request, userID string) {
	h.trade(w, r, userID, types.TradeSideBuy)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request, userID string) {
	h.trade(w, r, userID, types.TradeSideSell)
}

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, userID string, side types.TradeSide) {
	var req tradeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	t, err := h.exec.Execute(r.Context(), userID, req.Symbol, string(req.Shares), side)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	msg := "Bought!"
	if side == types.TradeSideSell {
		msg = "Sold!"
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"message": msg, "transaction": toResponse(t)})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request, userID string) {
	txs, err := h.store.ListTransactions(r.Context(), userID)
	if err != nil {
		if _, ok := apperr.KindOf(readErr(err)); !ok {
			h.logger.Error("history read failed", zap.String("user_id", userID), zap.Error(err))
		}
		httputil.WriteError(w, readErr(err))
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toResponse(t))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func toResponse(t model.Transaction) transactionResponse {
	side := types.TradeSideBuy
	if t.Shares < 0 {
		side = types.TradeSideSell
	}
	total := t.Amount().Abs()
	return transactionResponse{
		ID:           t.ID,
		Sequence:     t.Sequence,
		Symbol:       t.Symbol,
		Side:         string(side),
		Shares:       t.Shares,
		Price:        t.Price.StringFixed(2),
		PriceDisplay: usd.Format(t.Price),
		Total:        total.StringFixed(2),
		TotalDisplay: usd.Format(total),
		CreatedAt:    t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

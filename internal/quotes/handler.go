package quotes

import (
	"net/http"

	"lv-papertrade/internal/httputil"
	"lv-papertrade/internal/usd"
)

type Handler struct {
	provider Provider
}

func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

type quoteResponse struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name,omitempty"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := Resolve(r.Context(), h.provider, r.URL.Query().Get("symbol"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, quoteResponse{
		Symbol:       q.Symbol,
		Name:         q.Name,
		Price:        q.Price.StringFixed(2),
		PriceDisplay: usd.Format(q.Price),
	})
}

package portfolio

import (
	"net/http"

	"go.uber.org/zap"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/httputil"
	"lv-papertrade/internal/model"
	"lv-papertrade/internal/usd"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type holdingResponse struct {
	Symbol       string `json:"symbol"`
	Shares       int64  `json:"shares"`
	Price        string `json:"price,omitempty"`
	PriceDisplay string `json:"price_display,omitempty"`
	Value        string `json:"value,omitempty"`
	ValueDisplay string `json:"value_display,omitempty"`
}

type portfolioResponse struct {
	Holdings        []holdingResponse `json:"holdings"`
	Cash            string            `json:"cash"`
	CashDisplay     string            `json:"cash_display"`
	NetWorth        string            `json:"net_worth"`
	NetWorthDisplay string            `json:"net_worth_display"`
}

func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := h.svc.Portfolio(r.Context(), userID)
	if err != nil {
		h.fail(w, userID, err)
		return
	}
	resp := portfolioResponse{
		Holdings:        make([]holdingResponse, 0, len(p.Holdings)),
		Cash:            p.Cash.StringFixed(2),
		CashDisplay:     usd.Format(p.Cash),
		NetWorth:        p.NetWorth.StringFixed(2),
		NetWorthDisplay: usd.Format(p.NetWorth),
	}
	for _, hd := range p.Holdings {
		resp.Holdings = append(resp.Holdings, valued(hd))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Holdings lists positions without quotes, for choosing what to sell.
func (h *Handler) Holdings(w http.ResponseWriter, r *http.Request, userID string) {
	holdings, err := h.svc.Holdings(r.Context(), userID)
	if err != nil {
		h.fail(w, userID, err)
		return
	}
	out := make([]holdingResponse, 0, len(holdings))
	for _, hd := range holdings {
		out = append(out, holdingResponse{Symbol: hd.Symbol, Shares: hd.Shares})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"holdings": out})
}

func (h *Handler) fail(w http.ResponseWriter, userID string, err error) {
	if _, ok := apperr.KindOf(err); !ok {
		h.logger.Error("portfolio read failed", zap.String("user_id", userID), zap.Error(err))
	}
	httputil.WriteError(w, err)
}

func valued(hd model.Holding) holdingResponse {
	return holdingResponse{
		Symbol:       hd.Symbol,
		Shares:       hd.Shares,
		Price:        hd.Price.StringFixed(2),
		PriceDisplay: usd.Format(hd.Price),
		Value:        hd.Value.StringFixed(2),
		ValueDisplay: usd.Format(hd.Value),
	}
}

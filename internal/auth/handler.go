package auth

import (
	"net/http"

	"go.uber.org/zap"

	"lv-papertrade/internal/apperr"
	"lv-papertrade/internal/httputil"
	"lv-papertrade/internal/usd"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type registerRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	id, err := h.svc.Register(r.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		h.fail(w, "register failed", err)
		return
	}
	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, "login after register failed", err)
		return
	}
	h.logger.Info("user registered", zap.String("user_id", id))
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"user_id": id, "access_token": token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		h.fail(w, "load user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"id":           user.ID,
		"username":     user.Username,
		"cash":         user.Cash.StringFixed(2),
		"cash_display": usd.Format(user.Cash),
	})
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if _, ok := apperr.KindOf(err); !ok {
		h.logger.Error(msg, zap.Error(err))
	}
	httputil.WriteError(w, err)
}

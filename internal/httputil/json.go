package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lv-papertrade/internal/apperr"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ReadJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return errors.New("invalid json body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err with the status and message of its kind.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: apperr.Message(err)}
	if kind, ok := apperr.KindOf(err); ok {
		resp.Code = string(kind)
	}
	WriteJSON(w, apperr.Status(err), resp)
}

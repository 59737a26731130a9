package handler

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
)

// error payload format
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFromError maps engine errors to HTTP codes (simplified).
func statusFromError(err error) int {
	if err == nil {
		return stdhttp.StatusOK
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return stdhttp.StatusGatewayTimeout
	}
	return stdhttp.StatusInternalServerError
}

func writeJSON(w stdhttp.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package handler

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strings"
	"time"

	DTO_http "rag_service/internal/DTO/http"
	"rag_service/internal/service/rag"
)

// NewAskHandler answers POST /ask. The question is passed to the engine
// untouched and the engine response is returned as-is.
func NewAskHandler(svc rag.Engine) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		// JSON only
		if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
			writeJSON(w, stdhttp.StatusUnsupportedMediaType, errorResponse{
				Error:   "unsupported_media_type",
				Details: "Content-Type must be application/json",
			})
			return
		}

		var req DTO_http.QuestionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, stdhttp.StatusBadRequest, errorResponse{
				Error:   "invalid_request",
				Details: err.Error(),
			})
			return
		}

		if strings.TrimSpace(req.Question) == "" {
			writeJSON(w, stdhttp.StatusBadRequest, errorResponse{
				Error:   "validation_error",
				Details: "question is required",
			})
			return
		}

		// timeout covering retrieval plus model calls
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()

		out, err := svc.Ask(ctx, req.Question)
		if err != nil {
			writeJSON(w, statusFromError(err), errorResponse{
				Error:   "ask_failed",
				Details: err.Error(),
			})
			return
		}

		writeJSON(w, stdhttp.StatusOK, out)
	}
}

package handler

import (
	"encoding/json"
	"io"
	stdhttp "net/http"
	"os"
	"strings"

	DTO_http "rag_service/internal/DTO/http"
	"rag_service/internal/service/ingest"
)

const maxPDFBytes = 10 << 20

type ingestResponse struct {
	ChunksAdded int    `json:"chunks_added"`
	Source      string `json:"source,omitempty"`
}

// NewIngestHandler accepts POST /ingest with markdown or plain text.
func NewIngestHandler(svc ingest.Service) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
			writeJSON(w, stdhttp.StatusUnsupportedMediaType, errorResponse{
				Error:   "unsupported_media_type",
				Details: "Content-Type must be application/json",
			})
			return
		}

		var req DTO_http.IngestRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, stdhttp.StatusBadRequest, errorResponse{
				Error:   "invalid_request",
				Details: err.Error(),
			})
			return
		}

		if strings.TrimSpace(req.Text) == "" {
			writeJSON(w, stdhttp.StatusBadRequest, errorResponse{
				Error:   "validation_error",
				Details: "text is required",
			})
			return
		}

		added, err := svc.IngestText(r.Context(), req.Text, req.Source)
		if err != nil {
			writeJSON(w, statusFromError(err), errorResponse{
				Error:   "ingest_failed",
				Details: err.Error(),
			})
			return
		}

		writeJSON(w, stdhttp.StatusOK, ingestResponse{ChunksAdded: added, Source: req.Source})
	}
}

// NewIngestPDFHandler accepts POST /ingest/pdf as a multipart form with a
// "file" field.
func NewIngestPDFHandler(svc ingest.Service) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		// max 10MB, enforced on the wire and not just on multipart memory
		r.Body = stdhttp.MaxBytesReader(w, r.Body, maxPDFBytes)
		if err := r.ParseMultipartForm(maxPDFBytes); err != nil {
			writeJSON(w, stdhttp.StatusBadRequest, errorResponse{
				Error:   "invalid_request",
				Details: "failed to parse form",
			})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, stdhttp.StatusBadRequest, errorResponse{
				Error:   "validation_error",
				Details: "missing file field",
			})
			return
		}
		defer file.Close()

		// The pdf library reads from a path, so spool to a temp file first.
		tmp, err := os.CreateTemp("", "ingest-*.pdf")
		if err != nil {
			writeJSON(w, stdhttp.StatusInternalServerError, errorResponse{
				Error:   "ingest_failed",
				Details: "failed to create temp file",
			})
			return
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		if _, err := io.Copy(tmp, file); err != nil {
			writeJSON(w, stdhttp.StatusInternalServerError, errorResponse{
				Error:   "ingest_failed",
				Details: "failed to save temp pdf",
			})
			return
		}

		added, err := svc.IngestPDF(r.Context(), tmp.Name(), header.Filename)
		if err != nil {
			writeJSON(w, statusFromError(err), errorResponse{
				Error:   "ingest_failed",
				Details: err.Error(),
			})
			return
		}

		writeJSON(w, stdhttp.StatusOK, ingestResponse{ChunksAdded: added, Source: header.Filename})
	}
}

package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"rag_service/internal/store"
)

const chunkSize = 300

// Indexer is the slice of the vector store the ingestion path needs.
type Indexer interface {
	Add(ctx context.Context, docs []store.Document) error
	Persist() error
}

type service struct {
	idx Indexer
}

// Service chunks raw content and feeds it into the index.
type Service interface {
	IngestText(ctx context.Context, text, source string) (int, error)
	IngestPDF(ctx context.Context, path, source string) (int, error)
}

func NewService(idx Indexer) Service {
	return &service{idx: idx}
}

// IngestText chunks markdown or plain text and stores the chunks. Returns the
// number of chunks added.
func (s *service) IngestText(ctx context.Context, text, source string) (int, error) {
	body := []byte(text)

	meta, err := ExtractMetadata(body)
	if err != nil {
		slog.Warn("Front matter extraction problem", "error", err, "source", source)
		meta = &Metadata{}
	}

	chunks := CompressChunks(ParseMarkdown(stripFrontMatter(body)), chunkSize)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no content to ingest")
	}

	docs := make([]store.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, store.Document{
			ID:      chunkID(chunk),
			Content: chunk,
			Metadata: map[string]string{
				"title":  meta.Title,
				"source": source,
			},
		})
	}

	if err := s.idx.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}
	if err := s.idx.Persist(); err != nil {
		slog.Error("Failed to persist index", "error", err)
	}
	return len(docs), nil
}

// IngestPDF extracts text from the PDF at path and ingests it.
func (s *service) IngestPDF(ctx context.Context, path, source string) (int, error) {
	text, err := ExtractPDFText(path)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("no text extracted from pdf")
	}
	return s.IngestText(ctx, text, source)
}

// chunkID derives a stable ID from the chunk content, so re-ingesting the
// same document overwrites instead of duplicating.
func chunkID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}

package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
)

const collectionName = "knowledge-base"

// Document is one stored chunk. Similarity is only set on query results.
type Document struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Store wraps a chromem collection with gob persistence.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	path       string

	mu sync.Mutex // serializes Persist
}

// NewEmbeddingFunc returns the embedding function for the collection.
// baseURL switches to an OpenAI-compatible endpoint.
func NewEmbeddingFunc(apiKey, baseURL string) chromem.EmbeddingFunc {
	if baseURL != "" {
		normalized := true
		return chromem.NewEmbeddingFuncOpenAICompat(baseURL, apiKey, string(chromem.EmbeddingModelOpenAI3Small), &normalized)
	}
	return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small)
}

// New loads the database from path when a previous export exists, otherwise
// starts empty. An empty path disables persistence.
func New(path string, embed chromem.EmbeddingFunc) (*Store, error) {
	db := chromem.NewDB()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			slog.Info("Loading index", "path", path)
			if err := db.Import(path, ""); err != nil {
				return nil, fmt.Errorf("import index %s: %w", path, err)
			}
		}
	}

	collection := db.GetCollection(collectionName, embed)
	if collection == nil {
		var err error
		collection, err = db.CreateCollection(collectionName, nil, embed)
		if err != nil {
			return nil, fmt.Errorf("create collection: %w", err)
		}
	}

	return &Store{db: db, collection: collection, path: path}, nil
}

// Add embeds and stores the given documents. IDs must be unique, duplicates
// overwrite the stored document.
func (s *Store) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	converted := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		converted = append(converted, chromem.Document{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: d.Metadata,
		})
	}
	slog.Info("Adding documents", "count", len(converted))
	return s.collection.AddDocuments(ctx, converted, runtime.NumCPU())
}

// Query returns the k most similar documents. k is clamped to the collection
// size; an empty collection yields no results.
func (s *Store) Query(ctx context.Context, text string, k int) ([]Document, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	res, err := s.collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	docs := make([]Document, 0, len(res))
	for _, r := range res {
		docs = append(docs, Document{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}
	return docs, nil
}

// Count reports the number of stored documents.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Persist exports the database to the configured path.
func (s *Store) Persist() error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}
	slog.Info("Storing index", "path", s.path)
	return s.db.Export(s.path, false, "")
}

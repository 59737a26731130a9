package ingest_test

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"rag_service/internal/service/ingest"
	"rag_service/internal/store"
)

type fakeIndexer struct {
	docs     []store.Document
	persists int
}

func (f *fakeIndexer) Add(ctx context.Context, docs []store.Document) error {
	f.docs = append(f.docs, docs...)
	return nil
}

func (f *fakeIndexer) Persist() error {
	f.persists++
	return nil
}

func TestIngestText_IndexesChunks(t *testing.T) {
	idx := &fakeIndexer{}
	svc := ingest.NewService(idx)

	added, err := svc.IngestText(context.Background(), "---\ntitle: Notes\n---\n\nA short note about presigned URLs.\n", "notes.md")
	assert.NilError(t, err)
	assert.Equal(t, added, 1)
	assert.Equal(t, len(idx.docs), 1)
	assert.Equal(t, idx.docs[0].Content, "A short note about presigned URLs.")
	assert.Equal(t, idx.docs[0].Metadata["title"], "Notes")
	assert.Equal(t, idx.docs[0].Metadata["source"], "notes.md")
	assert.Equal(t, idx.persists, 1)
}

func TestIngestText_StableIDs(t *testing.T) {
	idx := &fakeIndexer{}
	svc := ingest.NewService(idx)

	_, err := svc.IngestText(context.Background(), "Same content.", "a.md")
	assert.NilError(t, err)
	_, err = svc.IngestText(context.Background(), "Same content.", "a.md")
	assert.NilError(t, err)

	// re-ingesting identical content produces the same document ID
	assert.Equal(t, len(idx.docs), 2)
	assert.Equal(t, idx.docs[0].ID, idx.docs[1].ID)
}

func TestIngestText_Empty(t *testing.T) {
	svc := ingest.NewService(&fakeIndexer{})

	_, err := svc.IngestText(context.Background(), "   ", "blank.md")
	assert.ErrorContains(t, err, "no content")
}

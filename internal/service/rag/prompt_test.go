package rag

import (
	"strings"
	"testing"

	"rag_service/internal/store"
)

func TestBuildPrompt_WrapsExcerpts(t *testing.T) {
	docs := []store.Document{
		{ID: "1", Content: "First excerpt."},
		{ID: "2", Content: "Second excerpt."},
	}

	prompt, err := buildPrompt("What is this about?", docs)
	if err != nil {
		t.Fatalf("buildPrompt failed: %v", err)
	}

	if !strings.Contains(prompt, "Question: What is this about?") {
		t.Fatalf("prompt missing question: %q", prompt)
	}
	if strings.Count(prompt, "<document>") != 2 || strings.Count(prompt, "</document>") != 2 {
		t.Fatalf("expected 2 wrapped excerpts: %q", prompt)
	}
	if !strings.Contains(prompt, "First excerpt.") || !strings.Contains(prompt, "Second excerpt.") {
		t.Fatalf("prompt missing excerpt content: %q", prompt)
	}
}

func TestBuildPrompt_NoDocuments(t *testing.T) {
	prompt, err := buildPrompt("anything?", nil)
	if err != nil {
		t.Fatalf("buildPrompt failed: %v", err)
	}
	if !strings.Contains(prompt, "No documents were found") {
		t.Fatalf("expected empty-retrieval marker: %q", prompt)
	}
}

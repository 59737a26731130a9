package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	DTO_llm "rag_service/internal/DTO/llm"
)

type mockEngine struct {
	calls        int
	lastQuestion string
	resp         DTO_llm.Response
	err          error
}

func (m *mockEngine) Ask(ctx context.Context, question string) (DTO_llm.Response, error) {
	m.calls++
	m.lastQuestion = question
	return m.resp, m.err
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestAskHandler_ReturnsEngineResultVerbatim(t *testing.T) {
	engine := &mockEngine{
		resp: DTO_llm.Response{
			Answer: "4",
			Sources: []DTO_llm.SourceDocument{
				{ID: "abc", Title: "math", Content: "2+2 equals 4", Similarity: 0.9},
			},
		},
	}
	h := NewAskHandler(engine)

	w := postJSON(h, `{"question": "What is 2+2?"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if engine.calls != 1 {
		t.Fatalf("expected engine to be called exactly once, got %d", engine.calls)
	}
	if engine.lastQuestion != "What is 2+2?" {
		t.Fatalf("expected question passed through unchanged, got %q", engine.lastQuestion)
	}

	var got DTO_llm.Response
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response json: %v", err)
	}
	if got.Answer != engine.resp.Answer {
		t.Fatalf("expected answer %q, got %q", engine.resp.Answer, got.Answer)
	}
	if len(got.Sources) != 1 || got.Sources[0] != engine.resp.Sources[0] {
		t.Fatalf("expected sources returned unmodified, got %+v", got.Sources)
	}
}

func TestAskHandler_MissingQuestion(t *testing.T) {
	engine := &mockEngine{}
	h := NewAskHandler(engine)

	w := postJSON(h, `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if engine.calls != 0 {
		t.Fatalf("engine must not be called for invalid payloads, got %d calls", engine.calls)
	}
}

func TestAskHandler_BlankQuestion(t *testing.T) {
	h := NewAskHandler(&mockEngine{})

	w := postJSON(h, `{"question": "   "}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAskHandler_MalformedJSON(t *testing.T) {
	h := NewAskHandler(&mockEngine{})

	w := postJSON(h, `{"question": `)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAskHandler_UnknownField(t *testing.T) {
	h := NewAskHandler(&mockEngine{})

	w := postJSON(h, `{"question": "hi", "extra": true}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAskHandler_WrongContentType(t *testing.T) {
	engine := &mockEngine{}
	h := NewAskHandler(engine)

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte(`{"question": "hi"}`)))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
	if engine.calls != 0 {
		t.Fatalf("engine must not be called, got %d calls", engine.calls)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string { return "deadline exceeded" }
func (timeoutError) Timeout() bool { return true }

func TestAskHandler_TimeoutMapsTo504(t *testing.T) {
	h := NewAskHandler(&mockEngine{err: timeoutError{}})

	w := postJSON(h, `{"question": "hi"}`)

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 for timeout errors, got %d", w.Code)
	}
}

func TestAskHandler_WrappedTimeoutMapsTo504(t *testing.T) {
	h := NewAskHandler(&mockEngine{err: fmt.Errorf("generation failed: %w", timeoutError{})})

	w := postJSON(h, `{"question": "hi"}`)

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 for wrapped timeout errors, got %d", w.Code)
	}
}

func TestAskHandler_EngineError(t *testing.T) {
	h := NewAskHandler(&mockEngine{err: errors.New("model unavailable")})

	w := postJSON(h, `{"question": "hi"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error json: %v", err)
	}
	if resp.Error != "ask_failed" {
		t.Fatalf("expected ask_failed, got %q", resp.Error)
	}
}

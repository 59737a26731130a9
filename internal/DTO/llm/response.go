package llm

// Response is what the engine returns for a question. The /ask handler
// serializes it as-is.
type Response struct {
	Answer  string           `json:"answer"`
	Sources []SourceDocument `json:"sources"`
}

// SourceDocument is one retrieved chunk that backed the answer.
type SourceDocument struct {
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
}

package http

// QuestionRequest is the body of POST /ask.
type QuestionRequest struct {
	Question string `json:"question"`
}

// IngestRequest is the body of POST /ingest.
type IngestRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

package rag

import (
	"bytes"
	"fmt"
	"text/template"

	"rag_service/internal/store"
)

const promptTemplate = `Use the following document excerpts to answer the question.

{{.Document}}
Question: {{.Question}}
`

type templateData struct {
	Question string
	Document string
}

// buildPrompt renders the question and retrieved excerpts into the user
// prompt. Each excerpt is wrapped in <document> separators so the model can
// tell them apart.
func buildPrompt(question string, docs []store.Document) (string, error) {
	var excerpts bytes.Buffer
	for _, doc := range docs {
		excerpts.WriteString("<document>\n")
		excerpts.WriteString(doc.Content)
		excerpts.WriteString("\n</document>\n")
	}
	if len(docs) == 0 {
		excerpts.WriteString("<document>\nNo documents were found for this question.\n</document>\n")
	}

	tmpl, err := template.New("Prompt").Parse(promptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, templateData{Question: question, Document: excerpts.String()}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buffer.String(), nil
}

package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fatih/color"
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	DTO_llm "rag_service/internal/DTO/llm"
	"rag_service/internal/cache"
	config_llm "rag_service/internal/config/llm"
	"rag_service/internal/service/llm"
	"rag_service/internal/store"
)

// Retriever is the slice of the vector store the engine needs.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]store.Document, error)
}

type engine struct {
	modelName string
	provider  string
	topK      int
	cacheTTL  time.Duration
	retriever Retriever
	answers   cache.Cache
}

// Engine answers a question from the indexed documents.
type Engine interface {
	Ask(ctx context.Context, question string) (DTO_llm.Response, error)
}

func NewEngine(modelName, provider string, topK int, cacheTTL time.Duration, retriever Retriever, answers cache.Cache) Engine {
	return &engine{
		modelName: modelName,
		provider:  provider,
		topK:      topK,
		cacheTTL:  cacheTTL,
		retriever: retriever,
		answers:   answers,
	}
}

func (e *engine) Ask(ctx context.Context, question string) (DTO_llm.Response, error) {
	var response DTO_llm.Response
	const maxAttempt = 5

	// Cached answers skip retrieval and generation entirely.
	if e.answers != nil {
		cached, err := e.answers.Get(ctx, question)
		if err != nil {
			log.Printf("answer cache lookup failed: %v", err)
		} else if cached != nil {
			color.Green("Answer served from cache")
			return cached.Response, nil
		}
	}

	docs, err := e.retriever.Query(ctx, question, e.topK)
	if err != nil {
		return response, fmt.Errorf("retrieval failed: %w", err)
	}
	log.Printf("retrieved %d documents for question", len(docs))

	userPrompt, err := buildPrompt(question, docs)
	if err != nil {
		return response, err
	}

	// Model init with retries and a fallback provider after repeated failures.
	llmService := llm.NewInitModel(e.modelName, e.provider)
	modelName := e.modelName
	var g *genkit.Genkit
	for i := 1; i <= maxAttempt; i++ {
		if ctx.Err() != nil {
			return response, ctx.Err()
		}
		g, err = llmService.Init(ctx)
		if err == nil {
			break
		}

		if i > 2 {
			color.Yellow(fmt.Sprintf("Falling back to deepseek after %d failed init attempts", i))
			modelName = "deepseek/deepseek-chat"
			llmService = llm.NewInitModel(modelName, "deepseek")
			g, err = llmService.Init(ctx)
			if err == nil {
				break
			}
		}

		if i == maxAttempt {
			return response, fmt.Errorf("failed to initialize model after %d attempts: %w", i, err)
		}
		time.Sleep(time.Duration(1<<uint(i-1)) * 200 * time.Millisecond)
	}

	color.Yellow(fmt.Sprintf("Using model %s, sending prompt", modelName))

	// Generation retries with exponential backoff.
	for i := 1; i <= maxAttempt; i++ {
		if ctx.Err() != nil {
			return response, ctx.Err()
		}

		resp, genErr := genkit.Generate(
			ctx,
			g,
			ai.WithSystem(config_llm.Prompt),
			ai.WithPrompt(userPrompt),
			ai.WithModelName(modelName),
		)

		if resp != nil && resp.Usage != nil {
			log.Printf("usage in=%d out=%d", resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}

		if genErr != nil || resp == nil {
			if genErr != nil {
				color.Red(fmt.Sprintf("Model call failed - %v", genErr))
			}
			if i == maxAttempt {
				return response, genFailure(i, genErr)
			}
			time.Sleep(time.Duration(1<<uint(i-1)) * 200 * time.Millisecond)
			continue
		}

		response = DTO_llm.Response{
			Answer:  resp.Text(),
			Sources: toSources(docs),
		}

		if e.answers != nil {
			if err := e.answers.Set(ctx, question, response, e.cacheTTL); err != nil {
				log.Printf("answer cache store failed: %v", err)
			}
		}

		color.Green("Answer received from model")
		return response, nil
	}

	return response, errors.New("unreachable")
}

// genFailure reports a failed generation run. A nil resp with a nil error
// still has to produce a real cause instead of wrapping nil.
func genFailure(attempts int, genErr error) error {
	if genErr == nil {
		genErr = errors.New("empty model response")
	}
	return fmt.Errorf("generation failed after %d attempts: %w", attempts, genErr)
}

func toSources(docs []store.Document) []DTO_llm.SourceDocument {
	sources := make([]DTO_llm.SourceDocument, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, DTO_llm.SourceDocument{
			ID:         doc.ID,
			Title:      doc.Metadata["title"],
			Content:    doc.Content,
			Similarity: doc.Similarity,
		})
	}
	return sources
}

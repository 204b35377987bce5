package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhdandz/ResearchRover/internal/llm"
	"github.com/nhdandz/ResearchRover/internal/models"
)

// Generation bounds shared by both query paths.
const (
	answerMaxTokens   = 2000
	answerTemperature = 0.3
)

const groundedPrompt = `You are a research assistant. Answer the question based on the provided sources.

Rules:
1. Base your answer on the provided sources
2. Cite sources inline as [1], [2] matching the numbered sources below
3. If the sources don't contain the answer, say so
4. Be concise but thorough

Sources:
%s

Question: %s

Answer:`

const fallbackPrompt = `No relevant documents were found in the indexed sources for the question below. Answer from your general knowledge, and start by noting that no matching documents were found.

Question: %s

Answer:`

// LLMGenerator produces answers through the configured language model.
type LLMGenerator struct {
	model llm.LLM
}

var _ Generator = (*LLMGenerator)(nil)

// NewLLMGenerator creates a generator.
func NewLLMGenerator(model llm.LLM) *LLMGenerator {
	return &LLMGenerator{model: model}
}

// Generate produces a grounded answer from the context documents.
func (g *LLMGenerator) Generate(ctx context.Context, query string, contextDocs []RetrievedDocument) (string, error) {
	blocks := make([]string, len(contextDocs))
	for i, doc := range contextDocs {
		blocks[i] = fmt.Sprintf("[%d] %s\n%s", i+1, doc.Title, doc.Content)
	}

	prompt := fmt.Sprintf(groundedPrompt, strings.Join(blocks, "\n\n"), query)
	answer, err := g.model.Generate(ctx, prompt, llm.Options{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}
	return answer, nil
}

// GenerateFallback produces an ungrounded answer for queries with no
// retrieval results.
func (g *LLMGenerator) GenerateFallback(ctx context.Context, query string) (string, error) {
	answer, err := g.model.Generate(ctx, fmt.Sprintf(fallbackPrompt, query), llm.Options{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}
	return answer, nil
}

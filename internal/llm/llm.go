package llm

import (
	"context"
	"fmt"

	"github.com/nhdandz/ResearchRover/internal/config"
)

// Options bound a single generation call.
type Options struct {
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
}

// LLM is the provider-neutral interface for text generation.
type LLM interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)

	// GenerateJSON produces a completion and parses it as a JSON
	// object. Markdown code fences around the object are tolerated; an
	// unparseable completion yields an empty map, not an error.
	GenerateJSON(ctx context.Context, prompt string, opts Options) (map[string]interface{}, error)
}

// NewClient creates an LLM client for the configured provider.
// Supported providers: "ollama", "gemini".
func NewClient(cfg *config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	case "gemini":
		return NewGemini(context.Background(), cfg.Gemini.Model, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

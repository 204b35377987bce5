package embedding

import (
	"fmt"

	"github.com/nhdandz/ResearchRover/internal/config"
)

// NewModel creates an embedding model for the configured provider.
// Supported providers: "ollama", "openai", "gemini", "huggingface".
func NewModel(cfg *config.EmbeddingConfig) (Embedding, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	case "openai":
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "gemini":
		return NewGoogleModel(cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "huggingface":
		return NewHuggingFaceModel(cfg.HuggingFace.APIKey, cfg.HuggingFace.Model, cfg.HuggingFace.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

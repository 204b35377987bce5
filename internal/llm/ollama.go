package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	olla "github.com/ollama/ollama/api"
)

// Ollama is an LLM client for a local Ollama server.
type Ollama struct {
	client *olla.Client
	model  string
}

var _ LLM = (*Ollama)(nil)

// NewOllama creates an Ollama client. An empty baseURL defaults to
// "http://localhost:11434".
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// Generate produces a completion for the prompt.
func (o *Ollama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	options := map[string]interface{}{}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}

	stream := false
	var sb strings.Builder
	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:   o.model,
		Prompt:  prompt,
		System:  opts.SystemPrompt,
		Stream:  &stream,
		Options: options,
	}, func(resp olla.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}

	return sb.String(), nil
}

// GenerateJSON produces a completion and parses it as a JSON object.
func (o *Ollama) GenerateJSON(ctx context.Context, prompt string, opts Options) (map[string]interface{}, error) {
	text, err := o.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(text), nil
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is an LLM client for the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ LLM = (*Gemini)(nil)

// NewGemini creates a Gemini client.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate produces a completion for the prompt.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	if opts.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.SystemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// GenerateJSON produces a completion and parses it as a JSON object.
func (g *Gemini) GenerateJSON(ctx context.Context, prompt string, opts Options) (map[string]interface{}, error) {
	text, err := g.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(text), nil
}

package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mikeboe/web-researcher/pkg/research"
)

// GenAIGateway implements research.LLMGateway with the google genai SDK.
// Structured modes ask the model for an application/json response.
type GenAIGateway struct {
	client *genai.Client
	Model  string
}

// NewGenAIGateway creates a Gemini API client. cfg.Backend defaults to the Gemini API.
func NewGenAIGateway(ctx context.Context, cfg *genai.ClientConfig, model string) (*GenAIGateway, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("GOOGLE_API_KEY is not set")
	}
	if cfg.Backend == genai.BackendUnspecified {
		cfg.Backend = genai.BackendGeminiAPI
	}
	if model == "" {
		model = string(DefaultModel)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIGateway{client: client, Model: model}, nil
}

func (g *GenAIGateway) Complete(ctx context.Context, prompt string, mode research.Mode) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if mode.Structured() {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return "", &research.LLMError{Mode: mode, Model: g.Model, Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &research.LLMError{Mode: mode, Model: g.Model, Err: errors.New("empty response")}
	}
	return text, nil
}

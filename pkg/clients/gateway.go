package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/web-researcher/pkg/research"
)

// NamedModel pairs a langchaingo model with the name used in logs and errors.
type NamedModel struct {
	Name  string
	Model llms.Model
}

// ChainGateway implements research.LLMGateway over an ordered list of models.
// Each model is tried once; the first non-empty answer wins.
type ChainGateway struct {
	Models []NamedModel
	Logger *slog.Logger
}

func (g *ChainGateway) Complete(ctx context.Context, prompt string, mode research.Mode) (string, error) {
	if len(g.Models) == 0 {
		return "", &research.LLMError{Mode: mode, Err: errors.New("no models configured")}
	}
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []llms.CallOption{llms.WithTemperature(0)}
	if mode.Structured() {
		opts = append(opts, llms.WithJSONMode())
	}
	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}

	var errs []error
	for _, m := range g.Models {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		content, err := generate(ctx, m.Model, msgs, opts)
		if err == nil {
			return content, nil
		}
		logger.Warn("Model failed, trying next", "model", m.Name, "mode", mode, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", m.Name, err))
	}

	return "", &research.LLMError{Mode: mode, Model: g.Models[len(g.Models)-1].Name, Err: errors.Join(errs...)}
}

func generate(ctx context.Context, model llms.Model, msgs []llms.MessageContent, opts []llms.CallOption) (string, error) {
	resp, err := model.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	content := resp.Choices[0].Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("llm returned empty content")
	}
	return content, nil
}

// ChainConfig selects the models of a chain. Models whose key is empty are skipped.
type ChainConfig struct {
	GoogleAPIKey    string
	ReasoningModel  string
	FastModel       string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
}

// NewChain builds the fallback chain: the reasoning and fast Gemini models first,
// then Anthropic, OpenAI and DeepSeek.
func NewChain(ctx context.Context, cfg ChainConfig, logger *slog.Logger) (*ChainGateway, error) {
	g := &ChainGateway{Logger: logger}

	if cfg.GoogleAPIKey != "" {
		for _, name := range uniqueNames(cfg.ReasoningModel, cfg.FastModel) {
			llm, err := GoogleAi(ctx, cfg.GoogleAPIKey, ModelType(name))
			if err != nil {
				return nil, err
			}
			g.Models = append(g.Models, NamedModel{Name: name, Model: llm})
		}
	}
	if cfg.AnthropicAPIKey != "" {
		llm, err := AnthropicAI(cfg.AnthropicAPIKey, Claude4Sonnet)
		if err != nil {
			return nil, err
		}
		g.Models = append(g.Models, NamedModel{Name: string(Claude4Sonnet), Model: llm})
	}
	if cfg.OpenAIAPIKey != "" {
		llm, err := OpenAI(cfg.OpenAIAPIKey, GPT4oMini, "")
		if err != nil {
			return nil, err
		}
		g.Models = append(g.Models, NamedModel{Name: string(GPT4oMini), Model: llm})
	}
	if cfg.DeepSeekAPIKey != "" {
		llm, err := DeepSeek(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, err
		}
		g.Models = append(g.Models, NamedModel{Name: string(DeepSeekChat), Model: llm})
	}

	if len(g.Models) == 0 {
		return nil, errors.New("no LLM credentials configured: set GOOGLE_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY or DEEPSEEK_API_KEY")
	}
	return g, nil
}

// uniqueNames drops empty and repeated model names, keeping order.
// With both empty the chain falls back to ProModel and DefaultModel.
func uniqueNames(names ...string) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		out = []string{string(ProModel), string(DefaultModel)}
	}
	return out
}

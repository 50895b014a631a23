package config

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/mikeboe/web-researcher/pkg/clients"
	"github.com/mikeboe/web-researcher/pkg/research"
	"github.com/mikeboe/web-researcher/pkg/research/tools"
)

// LLM builds the gateway selected by LLM_BACKEND.
func (c *Config) LLM(ctx context.Context, logger *slog.Logger) (research.LLMGateway, error) {
	switch c.LLMBackend {
	case "", BackendChain:
		g, err := clients.NewChain(ctx, c.Chain(), logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case BackendGenAI:
		g, err := clients.NewGenAIGateway(ctx, &genai.ClientConfig{APIKey: c.GoogleApiKey}, c.FastModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", c.LLMBackend)
	}
}

// NewEngine wires the search provider, scraper and LLM gateway into a research engine.
func (c *Config) NewEngine(ctx context.Context, logger *slog.Logger) (*research.Engine, error) {
	search, err := tools.NewSearchGateway(ctx, c.SearchProvider, c.Providers())
	if err != nil {
		return nil, fmt.Errorf("failed to create search provider: %w", err)
	}
	llm, err := c.LLM(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM gateway: %w", err)
	}

	engine := research.NewEngine(c.Research(), search, tools.NewWebScraper(tools.NewMistralOCR(c.MistralApiKey)), llm)
	if logger != nil {
		engine.Logger = logger
	}
	return engine, nil
}

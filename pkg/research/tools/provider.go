package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikeboe/web-researcher/pkg/research"
)

const (
	ProviderGoogle     = "google"
	ProviderTavily     = "tavily"
	ProviderDuckDuckGo = "duckduckgo"
	ProviderArxiv      = "arxiv"
)

// ProviderConfig carries the credentials a search provider may need.
type ProviderConfig struct {
	GoogleAPIKey string
	GoogleCSEID  string
	TavilyAPIKey string
	MaxResults   int
}

// NewSearchGateway returns the search provider registered under name.
// An empty name picks the first provider whose credentials are present,
// falling back to DuckDuckGo which needs none.
func NewSearchGateway(ctx context.Context, name string, cfg ProviderConfig) (research.SearchGateway, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		switch {
		case cfg.GoogleAPIKey != "" && cfg.GoogleCSEID != "":
			name = ProviderGoogle
		case cfg.TavilyAPIKey != "":
			name = ProviderTavily
		default:
			name = ProviderDuckDuckGo
		}
	}

	switch name {
	case ProviderGoogle:
		g, err := NewGoogle(ctx, cfg.GoogleAPIKey, cfg.GoogleCSEID, cfg.MaxResults)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderTavily:
		if cfg.TavilyAPIKey == "" {
			return nil, fmt.Errorf("tavily search needs TAVILY_API_KEY")
		}
		return NewTavily(cfg.TavilyAPIKey, cfg.MaxResults), nil
	case ProviderDuckDuckGo:
		return NewDuckDuckGo(cfg.MaxResults), nil
	case ProviderArxiv:
		return NewArxiv(cfg.MaxResults), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", name)
	}
}

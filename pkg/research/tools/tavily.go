package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mikeboe/web-researcher/pkg/research"
)

const defaultTavilyURL = "https://api.tavily.com"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey     string
	BaseURL    string
	Depth      string // basic or advanced
	MaxResults int
	client     *http.Client
}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string, maxResults int) *Tavily {
	return NewTavilyWithClient(apiKey, maxResults, &http.Client{Timeout: 30 * time.Second})
}

// NewTavilyWithClient constructs a Tavily search provider using the supplied HTTP client.
func NewTavilyWithClient(apiKey string, maxResults int, client *http.Client) *Tavily {
	return &Tavily{
		APIKey:     apiKey,
		BaseURL:    defaultTavilyURL,
		Depth:      "basic",
		MaxResults: maxResults,
		client:     client,
	}
}

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string) ([]research.SearchHit, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, &research.SearchError{Provider: ProviderTavily, Query: query, Err: errors.New("API key is missing")}
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":        t.APIKey,
		"query":          query,
		"search_depth":   t.Depth,
		"include_answer": false,
		"max_results":    t.MaxResults,
	})
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderTavily, Query: query, Err: err}
	}

	resp, err := doWithBackoff(ctx, t.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(t.BaseURL, "/")+"/search", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderTavily, Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &research.SearchError{Provider: ProviderTavily, Query: query, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	var response struct {
		Results []struct {
			Title     string `json:"title"`
			URL       string `json:"url"`
			Content   string `json:"content"`
			Published string `json:"published_date"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &research.SearchError{Provider: ProviderTavily, Query: query, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	hits := make([]research.SearchHit, 0, len(response.Results))
	for _, r := range response.Results {
		hits = append(hits, research.SearchHit{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Content,
			PublishedAt: r.Published,
			Source:      ProviderTavily,
		})
	}
	return hits, nil
}

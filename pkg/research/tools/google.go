package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/mikeboe/web-researcher/pkg/research"
)

// Google queries the Programmable Search Engine (Custom Search JSON API).
type Google struct {
	EngineID   string
	MaxResults int
	svc        *customsearch.Service
}

// NewGoogle builds a Custom Search client. Extra options (endpoint, HTTP client)
// are passed to the underlying service.
func NewGoogle(ctx context.Context, apiKey, engineID string, maxResults int, opts ...option.ClientOption) (*Google, error) {
	if apiKey == "" || engineID == "" {
		return nil, errors.New("google search needs GOOGLE_API_KEY and GOOGLE_CSE_ID")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}
	return &Google{EngineID: engineID, MaxResults: maxResults, svc: svc}, nil
}

func (g *Google) Search(ctx context.Context, query string) ([]research.SearchHit, error) {
	call := g.svc.Cse.List().Q(query).Cx(g.EngineID)
	if g.MaxResults > 0 {
		// the API caps num at 10
		call = call.Num(int64(min(g.MaxResults, 10)))
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderGoogle, Query: query, Err: err}
	}

	hits := make([]research.SearchHit, 0, len(res.Items))
	for _, item := range res.Items {
		hits = append(hits, research.SearchHit{
			Title:       item.Title,
			URL:         item.Link,
			Snippet:     item.Snippet,
			PublishedAt: publishedTime(item.Pagemap),
			Source:      ProviderGoogle,
		})
	}
	return hits, nil
}

// publishedTime reads article:published_time from the first pagemap metatag block.
func publishedTime(pagemap []byte) string {
	if len(pagemap) == 0 {
		return ""
	}
	var pm struct {
		Metatags []map[string]any `json:"metatags"`
	}
	if err := json.Unmarshal(pagemap, &pm); err != nil || len(pm.Metatags) == 0 {
		return ""
	}
	if v, ok := pm.Metatags[0]["article:published_time"].(string); ok {
		return v
	}
	return ""
}

package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mikeboe/web-researcher/pkg/research"
)

const defaultArxivURL = "https://export.arxiv.org/api/query"

// ArxivEntry struct to hold arXiv entry data
type ArxivEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Summary   string      `xml:"summary"`
	Published string      `xml:"published"`
	Link      []ArxivLink `xml:"link"`
}

// ArxivLink struct to hold arXiv link data
type ArxivLink struct {
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// ArxivFeed struct to hold the entire arXiv feed
type ArxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entry   []ArxivEntry `xml:"entry"`
}

// Arxiv searches the arXiv Atom API. Hits point at the paper's PDF when one is listed.
type Arxiv struct {
	BaseURL    string
	MaxResults int
	Logger     *slog.Logger
	client     *http.Client
}

func NewArxiv(maxResults int) *Arxiv {
	return &Arxiv{
		BaseURL:    defaultArxivURL,
		MaxResults: maxResults,
		Logger:     slog.Default(),
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Search queries the arXiv API.
func (a *Arxiv) Search(ctx context.Context, query string) ([]research.SearchHit, error) {
	maxResults := a.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Add("search_query", "all:"+query)
	params.Add("max_results", strconv.Itoa(maxResults))
	params.Add("start", "0")
	apiURL := a.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderArxiv, Query: query, Err: err}
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderArxiv, Query: query, Err: fmt.Errorf("failed to make API request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		a.Logger.Error("API returned non-200 status code", "status", resp.StatusCode, "body", string(bodyBytes))
		return nil, &research.SearchError{Provider: ProviderArxiv, Query: query, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderArxiv, Query: query, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	a.Logger.Debug("API response body read", "size", len(body))

	var feed ArxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &research.SearchError{Provider: ProviderArxiv, Query: query, Err: fmt.Errorf("failed to unmarshal XML: %w", err)}
	}

	hits := make([]research.SearchHit, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		link := entry.ID
		for _, l := range entry.Link {
			if l.Type == "application/pdf" || l.Title == "pdf" {
				link = l.Href
				break
			}
		}
		hits = append(hits, research.SearchHit{
			Title:       collapseSpace(entry.Title),
			URL:         link,
			Snippet:     collapseSpace(entry.Summary),
			PublishedAt: entry.Published,
			Source:      ProviderArxiv,
		})
	}
	return hits, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

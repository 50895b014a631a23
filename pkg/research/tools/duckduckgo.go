package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mikeboe/web-researcher/pkg/research"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes DuckDuckGo's HTML interface. It needs no API key.
type DuckDuckGo struct {
	BaseURL    string
	MaxResults int
	client     *http.Client
}

func NewDuckDuckGo(maxResults int) *DuckDuckGo {
	return NewDuckDuckGoWithClient(maxResults, &http.Client{Timeout: 15 * time.Second})
}

func NewDuckDuckGoWithClient(maxResults int, client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{BaseURL: defaultDuckDuckGoURL, MaxResults: maxResults, client: client}
}

// Search fetches the result page for query and extracts its result blocks.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]research.SearchHit, error) {
	form := url.Values{}
	form.Set("q", query)

	resp, err := doWithBackoff(ctx, d.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", BrowserUserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return req, nil
	})
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderDuckDuckGo, Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &research.SearchError{Provider: ProviderDuckDuckGo, Query: query, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderDuckDuckGo, Query: query, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	hits, err := parseDuckDuckGoResults(string(body), d.MaxResults)
	if err != nil {
		return nil, &research.SearchError{Provider: ProviderDuckDuckGo, Query: query, Err: err}
	}
	return hits, nil
}

// parseDuckDuckGoResults extracts results from the html.duckduckgo.com markup,
// where each hit is a div with class "result" holding a "result__a" link and a
// "result__snippet" element.
func parseDuckDuckGoResults(content string, maxResults int) ([]research.SearchHit, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	hits := []research.SearchHit{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if maxResults > 0 && len(hits) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") && !hasClass(n, "result--ad") {
			if hit := extractDuckDuckGoResult(n); hit.URL != "" && hit.Title != "" {
				hits = append(hits, hit)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits, nil
}

func extractDuckDuckGoResult(n *html.Node) research.SearchHit {
	hit := research.SearchHit{Source: ProviderDuckDuckGo}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				hit.URL = resolveDuckDuckGoLink(attr(n, "href"))
				hit.Title = textContent(n)
			case hasClass(n, "result__snippet"):
				hit.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return hit
}

// resolveDuckDuckGoLink unwraps the //duckduckgo.com/l/?uddg= redirect.
func resolveDuckDuckGoLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the whitespace-collapsed text below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mikeboe/web-researcher/pkg/research"
)

// DefaultMaxWords caps the text kept from one page.
const DefaultMaxWords = 10000

const maxPageBytes = 5 << 20

// skippedTags hold boilerplate or non-text content.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"svg":      true,
	"template": true,
	"iframe":   true,
}

// blockTags end the current line of text.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "ul": true, "ol": true, "main": true,
}

// WebScraper fetches pages over HTTP and reduces them to plain text.
// PDFs are sent to OCR when one is configured.
type WebScraper struct {
	OCR      *MistralOCR
	MaxWords int
	client   *http.Client
}

func NewWebScraper(ocr *MistralOCR) *WebScraper {
	return NewWebScraperWithClient(ocr, &http.Client{Timeout: 10 * time.Second})
}

func NewWebScraperWithClient(ocr *MistralOCR, client *http.Client) *WebScraper {
	return &WebScraper{OCR: ocr, MaxWords: DefaultMaxWords, client: client}
}

// Fetch implements research.Scraper. Every failure is a *research.FetchError.
func (s *WebScraper) Fetch(ctx context.Context, rawURL string) (research.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return research.Page{}, &research.FetchError{URL: rawURL, Err: fmt.Errorf("invalid url")}
	}

	if strings.EqualFold(path.Ext(u.Path), ".pdf") {
		return s.fetchPDF(ctx, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return research.Page{}, &research.FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return research.Page{}, &research.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return research.Page{}, &research.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	body := io.LimitReader(resp.Body, maxPageBytes)

	switch {
	case mediaType == "application/pdf":
		return s.fetchPDF(ctx, rawURL)
	case mediaType == "" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		title, text, err := extractText(body, s.maxWords())
		if err != nil {
			return research.Page{}, &research.FetchError{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
		}
		return pageOrEmpty(rawURL, title, text)
	case strings.HasPrefix(mediaType, "text/"):
		raw, err := io.ReadAll(body)
		if err != nil {
			return research.Page{}, &research.FetchError{URL: rawURL, Err: err}
		}
		return pageOrEmpty(rawURL, "", limitWords(string(raw), s.maxWords()))
	default:
		return research.Page{}, &research.FetchError{URL: rawURL, Err: fmt.Errorf("%w: %s", research.ErrNonText, mediaType)}
	}
}

func (s *WebScraper) fetchPDF(ctx context.Context, rawURL string) (research.Page, error) {
	if s.OCR == nil {
		return research.Page{}, &research.FetchError{URL: rawURL, Err: fmt.Errorf("%w: pdf without OCR", research.ErrNonText)}
	}
	text, err := s.OCR.Extract(ctx, rawURL)
	if err != nil {
		return research.Page{}, &research.FetchError{URL: rawURL, Err: err}
	}
	return pageOrEmpty(rawURL, "", limitWords(text, s.maxWords()))
}

func (s *WebScraper) maxWords() int {
	if s.MaxWords <= 0 {
		return DefaultMaxWords
	}
	return s.MaxWords
}

func pageOrEmpty(rawURL, title, text string) (research.Page, error) {
	if strings.TrimSpace(text) == "" {
		return research.Page{}, &research.FetchError{URL: rawURL, Err: fmt.Errorf("%w: page has no text", research.ErrNonText)}
	}
	return research.Page{URL: rawURL, Title: title, Text: text}, nil
}

// extractText walks the HTML token stream and keeps visible text, one line per block element.
func extractText(r io.Reader, maxWords int) (string, string, error) {
	z := html.NewTokenizer(r)

	var (
		title   string
		inTitle bool
		skip    int
		words   int
		lines   []string
		line    []string
	)
	flush := func() {
		if len(line) > 0 {
			lines = append(lines, strings.Join(line, " "))
			line = line[:0]
		}
	}

	for words < maxWords {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				flush()
				return title, strings.Join(lines, "\n"), nil
			}
			return "", "", z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedTags[tag] && tt == html.StartTagToken {
				skip++
			}
			if tag == "title" && tt == html.StartTagToken {
				inTitle = true
			}
			if blockTags[tag] {
				flush()
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedTags[tag] && skip > 0 {
				skip--
			}
			if tag == "title" {
				inTitle = false
			}
			if blockTags[tag] {
				flush()
			}

		case html.TextToken:
			if inTitle {
				if title == "" {
					title = strings.Join(strings.Fields(string(z.Text())), " ")
				}
				continue
			}
			if skip > 0 {
				continue
			}
			for _, w := range strings.Fields(string(z.Text())) {
				if words >= maxWords {
					break
				}
				line = append(line, w)
				words++
			}
		}
	}

	flush()
	return title, strings.Join(lines, "\n"), nil
}

// limitWords keeps the first n words of s, preserving line breaks.
func limitWords(s string, n int) string {
	var out []string
	words := 0
	for _, l := range strings.Split(s, "\n") {
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}
		if words+len(fields) > n {
			fields = fields[:n-words]
		}
		out = append(out, strings.Join(fields, " "))
		words += len(fields)
		if words >= n {
			break
		}
	}
	return strings.Join(out, "\n")
}

package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errFake = errors.New("fake failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeLLM answers every mode deterministically from per-URL tables.
// A mode listed in fail always returns an error.
type fakeLLM struct {
	queries     []string
	relevance   map[string]float64
	importance  map[string]float64
	unscored    map[string]bool // summarize omits importance for these URLs
	noActions   map[string]bool
	rescored    map[string]float64 // score_importance answers; missing URL fails
	fail        map[Mode]bool

	mu    sync.Mutex
	calls map[Mode]int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[Mode]int{}
	}
	f.calls[mode]++
	f.mu.Unlock()

	if f.fail[mode] {
		return "", &LLMError{Mode: mode, Err: errFake}
	}

	switch mode {
	case ModeGenerateQueries:
		quoted := make([]string, len(f.queries))
		for i, q := range f.queries {
			quoted[i] = fmt.Sprintf("%q", q)
		}
		return fmt.Sprintf("```json\n{\"queries\": [%s]}\n```", strings.Join(quoted, ", ")), nil

	case ModeScoreRelevance:
		var items []string
		id := -1
		for _, line := range strings.Split(prompt, "\n") {
			if strings.HasPrefix(line, "ID: ") {
				fmt.Sscanf(line, "ID: %d", &id)
			}
			if strings.HasPrefix(line, "URL: ") && id >= 0 {
				url := strings.TrimPrefix(line, "URL: ")
				if score, ok := f.relevance[url]; ok {
					items = append(items, fmt.Sprintf(`{"id": %d, "score": %v, "reason": "matches %s"}`, id, score, url))
				}
			}
		}
		return fmt.Sprintf(`{"scores": [%s]}`, strings.Join(items, ",")), nil

	case ModeSummarize:
		url := promptURL(prompt)
		if f.unscored[url] {
			return fmt.Sprintf(`{"summary": "About %s", "relevance_rating": "Relevant", "explanation": "ok"}`, url), nil
		}
		return fmt.Sprintf(`{"summary": "About %s", "importance": %v, "relevance_rating": "very relevant", "explanation": "covers the topic"}`,
			url, f.importance[url]), nil

	case ModeSuggestActions:
		if f.noActions[fakeTitleURL(prompt)] {
			return `{"next_actions": []}`, nil
		}
		return `{"next_actions": ["1. Read the full article", "- Contact the authors", "Read the full article"]}`, nil

	case ModeScoreImportance:
		url := promptURL(prompt)
		score, ok := f.rescored[url]
		if !ok {
			return "", &LLMError{Mode: mode, Err: errFake}
		}
		return fmt.Sprintf(`{"importance": %v}`, score), nil
	}
	return "", fmt.Errorf("unexpected mode %s", mode)
}

func (f *fakeLLM) callCount(mode Mode) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[mode]
}

func promptURL(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "URL: ") {
			return strings.TrimPrefix(line, "URL: ")
		}
	}
	return ""
}

// fakeTitleURL reads the title line of a suggest_actions prompt; fake pages use the URL as title.
func fakeTitleURL(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Title: ") {
			return strings.TrimPrefix(line, "Title: ")
		}
	}
	return ""
}

// fakeSearch answers from hits. Queries in block wait for their context to end.
type fakeSearch struct {
	hits  map[string][]SearchHit
	fail  map[string]bool
	block map[string]bool

	mu      sync.Mutex
	queries []string
}

func (s *fakeSearch) Search(ctx context.Context, query string) ([]SearchHit, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if s.block[query] {
		<-ctx.Done()
		return nil, &SearchError{Provider: "fake", Query: query, Err: ctx.Err()}
	}
	if s.fail[query] || s.fail["*"] {
		return nil, &SearchError{Provider: "fake", Query: query, Err: errFake}
	}
	return s.hits[query], nil
}

type fakeScraper struct {
	fail  map[string]bool
	block map[string]bool
	text  map[string]string
}

func (s *fakeScraper) Fetch(ctx context.Context, url string) (Page, error) {
	if s.block[url] {
		<-ctx.Done()
		return Page{}, &FetchError{URL: url, Err: ctx.Err()}
	}
	if s.fail[url] || s.fail["*"] {
		return Page{}, &FetchError{URL: url, StatusCode: 404, Err: errFake}
	}
	text := s.text[url]
	if text == "" {
		text = "Page body for " + url
	}
	return Page{URL: url, Title: url, Text: text}, nil
}

func hit(url string) SearchHit {
	return SearchHit{Title: "Title " + url, URL: url, Snippet: "Snippet " + url}
}

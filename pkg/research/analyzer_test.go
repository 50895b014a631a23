package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers each mode with a fixed string.
type scriptedLLM struct {
	answers map[Mode]string
	prompts map[Mode]string
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	if s.prompts == nil {
		s.prompts = map[Mode]string{}
	}
	s.prompts[mode] = prompt
	answer, ok := s.answers[mode]
	if !ok {
		return "", errFake
	}
	return answer, nil
}

func candidate(url string) RankedResult {
	return RankedResult{SearchHit: SearchHit{Title: "Snippet title", URL: url}, Relevance: 7, Rank: 1}
}

func TestContentAnalyzerBoundsOutput(t *testing.T) {
	longSummary := strings.Repeat("word ", 250)
	llm := &scriptedLLM{answers: map[Mode]string{
		ModeSummarize: `{"summary": "` + longSummary + `", "importance": 7.5, "relevance_rating": " Very  Relevant ", "explanation": "good"}`,
		ModeSuggestActions: `{"next_actions": ["1. one", "2. two", "3. three", "4. four", "5. five", "6. six"]}`,
	}}
	scraper := &fakeScraper{text: map[string]string{
		u(1): "Contact press@example.com or +1 (555) 123-4567. Follow https://twitter.com/example_lab",
	}}
	a := &ContentAnalyzer{Scraper: scraper, LLM: llm, MaxContentChars: 1000, Logger: discardLogger()}

	got, err := a.Analyze(context.Background(), "objective", candidate(u(1)))
	require.NoError(t, err)

	assert.Equal(t, u(1), got.URL)
	assert.Equal(t, u(1), got.Title, "page title wins over snippet title")
	assert.Len(t, strings.Fields(got.Summary), maxSummaryWords)
	assert.Equal(t, 7.5, got.Importance)
	assert.True(t, got.ImportanceScored)
	assert.Equal(t, "very relevant", got.RelevanceRating)
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, got.NextActions)
	assert.Equal(t, []string{"press@example.com"}, got.Contacts.Emails)
	assert.Equal(t, []string{"https://twitter.com/example_lab"}, got.Contacts.SocialMedia)
	assert.Len(t, got.Contacts.Phones, 1)
}

func TestContentAnalyzerTruncatesPageText(t *testing.T) {
	llm := &scriptedLLM{answers: map[Mode]string{
		ModeSummarize:      `{"summary": "s", "importance": 5, "relevance_rating": "relevant"}`,
		ModeSuggestActions: `{"next_actions": ["act"]}`,
	}}
	page := strings.Repeat("lorem ipsum dolor sit amet ", 400)
	scraper := &fakeScraper{text: map[string]string{u(1): page}}
	a := &ContentAnalyzer{Scraper: scraper, LLM: llm, MaxContentChars: 500, Logger: discardLogger()}

	_, err := a.Analyze(context.Background(), "objective", candidate(u(1)))
	require.NoError(t, err)

	prompt := llm.prompts[ModeSummarize]
	assert.NotContains(t, prompt, page)
	assert.Less(t, len(prompt), len(page))
}

func TestContentAnalyzerImportanceSentinel(t *testing.T) {
	tests := []struct {
		name    string
		summary string
	}{
		{"Missing", `{"summary": "s", "relevance_rating": "relevant"}`},
		{"Out of range", `{"summary": "s", "importance": 42}`},
		{"Negative", `{"summary": "s", "importance": -3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{answers: map[Mode]string{
				ModeSummarize:      tt.summary,
				ModeSuggestActions: `{"next_actions": ["act"]}`,
			}}
			a := &ContentAnalyzer{Scraper: &fakeScraper{}, LLM: llm, Logger: discardLogger()}

			got, err := a.Analyze(context.Background(), "objective", candidate(u(1)))
			require.NoError(t, err)
			assert.False(t, got.ImportanceScored)
			assert.Equal(t, SentinelScore, got.Importance)
		})
	}
}

func TestContentAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name      string
		scraper   *fakeScraper
		answers   map[Mode]string
		wantFetch bool
		wantMode  Mode
	}{
		{
			name:      "Fetch failure",
			scraper:   &fakeScraper{fail: map[string]bool{u(1): true}},
			wantFetch: true,
		},
		{
			name:     "Summarize failure",
			scraper:  &fakeScraper{},
			answers:  map[Mode]string{},
			wantMode: ModeSummarize,
		},
		{
			name:     "Malformed summary",
			scraper:  &fakeScraper{},
			answers:  map[Mode]string{ModeSummarize: "no json here"},
			wantMode: ModeSummarize,
		},
		{
			name:    "No actions",
			scraper: &fakeScraper{},
			answers: map[Mode]string{
				ModeSummarize:      `{"summary": "s", "importance": 5}`,
				ModeSuggestActions: `{"next_actions": ["  ", ""]}`,
			},
			wantMode: ModeSuggestActions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &ContentAnalyzer{Scraper: tt.scraper, LLM: &scriptedLLM{answers: tt.answers}, Logger: discardLogger()}

			_, err := a.Analyze(context.Background(), "objective", candidate(u(1)))
			require.Error(t, err)

			if tt.wantFetch {
				var fe *FetchError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, u(1), fe.URL)
				return
			}
			var le *LLMError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.wantMode, le.Mode)
		})
	}
}

func TestExtractContacts(t *testing.T) {
	text := `Reach a@x.io, b@x.io, a@x.io, c@x.io, d@x.io, e@x.io and f@x.io.
Call 555-123-4567 or (555) 987-6543.
https://www.linkedin.com/company/acme and facebook.com/acme.`

	got := ExtractContacts(text)
	assert.Equal(t, []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io"}, got.Emails)
	assert.Equal(t, []string{"555-123-4567", "(555) 987-6543"}, got.Phones)
	assert.Equal(t, []string{"https://www.linkedin.com/company", "facebook.com/acme"}, got.SocialMedia)
}

func TestExtractContactsEmpty(t *testing.T) {
	got := ExtractContacts("nothing to see")
	assert.Empty(t, got.Emails)
	assert.Empty(t, got.Phones)
	assert.Empty(t, got.SocialMedia)
}

package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mikeboe/web-researcher/pkg/splitter"
)

const (
	maxSummaryWords     = 200
	maxExplanationWords = 100
	maxNextActions      = 5
)

// relevanceRatings are the labels the summarize prompt allows.
var relevanceRatings = []string{"very relevant", "relevant", "somewhat relevant", "not relevant"}

// errNoActions drops an analysis that produced nothing a researcher could act on.
var errNoActions = errors.New("no next actions suggested")

// ContentAnalyzer scrapes a page and judges its content against the research objective.
type ContentAnalyzer struct {
	Scraper         Scraper
	LLM             LLMGateway
	MaxContentChars int
	Timeout         time.Duration
	Logger          *slog.Logger
}

// Analyze fetches candidate.URL and returns its AnalyzedResult.
// Any fetch or LLM failure is returned so the caller can drop the candidate.
func (a *ContentAnalyzer) Analyze(ctx context.Context, researchQuery string, candidate RankedResult) (AnalyzedResult, error) {
	page, err := a.fetch(ctx, candidate.URL)
	if err != nil {
		return AnalyzedResult{}, err
	}
	if strings.TrimSpace(page.Text) == "" {
		return AnalyzedResult{}, &FetchError{URL: candidate.URL, Err: ErrNonText}
	}

	title := page.Title
	if title == "" {
		title = candidate.Title
	}
	page.Title = title
	page.Text = splitter.Fit(page.Text, a.MaxContentChars)

	content, err := a.complete(ctx, summarizePrompt(researchQuery, page), ModeSummarize)
	if err != nil {
		return AnalyzedResult{}, err
	}
	var summary struct {
		Summary         string   `json:"summary"`
		Importance      *float64 `json:"importance"`
		RelevanceRating string   `json:"relevance_rating"`
		Explanation     string   `json:"explanation"`
	}
	if err := decodeJSON(content, &summary); err != nil {
		return AnalyzedResult{}, &LLMError{Mode: ModeSummarize, Err: err}
	}
	if strings.TrimSpace(summary.Summary) == "" {
		return AnalyzedResult{}, &LLMError{Mode: ModeSummarize, Err: fmt.Errorf("%w: empty summary", ErrMalformedResponse)}
	}

	result := AnalyzedResult{
		Title:           title,
		URL:             candidate.URL,
		Summary:         truncateWords(summary.Summary, maxSummaryWords),
		Importance:      SentinelScore,
		RelevanceRating: normalizeRating(summary.RelevanceRating),
		Explanation:     truncateWords(summary.Explanation, maxExplanationWords),
		Contacts:        ExtractContacts(page.Text),
	}
	if summary.Importance != nil && validScore(*summary.Importance) {
		result.Importance = *summary.Importance
		result.ImportanceScored = true
	}

	content, err = a.complete(ctx, suggestActionsPrompt(researchQuery, title, result.Summary, maxNextActions), ModeSuggestActions)
	if err != nil {
		return AnalyzedResult{}, err
	}
	var actions struct {
		NextActions []string `json:"next_actions"`
	}
	if err := decodeJSON(content, &actions); err != nil {
		return AnalyzedResult{}, &LLMError{Mode: ModeSuggestActions, Err: err}
	}
	result.NextActions = cleanList(actions.NextActions, maxNextActions)
	if len(result.NextActions) == 0 {
		return AnalyzedResult{}, &LLMError{Mode: ModeSuggestActions, Err: errNoActions}
	}

	orDefault(a.Logger).Debug("Analyzed source", "url", result.URL, "importance", result.Importance, "actions", len(result.NextActions))
	return result, nil
}

func (a *ContentAnalyzer) fetch(ctx context.Context, url string) (Page, error) {
	callCtx, cancel := callContext(ctx, a.Timeout)
	defer cancel()

	page, err := a.Scraper.Fetch(callCtx, url)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return Page{}, err
		}
		return Page{}, &FetchError{URL: url, Err: err}
	}
	return page, nil
}

func (a *ContentAnalyzer) complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	callCtx, cancel := callContext(ctx, a.Timeout)
	defer cancel()

	content, err := a.LLM.Complete(callCtx, prompt, mode)
	if err != nil {
		var le *LLMError
		if errors.As(err, &le) {
			return "", err
		}
		return "", &LLMError{Mode: mode, Err: err}
	}
	return content, nil
}

// normalizeRating maps a model's rating onto the known labels, or returns "" if none match.
func normalizeRating(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	for _, r := range relevanceRatings {
		if s == r {
			return r
		}
	}
	return ""
}

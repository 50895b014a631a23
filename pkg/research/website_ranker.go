package research

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// WebsiteRanker orders analyzed pages by content importance.
type WebsiteRanker struct {
	LLM         LLMGateway
	Concurrency int
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Rank scores every item whose importance is not yet trusted, then sorts by
// descending importance with ties in input order. The input slice is not modified.
// Items that stay unscored keep SentinelScore, so a second pass yields the same order.
func (w *WebsiteRanker) Rank(ctx context.Context, researchQuery string, items []AnalyzedResult) []AnalyzedResult {
	ranked := make([]AnalyzedResult, len(items))
	copy(ranked, items)

	g := new(errgroup.Group)
	g.SetLimit(max(w.Concurrency, 1))
	for i := range ranked {
		if ranked[i].ImportanceScored {
			continue
		}
		g.Go(func() error {
			if score, ok := w.score(ctx, researchQuery, ranked[i]); ok {
				ranked[i].Importance = score
				ranked[i].ImportanceScored = true
			} else {
				ranked[i].Importance = SentinelScore
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}

func (w *WebsiteRanker) score(ctx context.Context, researchQuery string, item AnalyzedResult) (float64, bool) {
	callCtx, cancel := callContext(ctx, w.Timeout)
	defer cancel()

	content, err := w.LLM.Complete(callCtx, scoreImportancePrompt(researchQuery, item), ModeScoreImportance)
	if err != nil {
		orDefault(w.Logger).Warn("Importance scoring failed", "stage", "final_rank", "url", item.URL, "error", err)
		return 0, false
	}

	var resp struct {
		Importance *float64 `json:"importance"`
	}
	if err := decodeJSON(content, &resp); err != nil {
		orDefault(w.Logger).Warn("Importance score malformed", "stage", "final_rank", "url", item.URL, "error", err)
		return 0, false
	}
	if resp.Importance == nil || !validScore(*resp.Importance) {
		orDefault(w.Logger).Warn("Importance score missing or out of range", "stage", "final_rank", "url", item.URL)
		return 0, false
	}
	return *resp.Importance, true
}

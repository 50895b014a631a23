package research

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// SearchRanker scores search hits on title and snippet against the research objective.
type SearchRanker struct {
	LLM         LLMGateway
	BatchSize   int
	Concurrency int
	Timeout     time.Duration
	Logger      *slog.Logger
}

type relevanceScore struct {
	score  float64
	reason string
	ok     bool
}

// Rank returns one RankedResult per hit, sorted by descending relevance.
// Ties keep discovery order. Hits whose batch fails or that the model skips get SentinelScore.
func (r *SearchRanker) Rank(ctx context.Context, researchQuery string, hits []SearchHit) []RankedResult {
	if len(hits) == 0 {
		return []RankedResult{}
	}

	size := r.BatchSize
	if size <= 0 {
		size = len(hits)
	}

	scores := make([]relevanceScore, len(hits))

	g := new(errgroup.Group)
	g.SetLimit(max(r.Concurrency, 1))
	for start := 0; start < len(hits); start += size {
		end := min(start+size, len(hits))
		g.Go(func() error {
			r.scoreBatch(ctx, researchQuery, hits[start:end], scores[start:end])
			return nil
		})
	}
	_ = g.Wait()

	ranked := make([]RankedResult, len(hits))
	for i, h := range hits {
		ranked[i] = RankedResult{SearchHit: h, Relevance: SentinelScore}
		if scores[i].ok {
			ranked[i].Relevance = scores[i].score
			ranked[i].Explanation = scores[i].reason
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// scoreBatch fills out, which is aligned with batch. Batch-local ids are used in the prompt.
func (r *SearchRanker) scoreBatch(ctx context.Context, researchQuery string, batch []SearchHit, out []relevanceScore) {
	callCtx, cancel := callContext(ctx, r.Timeout)
	defer cancel()

	content, err := r.LLM.Complete(callCtx, scoreRelevancePrompt(researchQuery, batch), ModeScoreRelevance)
	if err != nil {
		orDefault(r.Logger).Warn("Relevance scoring failed for batch", "stage", "rank", "size", len(batch), "error", err)
		return
	}

	var resp struct {
		Scores []struct {
			ID     int     `json:"id"`
			Score  float64 `json:"score"`
			Reason string  `json:"reason"`
		} `json:"scores"`
	}
	if err := decodeJSON(content, &resp); err != nil {
		orDefault(r.Logger).Warn("Relevance scores malformed", "stage", "rank", "size", len(batch), "error", err)
		return
	}

	for _, s := range resp.Scores {
		if s.ID < 0 || s.ID >= len(batch) || out[s.ID].ok {
			continue
		}
		if !validScore(s.Score) {
			orDefault(r.Logger).Warn("Relevance score out of range", "stage", "rank", "url", batch[s.ID].URL, "score", s.Score)
			continue
		}
		out[s.ID] = relevanceScore{score: s.Score, reason: truncateWords(s.Reason, 100), ok: true}
	}
}

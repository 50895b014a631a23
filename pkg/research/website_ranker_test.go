package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func analyzed(url string, importance float64, scored bool) AnalyzedResult {
	if !scored {
		importance = SentinelScore
	}
	return AnalyzedResult{
		Title:            url,
		URL:              url,
		Summary:          "About " + url,
		Importance:       importance,
		ImportanceScored: scored,
		NextActions:      []string{"Read it"},
	}
}

func TestWebsiteRankerOrdersByImportance(t *testing.T) {
	items := []AnalyzedResult{
		analyzed(u(1), 3, true),
		analyzed(u(2), 0, false),
		analyzed(u(3), 8, true),
		analyzed(u(4), 0, false),
		analyzed(u(5), 3, true),
	}
	llm := &fakeLLM{rescored: map[string]float64{u(2): 9}}
	w := &WebsiteRanker{LLM: llm, Concurrency: 2, Logger: discardLogger()}

	got := w.Rank(context.Background(), "objective", items)
	assert.Equal(t, []string{u(2), u(3), u(1), u(5), u(4)}, analyzedURLs(got))
	assert.True(t, got[0].ImportanceScored)
	assert.Equal(t, 9.0, got[0].Importance)
	assert.False(t, got[4].ImportanceScored)
	assert.Equal(t, SentinelScore, got[4].Importance)

	// only untrusted scores were requested
	assert.Equal(t, 2, llm.callCount(ModeScoreImportance))

	// input untouched
	assert.False(t, items[1].ImportanceScored)
	assert.Equal(t, u(1), items[0].URL)
}

func TestWebsiteRankerIdempotent(t *testing.T) {
	items := []AnalyzedResult{
		analyzed(u(1), 5, true),
		analyzed(u(2), 0, false),
		analyzed(u(3), 5, true),
		analyzed(u(4), 0, false),
		analyzed(u(5), 7, true),
	}
	llm := &fakeLLM{rescored: map[string]float64{u(4): 5}}
	w := &WebsiteRanker{LLM: llm, Concurrency: 3, Logger: discardLogger()}

	once := w.Rank(context.Background(), "objective", items)
	twice := w.Rank(context.Background(), "objective", once)
	assert.Equal(t, analyzedURLs(once), analyzedURLs(twice))
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{u(5), u(1), u(3), u(4), u(2)}, analyzedURLs(once))
}

func TestWebsiteRankerKeepsRelevanceFieldsApart(t *testing.T) {
	item := analyzed(u(1), 0, false)
	item.RelevanceRating = "somewhat relevant"
	llm := &fakeLLM{rescored: map[string]float64{u(1): 6}}
	w := &WebsiteRanker{LLM: llm, Logger: discardLogger()}

	got := w.Rank(context.Background(), "objective", []AnalyzedResult{item})
	assert.Equal(t, 6.0, got[0].Importance)
	assert.Equal(t, "somewhat relevant", got[0].RelevanceRating)
}

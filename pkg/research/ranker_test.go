package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRankerStableTies(t *testing.T) {
	hits := []SearchHit{hit(u(1)), hit(u(2)), hit(u(3)), hit(u(4)), hit(u(5))}
	llm := &fakeLLM{relevance: map[string]float64{u(1): 5, u(2): 8, u(3): 5, u(4): 8, u(5): 5}}
	r := &SearchRanker{LLM: llm, BatchSize: 2, Concurrency: 2, Logger: discardLogger()}

	got := r.Rank(context.Background(), "objective", hits)
	assert.Equal(t, []string{u(2), u(4), u(1), u(3), u(5)}, rankedURLs(got))
	assert.Equal(t, "matches "+u(2), got[0].Explanation)
	assert.Equal(t, 3, llm.callCount(ModeScoreRelevance))
}

func TestSearchRankerSentinelForUnscored(t *testing.T) {
	hits := []SearchHit{hit(u(1)), hit(u(2)), hit(u(3))}
	llm := &fakeLLM{relevance: map[string]float64{u(1): 2, u(2): 11, u(3): 0}}
	r := &SearchRanker{LLM: llm, BatchSize: 10, Concurrency: 1, Logger: discardLogger()}

	got := r.Rank(context.Background(), "objective", hits)
	require.Len(t, got, 3)
	assert.Equal(t, []string{u(1), u(3), u(2)}, rankedURLs(got))
	assert.Equal(t, SentinelScore, got[2].Relevance, "out of range score is discarded")
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestSearchRankerBatchFailure(t *testing.T) {
	hits := []SearchHit{hit(u(1)), hit(u(2))}
	llm := &fakeLLM{fail: map[Mode]bool{ModeScoreRelevance: true}}
	r := &SearchRanker{LLM: llm, Logger: discardLogger()}

	got := r.Rank(context.Background(), "objective", hits)
	assert.Equal(t, []string{u(1), u(2)}, rankedURLs(got))
	for _, g := range got {
		assert.Equal(t, SentinelScore, g.Relevance)
	}
}

func TestSearchRankerDeterministic(t *testing.T) {
	hits := []SearchHit{hit(u(1)), hit(u(2)), hit(u(3)), hit(u(4))}
	llm := &fakeLLM{relevance: map[string]float64{u(1): 3, u(2): 3, u(3): 7, u(4): 1}}
	r := &SearchRanker{LLM: llm, BatchSize: 3, Concurrency: 4, Logger: discardLogger()}

	first := r.Rank(context.Background(), "objective", hits)
	second := r.Rank(context.Background(), "objective", hits)
	assert.Equal(t, first, second)
}

func TestSearchRankerEmpty(t *testing.T) {
	llm := &fakeLLM{}
	r := &SearchRanker{LLM: llm}

	got := r.Rank(context.Background(), "objective", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, llm.callCount(ModeScoreRelevance))
}

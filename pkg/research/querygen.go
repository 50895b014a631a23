package research

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// QueryGenerator turns a research objective into a small set of search queries.
type QueryGenerator struct {
	LLM      LLMGateway
	Count    int
	Language string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Generate returns the initial query followed by up to Count-1 generated queries.
// It never fails: on any LLM or parse error the result is just the initial query.
func (g *QueryGenerator) Generate(ctx context.Context, researchQuery, initialQuery string) SearchQuerySet {
	fallback := SearchQuerySet{initialQuery}
	if g.Count <= 1 {
		return fallback
	}

	prompt := generateQueriesPrompt(researchQuery, initialQuery, g.Count-1, g.Language)

	callCtx, cancel := callContext(ctx, g.Timeout)
	defer cancel()
	content, err := g.LLM.Complete(callCtx, prompt, ModeGenerateQueries)
	if err != nil {
		orDefault(g.Logger).Warn("Query generation failed, using initial query", "stage", "generate_queries", "error", err)
		return fallback
	}

	var resp struct {
		Queries []string `json:"queries"`
	}
	if err := decodeJSON(content, &resp); err != nil {
		orDefault(g.Logger).Warn("Query generation returned malformed output", "stage", "generate_queries", "error", err)
		return fallback
	}

	queries := mergeQueries(initialQuery, resp.Queries, g.Count)
	orDefault(g.Logger).Info("Generated queries", "queries", queries)
	return queries
}

// mergeQueries puts the initial query first and drops blank and repeated entries.
// Queries are compared case-insensitively with collapsed whitespace.
func mergeQueries(initial string, generated []string, limit int) SearchQuerySet {
	key := func(q string) string {
		return strings.ToLower(strings.Join(strings.Fields(q), " "))
	}

	out := SearchQuerySet{initial}
	seen := map[string]bool{key(initial): true}
	for _, q := range generated {
		if len(out) >= limit {
			break
		}
		q = strings.TrimSpace(strings.Trim(strings.TrimSpace(q), `"`))
		k := key(q)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, q)
	}
	return out
}

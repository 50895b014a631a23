package research

import (
	"context"
	"errors"
	"strings"
)

// SuggestObjectives asks the model for up to count research objectives related to initialQuery.
// It backs the interactive CLI, which lets the user pick one before a run.
func SuggestObjectives(ctx context.Context, llm LLMGateway, initialQuery string, count int) ([]string, error) {
	initialQuery = strings.TrimSpace(initialQuery)
	if initialQuery == "" {
		return nil, &InvalidRequestError{Field: "initial_query", Reason: "must not be empty"}
	}
	if count <= 0 {
		count = DefaultQueryCount
	}

	content, err := llm.Complete(ctx, suggestObjectivesPrompt(initialQuery, count), ModeFreeform)
	if err != nil {
		return nil, err
	}

	objectives := parseObjectives(content, count)
	if len(objectives) == 0 {
		return nil, &LLMError{Mode: ModeFreeform, Err: errors.New("no objectives in response")}
	}
	return objectives, nil
}

// parseObjectives reads one objective per line. When some lines are quoted, as the prompt
// asks, only those count; this drops any preamble the model adds.
func parseObjectives(content string, limit int) []string {
	var quoted, plain []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		if unq := strings.Trim(line, "\"“”"); unq != line {
			quoted = append(quoted, strings.TrimSpace(unq))
			continue
		}
		plain = append(plain, line)
	}
	if len(quoted) > 0 {
		return cleanList(quoted, limit)
	}
	return cleanList(plain, limit)
}

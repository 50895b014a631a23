package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

// decodeJSON extracts the first JSON object from a model answer and decodes it.
// Models sometimes wrap JSON in markdown fences or add a sentence around it.
func decodeJSON(content string, v any) error {
	s := strings.TrimSpace(content)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no json object in %q", ErrMalformedResponse, truncateRunes(s, 200))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// truncateRunes cuts s to at most n runes without splitting UTF-8 sequences.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// truncateWords keeps the first n words of s.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

// cleanList trims entries, strips list markers and drops empty and repeated items.
func cleanList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(item), ""))
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

// validScore reports whether s lies on the 0-10 scale used by every scoring prompt.
func validScore(s float64) bool {
	return s >= 0 && s <= 10
}

// callContext bounds a single external call. A zero timeout leaves ctx untouched.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

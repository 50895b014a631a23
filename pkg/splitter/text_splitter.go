package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// DefaultChunkSize is the chunk size Fit splits page text into.
const DefaultChunkSize = 1000

// TextSplitter wraps the langchaingo text splitter
type TextSplitter struct {
	splitter textsplitter.TextSplitter
}

// NewRecursiveCharacterTextSplitter creates a new recursive character text splitter
func NewRecursiveCharacterTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	return &TextSplitter{splitter: ts}
}

// SplitText splits text into chunks
func (ts *TextSplitter) SplitText(text string) ([]string, error) {
	return ts.splitter.SplitText(text)
}

// Fit returns the leading part of text that fits into maxChars runes.
// The cut falls on a paragraph, line or word boundary whenever the splitter finds one.
func Fit(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	ts := NewRecursiveCharacterTextSplitter(min(DefaultChunkSize, maxChars), 0)
	chunks, err := ts.SplitText(text)
	if err != nil || len(chunks) == 0 {
		return truncate(text, maxChars)
	}

	var sb strings.Builder
	used := 0
	for _, chunk := range chunks {
		n := utf8.RuneCountInString(chunk)
		sep := 0
		if used > 0 {
			sep = 1
		}
		if used+sep+n > maxChars {
			break
		}
		if sep == 1 {
			sb.WriteByte('\n')
		}
		sb.WriteString(chunk)
		used += sep + n
	}
	if used == 0 {
		return truncate(text, maxChars)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

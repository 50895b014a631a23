package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	ts := NewRecursiveCharacterTextSplitter(30, 0)
	chunks, err := ts.SplitText("first paragraph here\n\nsecond paragraph here")
	require.NoError(t, err)
	assert.Equal(t, []string{"first paragraph here", "second paragraph here"}, chunks)
}

func TestFit(t *testing.T) {
	first := strings.Repeat("alpha ", 30)
	second := strings.Repeat("beta ", 30)
	third := strings.Repeat("gamma ", 30)
	text := first + "\n\n" + second + "\n\n" + third

	tests := []struct {
		name     string
		text     string
		maxChars int
	}{
		{"Paragraphs", text, 400},
		{"Tight budget", text, 50},
		{"Single long word", strings.Repeat("x", 300), 40},
		{"Multibyte", strings.Repeat("größe ", 100), 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.text, tt.maxChars)
			assert.NotEmpty(t, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.maxChars)
			assert.True(t, utf8.ValidString(got))
		})
	}

	got := Fit(text, 400)
	assert.Contains(t, got, "alpha")
	assert.NotContains(t, got, "gamma")
}

func TestFitShortText(t *testing.T) {
	assert.Equal(t, "short", Fit("short", 100))
	assert.Equal(t, "no limit", Fit("no limit", 0))
}

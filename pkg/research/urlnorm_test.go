package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{"Scheme ignored", "http://example.com/a", "https://example.com/a", true},
		{"Host case and www", "https://WWW.Example.com/a", "https://example.com/a", true},
		{"Trailing slash", "https://example.com/a/", "https://example.com/a", true},
		{"Root path", "https://example.com/", "https://example.com", true},
		{"Fragment dropped", "https://example.com/a#section", "https://example.com/a", true},
		{"Default port", "https://example.com:443/a", "https://example.com/a", true},
		{"Tracking params", "https://example.com/a?utm_source=x&utm_medium=y&gclid=1", "https://example.com/a", true},
		{"Param order", "https://example.com/a?b=2&a=1", "https://example.com/a?a=1&b=2", true},
		{"Meaningful param kept", "https://example.com/a?id=1", "https://example.com/a?id=2", false},
		{"Path case kept", "https://example.com/Page", "https://example.com/page", false},
		{"Custom port kept", "https://example.com:8080/a", "https://example.com/a", false},
		{"Different hosts", "https://example.com/a", "https://example.org/a", false},
		{"Scheme-less host", "Example.com/a", "https://example.com/a", true},
		{"Scheme-less path case kept", "Example.com/Path/A", "example.com/path/a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			na, nb := NormalizeURL(tt.a), NormalizeURL(tt.b)
			if tt.equal {
				assert.Equal(t, na, nb)
			} else {
				assert.NotEqual(t, na, nb)
			}
		})
	}
}

func TestNormalizeURLFallback(t *testing.T) {
	assert.Equal(t, "", NormalizeURL("   "))
	assert.Equal(t, "not a url", NormalizeURL(" Not A URL "))
	assert.Equal(t, "bad host/Keep Case", NormalizeURL("Bad Host/Keep Case"))
}

func TestDedupeHits(t *testing.T) {
	hits := []SearchHit{
		{Title: "first", URL: "https://example.com/a"},
		{Title: "empty", URL: ""},
		{Title: "second", URL: "https://example.com/b"},
		{Title: "dup", URL: "http://www.example.com/a/?utm_campaign=z"},
	}

	got := dedupeHits(hits)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "first", got[0].Title)
		assert.Equal(t, "second", got[1].Title)
	}
}

package research

import (
	"regexp"
	"strings"
)

const maxContactsPerKind = 5

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern  = regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	socialPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:facebook|twitter|linkedin|instagram)\.com/[\w.-]+`)
)

// ExtractContacts finds email addresses, phone numbers and social profile links in text.
// Each list keeps first-seen order and holds at most five entries.
func ExtractContacts(text string) ContactInfo {
	return ContactInfo{
		Emails:      firstUnique(emailPattern.FindAllString(text, -1), maxContactsPerKind),
		Phones:      firstUnique(phonePattern.FindAllString(text, -1), maxContactsPerKind),
		SocialMedia: firstUnique(socialPattern.FindAllString(text, -1), maxContactsPerKind),
	}
}

func firstUnique(matches []string, limit int) []string {
	var out []string
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(strings.TrimSpace(m), ".")
		if m == "" || seen[strings.ToLower(m)] {
			continue
		}
		seen[strings.ToLower(m)] = true
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}

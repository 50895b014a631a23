package research

import (
	"fmt"
	"io"
	"strings"
)

const reportSnippetRunes = 200

// WriteReport renders a result as markdown: queries, ranked hits, then the detailed analyses.
func WriteReport(w io.Writer, objective string, res *ResearchResult) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Research: %s\n\n", objective)

	sb.WriteString("## Queries used\n\n")
	for _, q := range res.QueriesUsed {
		fmt.Fprintf(&sb, "- %s\n", q)
	}

	fmt.Fprintf(&sb, "\n## Top search results (%d)\n\n", len(res.RankedResults))
	if len(res.RankedResults) == 0 {
		sb.WriteString("No results found.\n")
	}
	for _, r := range res.RankedResults {
		fmt.Fprintf(&sb, "%d. **%s** (%s)\n", r.Rank, r.Title, formatScore(r.Relevance))
		fmt.Fprintf(&sb, "   %s\n", r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", truncateRunes(r.Snippet, reportSnippetRunes))
		}
	}

	sb.WriteString("\n## Detailed analyses\n")
	if len(res.AnalyzedResults) == 0 {
		sb.WriteString("\nNo page could be analyzed.\n")
	}
	for i, a := range res.AnalyzedResults {
		fmt.Fprintf(&sb, "\n### %d. %s\n\n", i+1, a.Title)
		fmt.Fprintf(&sb, "URL: %s\n", a.URL)
		fmt.Fprintf(&sb, "Importance: %s\n", formatScore(a.Importance))
		if a.RelevanceRating != "" {
			fmt.Fprintf(&sb, "Relevance: %s\n", a.RelevanceRating)
		}
		fmt.Fprintf(&sb, "\n%s\n", a.Summary)
		if a.Explanation != "" {
			fmt.Fprintf(&sb, "\n_%s_\n", a.Explanation)
		}

		sb.WriteString("\nNext actions:\n")
		for _, action := range a.NextActions {
			fmt.Fprintf(&sb, "- %s\n", action)
		}

		writeContacts(&sb, a.Contacts)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeContacts(sb *strings.Builder, c ContactInfo) {
	if len(c.Emails)+len(c.Phones)+len(c.SocialMedia) == 0 {
		return
	}
	sb.WriteString("\nContact information:\n")
	if len(c.Emails) > 0 {
		fmt.Fprintf(sb, "- Emails: %s\n", strings.Join(c.Emails, ", "))
	}
	if len(c.Phones) > 0 {
		fmt.Fprintf(sb, "- Phones: %s\n", strings.Join(c.Phones, ", "))
	}
	if len(c.SocialMedia) > 0 {
		fmt.Fprintf(sb, "- Social media: %s\n", strings.Join(c.SocialMedia, ", "))
	}
}

func formatScore(s float64) string {
	if s == SentinelScore {
		return "unscored"
	}
	return fmt.Sprintf("%.1f/10", s)
}

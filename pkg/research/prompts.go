package research

import (
	"fmt"
	"strings"
)

const jsonInstruction = `Return the JSON object directly without any formatting or additional text. The JSON object should have the following structure as defined in the schema. Make sure to answer in valid json and include all necessary properties:`

func generateQueriesPrompt(researchQuery, initialQuery string, count int, language string) string {
	lang := "Use the same language as the research objective."
	if language != "" {
		lang = fmt.Sprintf("Write every query in %s.", language)
	}
	return fmt.Sprintf(`You are a research planner.

RESEARCH OBJECTIVE: %s
INITIAL QUERY: %s

Generate %d additional web search queries that would help find information about this research objective.
The queries should:
1. Cover different aspects or angles of the research objective
2. Use different phrasings and synonyms
3. Be specific and targeted
4. Differ from the initial query
%s

%s{
  "type": "object",
  "properties": {
    "queries": {"type": "array", "items": {"type": "string"}, "description": "List of %d search queries"}
  },
  "required": ["queries"]
}`, researchQuery, initialQuery, count, lang, jsonInstruction, count)
}

func scoreRelevancePrompt(researchQuery string, hits []SearchHit) string {
	var list strings.Builder
	for i, h := range hits {
		list.WriteString(fmt.Sprintf("ID: %d\nTitle: %s\nSnippet: %s\nURL: %s\n\n", i, h.Title, h.Snippet, h.URL))
	}
	return fmt.Sprintf(`You are a research filter.
Evaluate how relevant each search result is for answering the research query, judging only its title and snippet.
Score each result from 0-10 (10 being most relevant) and give a brief reason (max 50 words).

RESEARCH QUERY: %s

SEARCH RESULTS:
%s
%s{"type": "object", "properties": {"scores": {"type": "array", "items": {"type": "object", "properties": {"id": {"type": "integer"}, "score": {"type": "number"}, "reason": {"type": "string"}}, "required": ["id", "score"]}}}, "required": ["scores"]}`,
		researchQuery, list.String(), jsonInstruction)
}

func summarizePrompt(researchQuery string, page Page) string {
	return fmt.Sprintf(`RESEARCH QUERY: %s

WEBSITE CONTENT:
Title: %s
URL: %s
Content: %s

Analyze this website content in relation to the research query. Provide:
1. A concise summary (max 200 words)
2. An importance score from 0-10 for answering the research query (10 being essential)
3. A relevance rating, exactly one of: very relevant, relevant, somewhat relevant, not relevant
4. A brief explanation of the rating (max 100 words)

%s{"type": "object", "properties": {"summary": {"type": "string"}, "importance": {"type": "number"}, "relevance_rating": {"type": "string"}, "explanation": {"type": "string"}}, "required": ["summary", "importance", "relevance_rating"]}`,
		researchQuery, page.Title, page.URL, page.Text, jsonInstruction)
}

func suggestActionsPrompt(researchQuery, title, summary string, maxActions int) string {
	return fmt.Sprintf(`Research Query: %s

Website Content Summary:
Title: %s
Summary: %s

Suggest up to %d specific next actions a researcher should take based on this content and the query.

%s{"type": "object", "properties": {"next_actions": {"type": "array", "items": {"type": "string"}}}, "required": ["next_actions"]}`,
		researchQuery, title, summary, maxActions, jsonInstruction)
}

func scoreImportancePrompt(researchQuery string, r AnalyzedResult) string {
	return fmt.Sprintf(`Research Query: %s

Website Content Summary:
Title: %s
URL: %s
Summary: %s

Evaluate how important this website is for answering the research query.
Score it from 0-10 (10 being essential).

%s{"type": "object", "properties": {"importance": {"type": "number"}}, "required": ["importance"]}`,
		researchQuery, r.Title, r.URL, r.Summary, jsonInstruction)
}

// suggestObjectivesPrompt asks for research objectives derived from a first search idea.
// The answer lists one objective per line in double quotes.
func suggestObjectivesPrompt(initialQuery string, count int) string {
	return fmt.Sprintf(`INITIAL QUERY: %s

Based on the initial query, suggest %d different research objectives that would help find information about this topic.
The objectives should:
1. Cover different aspects or angles of the initial query
2. Use different phrasings and synonyms
3. Be specific and targeted

Format each objective in quotes, one per line.`, initialQuery, count)
}

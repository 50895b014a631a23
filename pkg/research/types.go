package research

import (
	"context"
	"time"
)

// Config holds runtime configuration for one Engine.
type Config struct {
	QueryCount         int           // max queries used per run, initial query included
	TopK               int           // ranked results promoted to analysis
	CallTimeout        time.Duration // per external call
	Concurrency        int           // worker pool size for search, scoring and analysis
	RankBatchSize      int
	MaxContentChars    int
	MaxResultsPerQuery int
	QueryLanguage      string
}

const (
	DefaultQueryCount         = 4
	DefaultTopK               = 5
	DefaultCallTimeout        = 30 * time.Second
	DefaultConcurrency        = 4
	DefaultRankBatchSize      = 20
	DefaultMaxContentChars    = 12000
	DefaultMaxResultsPerQuery = 10
)

// SentinelScore marks a relevance or importance score that could not be computed.
const SentinelScore = -1.0

// withDefaults fills zero values with the package defaults.
func (c Config) withDefaults() Config {
	if c.QueryCount <= 0 {
		c.QueryCount = DefaultQueryCount
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.RankBatchSize <= 0 {
		c.RankBatchSize = DefaultRankBatchSize
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = DefaultMaxContentChars
	}
	if c.MaxResultsPerQuery <= 0 {
		c.MaxResultsPerQuery = DefaultMaxResultsPerQuery
	}
	return c
}

// ResearchRequest is the immutable input of one research run.
type ResearchRequest struct {
	ResearchQuery string `json:"research_query"`
	InitialQuery  string `json:"initial_query"`
}

// SearchQuerySet is the ordered list of queries issued during a run.
type SearchQuerySet []string

// SearchHit represents a single search result
type SearchHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	PublishedAt string `json:"published_at,omitempty"`
	Source      string `json:"source,omitempty"`
}

// RankedResult is a search hit scored for relevance against the objective.
type RankedResult struct {
	SearchHit
	Relevance   float64 `json:"relevance"`
	Rank        int     `json:"rank"`
	Explanation string  `json:"explanation,omitempty"`
}

// ContactInfo holds contact details found on an analyzed page.
type ContactInfo struct {
	Emails      []string `json:"emails,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	SocialMedia []string `json:"social_media,omitempty"`
}

// AnalyzedResult is the deep-content judgment of one scraped page.
type AnalyzedResult struct {
	Title            string      `json:"title"`
	URL              string      `json:"url"`
	Summary          string      `json:"summary"`
	Importance       float64     `json:"importance"`
	ImportanceScored bool        `json:"importance_scored"`
	RelevanceRating  string      `json:"relevance_rating,omitempty"`
	Explanation      string      `json:"explanation,omitempty"`
	NextActions      []string    `json:"next_actions"`
	Contacts         ContactInfo `json:"contacts"`
}

// ResearchResult is the terminal aggregate of a run.
type ResearchResult struct {
	QueriesUsed     SearchQuerySet   `json:"queries_used"`
	RankedResults   []RankedResult   `json:"ranked_results"`
	AnalyzedResults []AnalyzedResult `json:"analyzed_results"`
}

// Page is the cleaned content of a fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Mode tells the LLM gateway which kind of answer a prompt expects.
type Mode string

const (
	ModeGenerateQueries Mode = "generate_queries"
	ModeScoreRelevance  Mode = "score_relevance"
	ModeSummarize       Mode = "summarize"
	ModeScoreImportance Mode = "score_importance"
	ModeSuggestActions  Mode = "suggest_actions"
)

// Structured reports whether the mode expects a JSON answer.
// Every pipeline mode does; the CLI's free-form prompts use ModeFreeform.
func (m Mode) Structured() bool {
	return m != ModeFreeform
}

// ModeFreeform is used for prompts outside the pipeline (objective suggestions in the CLI).
const ModeFreeform Mode = "freeform"

// SearchGateway issues a query to a web search provider.
type SearchGateway interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// Scraper fetches a URL and returns cleaned page text.
type Scraper interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// LLMGateway sends one prompt to a language model.
type LLMGateway interface {
	Complete(ctx context.Context, prompt string, mode Mode) (string, error)
}

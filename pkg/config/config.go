package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mikeboe/web-researcher/pkg/clients"
	"github.com/mikeboe/web-researcher/pkg/research"
	"github.com/mikeboe/web-researcher/pkg/research/tools"
)

const (
	BackendChain = "chain"
	BackendGenAI = "genai"
)

type Config struct {
	GoogleApiKey    string
	GoogleCSEID     string
	AnthropicApiKey string
	OpenAIApiKey    string
	DeepSeekApiKey  string
	MistralApiKey   string
	TavilyApiKey    string

	SearchProvider string
	LLMBackend     string
	ReasoningModel string
	FastModel      string
	Port           string

	QueryCount      int
	TopK            int
	CallTimeout     time.Duration
	Concurrency     int
	RankBatchSize   int
	MaxContentChars int
	MaxResults      int
	QueryLanguage   string
}

// Load reads the configuration from the environment. Call godotenv.Load first to pick up a .env file.
func Load() *Config {
	return &Config{
		GoogleApiKey:    getEnv("GOOGLE_API_KEY", ""),
		GoogleCSEID:     getEnv("GOOGLE_CSE_ID", ""),
		AnthropicApiKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIApiKey:    getEnv("OPENAI_API_KEY", ""),
		DeepSeekApiKey:  getEnv("DEEPSEEK_API_KEY", ""),
		MistralApiKey:   getEnv("MISTRAL_API_KEY", ""),
		TavilyApiKey:    getEnv("TAVILY_API_KEY", ""),

		SearchProvider: strings.ToLower(getEnv("SEARCH_PROVIDER", "")),
		LLMBackend:     strings.ToLower(getEnv("LLM_BACKEND", BackendChain)),
		ReasoningModel: getEnv("REASONING_MODEL", string(clients.ProModel)),
		FastModel:      getEnv("FAST_MODEL", string(clients.DefaultModel)),
		Port:           getEnv("PORT", "8081"),

		QueryCount:      getEnvAsInt("QUERY_COUNT", research.DefaultQueryCount),
		TopK:            getEnvAsInt("TOP_K", research.DefaultTopK),
		CallTimeout:     getEnvAsDuration("CALL_TIMEOUT", research.DefaultCallTimeout),
		Concurrency:     getEnvAsInt("CONCURRENCY", research.DefaultConcurrency),
		RankBatchSize:   getEnvAsInt("RANK_BATCH_SIZE", research.DefaultRankBatchSize),
		MaxContentChars: getEnvAsInt("MAX_CONTENT_CHARS", research.DefaultMaxContentChars),
		MaxResults:      getEnvAsInt("MAX_RESULTS_PER_QUERY", research.DefaultMaxResultsPerQuery),
		QueryLanguage:   getEnv("QUERY_LANGUAGE", ""),
	}
}

// Research projects the pipeline settings.
func (c *Config) Research() research.Config {
	return research.Config{
		QueryCount:         c.QueryCount,
		TopK:               c.TopK,
		CallTimeout:        c.CallTimeout,
		Concurrency:        c.Concurrency,
		RankBatchSize:      c.RankBatchSize,
		MaxContentChars:    c.MaxContentChars,
		MaxResultsPerQuery: c.MaxResults,
		QueryLanguage:      c.QueryLanguage,
	}
}

func (c *Config) Providers() tools.ProviderConfig {
	return tools.ProviderConfig{
		GoogleAPIKey: c.GoogleApiKey,
		GoogleCSEID:  c.GoogleCSEID,
		TavilyAPIKey: c.TavilyApiKey,
		MaxResults:   c.MaxResults,
	}
}

func (c *Config) Chain() clients.ChainConfig {
	return clients.ChainConfig{
		GoogleAPIKey:    c.GoogleApiKey,
		ReasoningModel:  c.ReasoningModel,
		FastModel:       c.FastModel,
		AnthropicAPIKey: c.AnthropicApiKey,
		OpenAIAPIKey:    c.OpenAIApiKey,
		DeepSeekAPIKey:  c.DeepSeekApiKey,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("45s") or a plain number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

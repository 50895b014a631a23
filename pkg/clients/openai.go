package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

const (
	GPT4oMini    ModelType = "gpt-4o-mini"
	DeepSeekChat ModelType = "deepseek-chat"

	deepSeekBaseURL = "https://api.deepseek.com"
)

// OpenAI returns a chat model on the OpenAI API. baseURL may be empty.
func OpenAI(apiKey string, model ModelType, baseURL string) (*openai.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = GPT4oMini
	}

	opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(string(model))}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return llm, nil
}

// DeepSeek talks to the OpenAI-compatible DeepSeek endpoint.
func DeepSeek(apiKey string) (*openai.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set")
	}
	return OpenAI(apiKey, DeepSeekChat, deepSeekBaseURL)
}

package config

import "os"

const defaultOpenAIBaseURL = "https://api.openai.com/v1"
const defaultOpenAIModel = "gpt-4o-mini"

// GetOpenAIAPIKey returns the API key for the article-generation backend.
// Empty means generation endpoints are unavailable (the server still starts).
func GetOpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// GetOpenAIBaseURL returns the base URL of the OpenAI-compatible API.
func GetOpenAIBaseURL() string {
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		return url
	}
	return defaultOpenAIBaseURL
}

// GetOpenAIModel returns the model name used for article generation.
func GetOpenAIModel() string {
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		return model
	}
	return defaultOpenAIModel
}

// Package aiclient wraps the OpenAI-compatible chat-completions API used
// for article generation. Handlers and jobs depend on the small interface
// in handlers/handler_deps.go rather than this concrete type.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// New creates a Client. baseURL is the API root without a trailing slash,
// e.g. "https://api.openai.com/v1".
func New(baseURL, apiKey, model string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // generation calls are slow
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// systemInstruction pins the response format so jobs can parse it.
const systemInstruction = "You are a content writer for CandleTime, a site for symbolic candles. " +
	"Respond with a single JSON object with the keys \"title\", \"excerpt\" and \"content\" (markdown body). " +
	"Do not wrap the JSON in a code fence."

// GenerateArticle sends the fully substituted prompt and returns the raw
// model output. Parsing into an article draft happens in internal/jobs.
func (c *Client) GenerateArticle(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("generation backend is not configured (missing API key)")
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Infof("AIClient: sending generation request (model %s, prompt %d chars)", c.model, len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode generation response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("generation backend error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation backend returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generation backend returned no choices")
	}

	content := parsed.Choices[0].Message.Content
	c.logger.Infof("AIClient: received generation response (%d chars)", len(content))
	return content, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
)

const (
	// DefaultAPIURL is the OpenRouter chat-completions endpoint.
	DefaultAPIURL = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultModel is the fixed reasoning model identifier.
	DefaultModel = "mistralai/mistral-7b-instruct:free"
)

var ErrCompletionFailed = errors.New("chat completion request failed")

// Gateway is the reasoning capability consumed by the adjudication pipeline.
// An error means "reasoning unavailable"; callers degrade, they never abort.
type Gateway interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// Options tunes a single completion call.
type Options struct {
	Temperature float64
	// MaxTokens caps generation length; 0 leaves the provider default.
	MaxTokens int
}

// Client issues synchronous chat-completion requests. One attempt per call:
// no retry, no backoff. Transport failures are logged and returned as errors,
// never raised further up than the per-clause caller.
type Client struct {
	apiURL string
	apiKey string
	model  string
	http   *http.Client
}

// NewClient creates a reasoning gateway client. The HTTP client carries no
// timeout of its own; flows that need a deadline pass it via context.
func NewClient(apiURL, apiKey, model string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{},
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
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one request to the chat-completion endpoint and returns the
// raw response text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("LLM API error: %v", err)
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("LLM API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("%w: status %d", ErrCompletionFailed, resp.StatusCode)
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrCompletionFailed)
	}

	return apiResp.Choices[0].Message.Content, nil
}

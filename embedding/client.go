package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// Dimensions is the hidden size of the legal-domain encoder. Every vector
	// produced by this package has exactly this many elements.
	Dimensions = 768

	// MaxTokens is the encoder sequence length. Longer input is truncated
	// before it is sent; shorter input is padded server-side so batched
	// requests share a tensor shape.
	MaxTokens = 512
)

var (
	ErrEmptyEmbedding = errors.New("encoder produced an empty embedding")
	ErrWrongDimension = errors.New("encoder returned unexpected embedding dimension")
)

// Embedder produces a fixed-length vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Client calls a text-encoder inference service that exposes token-level
// hidden states. The service runs the pretrained legal-domain encoder;
// pooling into a single sentence vector happens here.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an encoder client. The inference call is pure forward
// inference: identical input yields identical output.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type encodeRequest struct {
	Text      string `json:"text"`
	MaxTokens int    `json:"max_tokens"`
	Truncate  bool   `json:"truncate"`
	Pad       bool   `json:"pad"`
}

type encodeResponse struct {
	// HiddenStates holds one vector per token in the (truncated, padded)
	// input sequence.
	HiddenStates [][]float64 `json:"hidden_states"`
}

// Embed encodes text into a single 768-dimensional vector by mean-pooling
// the encoder's token-level hidden states across the sequence dimension.
// It returns ErrEmptyEmbedding when the input tokenizes to nothing.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := encodeRequest{
		Text:      truncateTokens(text, MaxTokens),
		MaxTokens: MaxTokens,
		Truncate:  true,
		Pad:       true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/encode", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("Encoder API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return nil, fmt.Errorf("encoder API error: %d", resp.StatusCode)
	}

	var apiResp encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return MeanPool(apiResp.HiddenStates)
}

// MeanPool collapses token-level hidden states into one fixed-length vector
// by averaging across the sequence dimension.
func MeanPool(states [][]float64) ([]float64, error) {
	if len(states) == 0 {
		return nil, ErrEmptyEmbedding
	}

	dim := len(states[0])
	if dim != Dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWrongDimension, dim, Dimensions)
	}

	pooled := make([]float64, dim)
	for _, state := range states {
		if len(state) != dim {
			return nil, fmt.Errorf("%w: ragged hidden states", ErrWrongDimension)
		}
		for i, v := range state {
			pooled[i] += v
		}
	}
	n := float64(len(states))
	for i := range pooled {
		pooled[i] /= n
	}

	return pooled, nil
}

// truncateTokens caps text at maxTokens whitespace-delimited tokens. The
// encoder tokenizer truncates again server-side; this just keeps request
// payloads bounded for very large documents.
func truncateTokens(text string, maxTokens int) string {
	fields := strings.Fields(text)
	if len(fields) <= maxTokens {
		return text
	}
	return strings.Join(fields[:maxTokens], " ")
}

package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// MaxPages caps how much of a document is extracted. Contracts front-load
// their operative clauses; ten pages keeps extraction latency bounded.
const MaxPages = 10

// ErrEmptyText indicates the document produced no text layer, which usually
// means a scanned image rather than a digital document.
var ErrEmptyText = errors.New("extracted text is empty; ensure the document is not scanned")

// Service converts an uploaded document into plain text.
type Service interface {
	ExtractText(ctx context.Context, filename string, data io.Reader) (string, error)
}

// HTTPService calls an external document-to-text extraction service.
type HTTPService struct {
	baseURL string
	http    *http.Client
}

// NewHTTPService creates an extraction client for the given service URL.
func NewHTTPService(baseURL string) *HTTPService {
	return &HTTPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// NewServiceFromEnv builds the extraction client from EXTRACTOR_URL.
func NewServiceFromEnv() (*HTTPService, error) {
	baseURL := os.Getenv("EXTRACTOR_URL")
	if baseURL == "" {
		return nil, errors.New("EXTRACTOR_URL environment variable is required")
	}
	return NewHTTPService(baseURL), nil
}

type extractResponse struct {
	Text  string `json:"text"`
	Pages int    `json:"pages"`
}

// ExtractText uploads the document and returns the text of its first
// MaxPages pages.
func (s *HTTPService) ExtractText(ctx context.Context, filename string, data io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/v1/extract?max_pages=%d", s.baseURL, MaxPages)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("Extraction API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("extraction API error: %d", resp.StatusCode)
	}

	var apiResp extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if strings.TrimSpace(apiResp.Text) == "" {
		return "", ErrEmptyText
	}
	return apiResp.Text, nil
}

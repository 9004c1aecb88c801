package extraction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextReturnsDocumentText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/extract", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("max_pages"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "contract.pdf", header.Filename)

		uploaded, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "raw pdf bytes", string(uploaded))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"text":  "This agreement is made between the parties.",
			"pages": 2,
		})
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL)
	text, err := svc.ExtractText(context.Background(), "contract.pdf", strings.NewReader("raw pdf bytes"))

	require.NoError(t, err)
	assert.Equal(t, "This agreement is made between the parties.", text)
}

func TestExtractTextEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "   ", "pages": 1})
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL)
	_, err := svc.ExtractText(context.Background(), "scan.pdf", strings.NewReader("image-only"))

	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestExtractTextServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported format", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL)
	_, err := svc.ExtractText(context.Background(), "contract.docx", strings.NewReader("data"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyText)
}

func TestNewServiceFromEnvRequiresURL(t *testing.T) {
	t.Setenv("EXTRACTOR_URL", "")
	_, err := NewServiceFromEnv()
	assert.Error(t, err)

	t.Setenv("EXTRACTOR_URL", "http://extractor.internal")
	svc, err := NewServiceFromEnv()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

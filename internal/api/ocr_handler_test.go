package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDerekLomas/sourcelibrary/internal/assets"
	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

// fakeProvider records the last request and returns canned results.
type fakeProvider struct {
	name       string
	ocrResult  *provider.OCRResult
	ocrErr     error
	transText  string
	transErr   error
	lastOCR    provider.OCRRequest
	lastPrompt string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ProcessOCR(ctx context.Context, req provider.OCRRequest) (*provider.OCRResult, error) {
	f.lastOCR = req
	if f.ocrErr != nil {
		return nil, f.ocrErr
	}
	return f.ocrResult, nil
}

func (f *fakeProvider) ProcessTranslation(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.transErr != nil {
		return "", f.transErr
	}
	return f.transText, nil
}

func (f *fakeProvider) Shutdown(ctx context.Context) error { return nil }

func TestProcessOCR(t *testing.T) {
	mistral := &fakeProvider{
		name:      "mistral",
		ocrResult: &provider.OCRResult{Text: "# Page one", ImageURLs: []string{"memory://assets/b/p/img"}},
	}
	gemini := &fakeProvider{
		name:      "gemini",
		ocrResult: &provider.OCRResult{Text: "gemini text"},
	}
	registry := provider.NewRegistry(testLogger(), mistral, gemini)
	h := NewOCRHandler(registry, assets.NewMemoryStore(), testLogger())

	t.Run("defaults to mistral", func(t *testing.T) {
		w := postJSON(t, h.ProcessOCR,
			`{"photo_url": "https://example.com/p1.jpg", "language": "latin", "book_id": "b1", "page_id": "p1"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var reply OCRReply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		assert.Equal(t, "# Page one", reply.OCR)
		assert.Len(t, reply.ImageURLs, 1)

		assert.Equal(t, "https://example.com/p1.jpg", mistral.lastOCR.ImageURL)
		assert.Equal(t, "latin", mistral.lastOCR.Language)
		assert.Equal(t, "b1", mistral.lastOCR.BookID)
		assert.NotNil(t, mistral.lastOCR.Assets)
	})

	t.Run("explicit model selection is case-insensitive", func(t *testing.T) {
		w := postJSON(t, h.ProcessOCR,
			`{"photo_url": "https://example.com/p2.jpg", "language": "greek", "ai_model": "Gemini"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var reply OCRReply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		assert.Equal(t, "gemini text", reply.OCR)
	})

	t.Run("unknown model", func(t *testing.T) {
		w := postJSON(t, h.ProcessOCR,
			`{"photo_url": "https://example.com/p3.jpg", "language": "latin", "ai_model": "claude"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Unknown AI provider")
	})

	t.Run("missing required fields", func(t *testing.T) {
		w := postJSON(t, h.ProcessOCR, `{"photo_url": "https://example.com/p4.jpg"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "photo_url and language are required")
	})

	t.Run("rate limited provider maps to 429", func(t *testing.T) {
		limited := &fakeProvider{name: "mistral", ocrErr: provider.ErrRateLimited}
		h := NewOCRHandler(provider.NewRegistry(testLogger(), limited), assets.NewMemoryStore(), testLogger())

		w := postJSON(t, h.ProcessOCR,
			`{"photo_url": "https://example.com/p5.jpg", "language": "latin"}`)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("provider failure maps to 500", func(t *testing.T) {
		broken := &fakeProvider{name: "mistral", ocrErr: assert.AnError}
		h := NewOCRHandler(provider.NewRegistry(testLogger(), broken), assets.NewMemoryStore(), testLogger())

		w := postJSON(t, h.ProcessOCR,
			`{"photo_url": "https://example.com/p6.jpg", "language": "latin"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}

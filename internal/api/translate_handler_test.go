package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

func TestProcessTranslation(t *testing.T) {
	gemini := &fakeProvider{name: "gemini", transText: "# Página uno"}
	mistral := &fakeProvider{name: "mistral", transText: "mistral translation"}
	registry := provider.NewRegistry(testLogger(), gemini, mistral)
	h := NewTranslateHandler(registry, testLogger())

	t.Run("defaults to gemini with translator prompt", func(t *testing.T) {
		w := postJSON(t, h.ProcessTranslation,
			`{"text": "# Page one", "source_lang": "english", "target_lang": "spanish"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var reply TranslateReply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		assert.Equal(t, "# Página uno", reply.Translation)

		assert.Contains(t, gemini.lastPrompt, "professional translator")
		assert.Contains(t, gemini.lastPrompt, "from english to spanish")
		assert.Contains(t, gemini.lastPrompt, "# Page one")
		assert.Contains(t, gemini.lastPrompt, "image tags")
	})

	t.Run("custom prompt used verbatim", func(t *testing.T) {
		w := postJSON(t, h.ProcessTranslation,
			`{"text": "ignored", "source_lang": "en", "target_lang": "fr", "custom_prompt": "translate casually: bonjour"}`)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "translate casually: bonjour", gemini.lastPrompt)
	})

	t.Run("explicit model", func(t *testing.T) {
		w := postJSON(t, h.ProcessTranslation,
			`{"text": "hello", "source_lang": "en", "target_lang": "de", "ai_model": "mistral"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var reply TranslateReply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		assert.Equal(t, "mistral translation", reply.Translation)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(t, h.ProcessTranslation, `{"text": "hello"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "text, source_lang, and target_lang are required")
	})

	t.Run("unknown model", func(t *testing.T) {
		w := postJSON(t, h.ProcessTranslation,
			`{"text": "hello", "source_lang": "en", "target_lang": "de", "ai_model": "nope"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider failure maps to 500", func(t *testing.T) {
		broken := &fakeProvider{name: "gemini", transErr: assert.AnError}
		h := NewTranslateHandler(provider.NewRegistry(testLogger(), broken), testLogger())

		w := postJSON(t, h.ProcessTranslation,
			`{"text": "hello", "source_lang": "en", "target_lang": "de"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

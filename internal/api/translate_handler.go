package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JDerekLomas/sourcelibrary/internal/api/shared"
	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

// defaultTranslateProvider handles translation when the request names no
// model.
const defaultTranslateProvider = "gemini"

// translatePromptFormat is the default translator instruction. It keeps the
// page's markdown intact so OCR image placeholders and structure survive the
// round trip.
const translatePromptFormat = `You are a professional translator. Translate the following text from %s to %s.
**Strictly follow these rules:**
1. Preserve ALL markdown formatting (headers, lists, bold, italics, etc.).
2. Do NOT modify or remove any image tags (e.g., ` + "`![alt text](image_url)`" + `). Leave them exactly as they are.
3. Do NOT add new formatting, comments, quoting original text, or explanations.
4. Translate ONLY the text content. Ignore code blocks, links, or any non-text elements.
5. Maintain the original structure and line breaks.

---
%s
---`

// TranslateHandler serves POST /api/translate.
type TranslateHandler struct {
	registry *provider.Registry
	logger   *slog.Logger
}

// NewTranslateHandler creates a TranslateHandler with the given dependencies.
func NewTranslateHandler(registry *provider.Registry, logger *slog.Logger) *TranslateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslateHandler{
		registry: registry,
		logger:   logger.With(slog.String("component", "translate_handler")),
	}
}

// ProcessTranslation translates page text through the requested provider.
func (h *TranslateHandler) ProcessTranslation(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "text, source_lang, and target_lang are required")
		return
	}

	name := req.AIModel
	if name == "" {
		name = defaultTranslateProvider
	}
	client, err := h.registry.Resolve(name)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	prompt := req.CustomPrompt
	if prompt == "" {
		prompt = fmt.Sprintf(translatePromptFormat, req.SourceLang, req.TargetLang, req.Text)
	}

	translation, err := client.ProcessTranslation(r.Context(), prompt)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	h.logger.Info("translation completed",
		"provider", client.Name(),
		"source_lang", req.SourceLang,
		"target_lang", req.TargetLang,
		"text_length", len(translation))

	shared.RespondWithJSON(w, r, http.StatusOK, TranslateReply{Translation: translation})
}

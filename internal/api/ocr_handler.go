package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JDerekLomas/sourcelibrary/internal/api/shared"
	"github.com/JDerekLomas/sourcelibrary/internal/assets"
	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

// defaultOCRProvider handles OCR when the request names no model. Mistral's
// dedicated OCR endpoint gives better page segmentation than prompting a
// general model.
const defaultOCRProvider = "mistral"

// OCRHandler serves POST /api/ocr.
type OCRHandler struct {
	registry *provider.Registry
	assets   assets.Store
	logger   *slog.Logger
}

// NewOCRHandler creates an OCRHandler with the given dependencies.
func NewOCRHandler(registry *provider.Registry, store assets.Store, logger *slog.Logger) *OCRHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRHandler{
		registry: registry,
		assets:   store,
		logger:   logger.With(slog.String("component", "ocr_handler")),
	}
}

// ProcessOCR extracts the text of one page image through the requested
// provider.
func (h *OCRHandler) ProcessOCR(w http.ResponseWriter, r *http.Request) {
	var req OCRRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "photo_url and language are required")
		return
	}

	name := req.AIModel
	if name == "" {
		name = defaultOCRProvider
	}
	client, err := h.registry.Resolve(name)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	result, err := client.ProcessOCR(r.Context(), provider.OCRRequest{
		ImageURL:     req.PhotoURL,
		Language:     req.Language,
		CustomPrompt: req.CustomPrompt,
		BookID:       req.BookID,
		PageID:       req.PageID,
		Assets:       h.assets,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	h.logger.Info("ocr completed",
		"provider", strings.ToLower(name),
		"page_id", req.PageID,
		"text_length", len(result.Text),
		"embedded_images", len(result.ImageURLs))

	shared.RespondWithJSON(w, r, http.StatusOK, OCRReply{
		OCR:       result.Text,
		ImageURLs: result.ImageURLs,
	})
}

package provider

import (
	"context"

	"github.com/JDerekLomas/sourcelibrary/internal/assets"
)

// OCRRequest describes a single OCR operation over one scanned page image.
type OCRRequest struct {
	// ImageURL is the publicly reachable location of the scanned page.
	ImageURL string

	// Language the page is written in; used to build the default instruction
	// when CustomPrompt is empty.
	Language string

	// CustomPrompt overrides the default OCR instruction when non-empty.
	CustomPrompt string

	// BookID and PageID identify the owning entities. They are only used to
	// key any embedded images the backend extracts as a byproduct.
	BookID string
	PageID string

	// Assets receives embedded images extracted during OCR. May be nil for
	// backends that never produce image assets.
	Assets assets.Store
}

// OCRResult is the outcome of a successful OCR operation.
type OCRResult struct {
	// Text is the extracted page text. Backends that return markdown keep
	// their markdown structure intact.
	Text string

	// ImageURLs lists the public URLs of any embedded images the backend
	// extracted and uploaded while processing the page.
	ImageURLs []string
}

// Client is the uniform contract wrapping one generative-AI backend.
// Implementations enforce their own concurrency ceilings, rate limits and
// transient-failure retries; callers see only the final outcome.
type Client interface {
	// Name returns the registry key for this client, always lowercase.
	Name() string

	// ProcessOCR extracts the text of the image referenced by req. It fails
	// with ErrDownloadFailed if the image cannot be fetched, and with
	// ErrRateLimited or ErrTemporary when the backend call exhausts its
	// retry budget.
	ProcessOCR(ctx context.Context, req OCRRequest) (*OCRResult, error)

	// ProcessTranslation submits a text prompt and returns the raw response
	// text. Same retry policy as ProcessOCR minus image handling.
	ProcessTranslation(ctx context.Context, prompt string) (string, error)

	// Shutdown releases any held network resources. Idempotent; safe to call
	// when nothing is open.
	Shutdown(ctx context.Context) error
}

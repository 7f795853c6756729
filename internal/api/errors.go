package api

import (
	"errors"
	"net/http"

	"github.com/JDerekLomas/sourcelibrary/internal/api/shared"
	"github.com/JDerekLomas/sourcelibrary/internal/chat"
	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

// statusCodeForError maps domain errors to HTTP status codes. Caller mistakes
// (bad target, unknown ids, oversized advance requests, unknown provider) are
// 400s, upstream rate-limit exhaustion is 429, everything else is a 500.
func statusCodeForError(err error) int {
	switch {
	case errors.Is(err, chat.ErrUnknownConversation),
		errors.Is(err, chat.ErrUnknownSpeaker),
		errors.Is(err, chat.ErrAmbiguousTarget),
		errors.Is(err, chat.ErrTooManyTurns),
		errors.Is(err, provider.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// safeMessageForError returns the message exposed to clients for a domain
// error. Client errors carry their own text; server errors are sanitized.
func safeMessageForError(err error) string {
	switch {
	case errors.Is(err, chat.ErrUnknownConversation):
		return "Conversation not found"
	case errors.Is(err, chat.ErrUnknownSpeaker):
		return "Unknown participant"
	case errors.Is(err, chat.ErrAmbiguousTarget):
		return "Cannot determine which participant should reply"
	case errors.Is(err, chat.ErrTooManyTurns):
		return "Requested turn count exceeds the limit"
	case errors.Is(err, provider.ErrUnknownProvider):
		return "Unknown AI provider"
	case errors.Is(err, provider.ErrRateLimited):
		return "AI provider rate limit exceeded, try again later"
	default:
		return "AI processing failed"
	}
}

// HandleServiceError writes the mapped error response and logs the full
// error detail with the request's trace ID.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, statusCodeForError(err), safeMessageForError(err), err)
}

package chat

import "errors"

// Common errors returned by the orchestrator. All of them describe caller
// mistakes and map to client errors at the HTTP boundary.
var (
	// ErrUnknownConversation is returned when the conversation id has no
	// active conversation (never started, or already ended).
	ErrUnknownConversation = errors.New("no active conversation")

	// ErrUnknownSpeaker is returned when a speaker id was not registered as
	// a participant at Start.
	ErrUnknownSpeaker = errors.New("unknown speaker id")

	// ErrAmbiguousTarget is returned when no replying participant could be
	// resolved for a human message.
	ErrAmbiguousTarget = errors.New("ambiguous target: specify which participant should reply or enable auto routing")

	// ErrTooManyTurns is returned when an advance request would generate
	// more turns than the safety ceiling allows.
	ErrTooManyTurns = errors.New("too many generated turns requested")
)

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JDerekLomas/sourcelibrary/internal/api/shared"
	"github.com/JDerekLomas/sourcelibrary/internal/chat"
	"github.com/JDerekLomas/sourcelibrary/internal/redact"
)

// ChatHandler serves the multi-participant conversation endpoints.
type ChatHandler struct {
	orchestrator    *chat.Orchestrator
	defaultMaxTurns int
	logger          *slog.Logger
}

// NewChatHandler creates a ChatHandler with the given dependencies.
func NewChatHandler(orchestrator *chat.Orchestrator, defaultMaxTurns int, logger *slog.Logger) *ChatHandler {
	if defaultMaxTurns <= 0 {
		defaultMaxTurns = chat.DefaultMaxContextTurns
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		orchestrator:    orchestrator,
		defaultMaxTurns: defaultMaxTurns,
		logger:          logger.With(slog.String("component", "chat_handler")),
	}
}

// StartConversation handles POST /api/chat/start.
func (h *ChatHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	var req StartConversationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "conversation_id and participants are required")
		return
	}

	if err := h.orchestrator.Start(r.Context(), req.ConversationID, req.Participants); err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StatusReply{Status: "ok"})
}

// UserSend handles POST /api/chat/send.
func (h *ChatHandler) UserSend(w http.ResponseWriter, r *http.Request) {
	var req UserSendRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "conversation_id, author_id and message are required")
		return
	}

	allowAutoRoute := true
	if req.AllowAutoRoute != nil {
		allowAutoRoute = *req.AllowAutoRoute
	}

	events, err := h.orchestrator.UserSend(r.Context(), chat.UserSendParams{
		ConversationID:  req.ConversationID,
		AuthorID:        req.AuthorID,
		Message:         req.Message,
		TargetID:        req.TargetNPCID,
		AllowAutoRoute:  allowAutoRoute,
		MaxContextTurns: h.maxTurns(req.MaxContextTurns),
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, EventsReply{
		ConversationID: req.ConversationID,
		Events:         events,
	})
}

// Advance handles POST /api/chat/advance. Turns are streamed as NDJSON, one
// EventsReply line per generated turn, flushed as each turn completes so the
// client sees the conversation unfold. A failure after the stream has started
// is reported as a final {"error": ...} line since the status header is
// already committed.
func (h *ChatHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "conversation_id and next_speakers are required")
		return
	}

	rounds := 1
	if req.Rounds != nil {
		rounds = *req.Rounds
	}

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	streaming := false

	err := h.orchestrator.Advance(r.Context(), chat.AdvanceParams{
		ConversationID:  req.ConversationID,
		NextSpeakers:    req.NextSpeakers,
		Rounds:          rounds,
		MaxContextTurns: h.maxTurns(req.MaxContextTurns),
	}, func(event chat.Event) error {
		if !streaming {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			streaming = true
		}
		if err := enc.Encode(EventsReply{
			ConversationID: req.ConversationID,
			Events:         []chat.Event{event},
		}); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		if !streaming {
			HandleServiceError(w, r, err)
			return
		}
		h.logger.Error("advance stream aborted",
			"conversation_id", req.ConversationID,
			"error", redact.Error(err))
		_ = enc.Encode(map[string]string{"error": safeMessageForError(err)})
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// EndConversation handles POST /api/chat/end.
func (h *ChatHandler) EndConversation(w http.ResponseWriter, r *http.Request) {
	var req EndConversationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "conversation_id is required")
		return
	}

	h.orchestrator.End(r.Context(), req.ConversationID)
	shared.RespondWithJSON(w, r, http.StatusOK, StatusReply{Status: "ok"})
}

func (h *ChatHandler) maxTurns(requested *int) int {
	if requested != nil {
		return *requested
	}
	return h.defaultMaxTurns
}

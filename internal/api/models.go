package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/JDerekLomas/sourcelibrary/internal/chat"
)

// ParticipantList is an ordered list of participants decoded from a JSON
// object of participant id -> persona instruction. JSON object key order is
// preserved because mention-based target inference prefers the participant
// registered first.
type ParticipantList []chat.Participant

// UnmarshalJSON decodes the {"id": "persona", ...} object token by token so
// the declaration order survives (a plain map would lose it).
func (p *ParticipantList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("participants must be a JSON object of id to persona")
	}

	out := make([]chat.Participant, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("participant id must be a string")
		}

		var persona string
		if err := dec.Decode(&persona); err != nil {
			return fmt.Errorf("persona for %q must be a string: %w", id, err)
		}
		out = append(out, chat.Participant{ID: id, Persona: persona})
	}

	*p = out
	return nil
}

// StartConversationRequest starts a new conversation thread.
type StartConversationRequest struct {
	ConversationID string          `json:"conversation_id" validate:"required"`
	Participants   ParticipantList `json:"participants"    validate:"required,min=1"`
}

// UserSendRequest delivers a user message and asks one participant to reply.
type UserSendRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	AuthorID       string `json:"author_id"       validate:"required"`
	Message        string `json:"message"         validate:"required"`

	// TargetNPCID names the replying participant. When omitted the target
	// may be auto-routed.
	TargetNPCID     string `json:"target_npc_id"`
	AllowAutoRoute  *bool  `json:"allow_auto_route"`
	MaxContextTurns *int   `json:"max_context_turns" validate:"omitempty,gte=0"`
}

// AdvanceRequest generates turns for a sequence of participants.
type AdvanceRequest struct {
	ConversationID  string   `json:"conversation_id" validate:"required"`
	NextSpeakers    []string `json:"next_speakers"   validate:"required,min=1"`
	Rounds          *int     `json:"rounds"            validate:"omitempty,gte=1"`
	MaxContextTurns *int     `json:"max_context_turns" validate:"omitempty,gte=0"`
}

// EndConversationRequest ends a conversation thread.
type EndConversationRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

// EventsReply carries generated turns back to the client. The advance stream
// emits one EventsReply line per generated turn.
type EventsReply struct {
	ConversationID string       `json:"conversation_id"`
	Events         []chat.Event `json:"events"`
}

// StatusReply is the generic acknowledgement body.
type StatusReply struct {
	Status string `json:"status"`
}

// OCRRequest runs OCR over one page image.
type OCRRequest struct {
	PhotoURL     string `json:"photo_url" validate:"required,url"`
	Language     string `json:"language"  validate:"required"`
	CustomPrompt string `json:"custom_prompt"`
	AIModel      string `json:"ai_model"`
	BookID       string `json:"book_id"`
	PageID       string `json:"page_id"`
}

// OCRReply is the OCR response body.
type OCRReply struct {
	OCR       string   `json:"ocr"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// TranslateRequest translates page text between languages.
type TranslateRequest struct {
	Text         string `json:"text"        validate:"required"`
	SourceLang   string `json:"source_lang" validate:"required"`
	TargetLang   string `json:"target_lang" validate:"required"`
	CustomPrompt string `json:"custom_prompt"`
	AIModel      string `json:"ai_model"`
}

// TranslateReply is the translation response body.
type TranslateReply struct {
	Translation string `json:"translation"`
}

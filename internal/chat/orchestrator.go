package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultMaxContextTurns is the context window used when a request does
	// not specify one.
	DefaultMaxContextTurns = 12

	// DefaultHardCap bounds the total turns one Advance call may generate.
	DefaultHardCap = 200

	// noContextPlaceholder stands in for the window when the transcript is
	// empty or the window size is zero.
	noContextPlaceholder = "(no prior context)"
)

// Orchestrator owns conversation lifecycle, speaker inference, context
// windowing and turn generation. It is safe for concurrent use across
// conversations; turns within one conversation are strictly sequential.
type Orchestrator struct {
	store    *Store
	sessions SessionFactory
	logger   *slog.Logger
	hardCap  int
}

// NewOrchestrator builds an Orchestrator over the given session factory.
func NewOrchestrator(store *Store, sessions SessionFactory, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    store,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "chat_orchestrator")),
		hardCap:  DefaultHardCap,
	}
}

// Start creates a conversation with a fresh persona-bound session per
// participant and an empty transcript, and registers it under conversationID.
// An existing conversation with the same id is silently replaced, matching
// the lifecycle the frontend relies on (a re-start is a reset).
func (o *Orchestrator) Start(ctx context.Context, conversationID string, participants []Participant) error {
	conv := &Conversation{
		id:       conversationID,
		sessions: make(map[string]Session, len(participants)),
		personas: make(map[string]string, len(participants)),
	}
	for _, p := range participants {
		session, err := o.sessions.NewSession(ctx, p.Persona)
		if err != nil {
			return fmt.Errorf("create session for %q: %w", p.ID, err)
		}
		conv.order = append(conv.order, p.ID)
		conv.sessions[p.ID] = session
		conv.personas[p.ID] = p.Persona
	}

	o.store.Put(conv)
	o.logger.Info("conversation started",
		"conversation_id", conversationID,
		"participants", len(participants))
	return nil
}

// End removes the conversation. No-op if absent.
func (o *Orchestrator) End(ctx context.Context, conversationID string) {
	o.store.Delete(conversationID)
	o.logger.Info("conversation ended", "conversation_id", conversationID)
}

// UserSendParams are the inputs to UserSend.
type UserSendParams struct {
	ConversationID string
	AuthorID       string
	Message        string

	// TargetID names the replying participant explicitly. When empty the
	// target is inferred.
	TargetID string

	// AllowAutoRoute permits inferring the target from an @mention, a
	// "name:" prefix, a bare name, or the last participant who spoke.
	AllowAutoRoute bool

	MaxContextTurns int
}

// UserSend appends the author's message to the transcript, resolves exactly
// one replying participant and generates its reply. The reply is returned as
// a single-element event list.
func (o *Orchestrator) UserSend(ctx context.Context, p UserSendParams) ([]Event, error) {
	conv, ok := o.store.Get(p.ConversationID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConversation, p.ConversationID)
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.transcript = append(conv.transcript, Turn{SpeakerID: p.AuthorID, Text: p.Message})

	target := p.TargetID
	if target == "" {
		target = inferTarget(conv, p.AuthorID, p.Message, p.AllowAutoRoute)
	}
	if target == "" {
		return nil, ErrAmbiguousTarget
	}

	event, err := o.generateTurn(ctx, conv, target, p.MaxContextTurns)
	if err != nil {
		return nil, err
	}
	return []Event{event}, nil
}

// AdvanceParams are the inputs to Advance.
type AdvanceParams struct {
	ConversationID  string
	NextSpeakers    []string
	Rounds          int
	MaxContextTurns int
}

// Advance repeats the NextSpeakers sequence Rounds times (clamped to at
// least one), generating one turn per listed speaker per repetition in
// strict left-to-right, round-by-round order. Each generated event is handed
// to yield as soon as it is computed, so callers can stream turns
// incrementally; a yield error aborts the sequence.
//
// The whole request is rejected with ErrTooManyTurns before anything is
// generated when it would exceed the hard cap. An unlisted speaker fails on
// the turn attempted; turns already generated stay in the transcript.
func (o *Orchestrator) Advance(ctx context.Context, p AdvanceParams, yield func(Event) error) error {
	if p.Rounds < 1 {
		p.Rounds = 1
	}

	conv, ok := o.store.Get(p.ConversationID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownConversation, p.ConversationID)
	}

	if total := len(p.NextSpeakers) * p.Rounds; total > o.hardCap {
		return fmt.Errorf("%w: %d > hard cap %d; reduce rounds or speakers",
			ErrTooManyTurns, total, o.hardCap)
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	for round := 0; round < p.Rounds; round++ {
		for _, sid := range p.NextSpeakers {
			event, err := o.generateTurn(ctx, conv, sid, p.MaxContextTurns)
			if err != nil {
				return err
			}
			if err := yield(event); err != nil {
				return fmt.Errorf("deliver turn: %w", err)
			}
		}
	}
	return nil
}

// generateTurn builds the windowed prompt, asks the speaker's session for
// its next line and appends the trimmed result to the transcript. Caller
// must hold conv.mu; that is what makes turn N+1 see turn N's result.
func (o *Orchestrator) generateTurn(ctx context.Context, conv *Conversation, speakerID string, maxTurns int) (Event, error) {
	session, ok := conv.sessions[speakerID]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownSpeaker, speakerID)
	}

	contextBlock := noContextPlaceholder
	if window := conv.window(maxTurns); len(window) > 0 {
		lines := make([]string, len(window))
		for i, turn := range window {
			lines[i] = turn.SpeakerID + ": " + turn.Text
		}
		contextBlock = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(
		"Conversation context (recent turns):\n%s\n\n"+
			"Now respond strictly in-character as %s.\n"+
			"Write only this speaker's next line; do not write lines for others, "+
			"and do not include speaker labels unless it fits the character's style.",
		contextBlock, speakerID)

	text, err := session.Send(ctx, prompt)
	if err != nil {
		return Event{}, fmt.Errorf("generate turn for %q: %w", speakerID, err)
	}

	text = strings.TrimSpace(text)
	conv.transcript = append(conv.transcript, Turn{SpeakerID: speakerID, Text: text})
	o.logger.Debug("turn generated",
		"conversation_id", conv.id,
		"speaker_id", speakerID,
		"text_length", len(text))
	return Event{SpeakerID: speakerID, Text: text}, nil
}

package chat

import (
	"context"
	"sync"
)

// Event is one generated turn, as delivered to callers.
type Event struct {
	SpeakerID string `json:"speaker_id"`
	Text      string `json:"text"`
}

// Turn is one entry of a conversation transcript.
type Turn struct {
	SpeakerID string
	Text      string
}

// Session is a persistent generative session bound to one participant's
// persona. The provider keeps its own history server-side, separate from the
// explicit context window the orchestrator passes in each prompt.
type Session interface {
	// Send submits a prompt and returns the raw response text.
	Send(ctx context.Context, prompt string) (string, error)
}

// SessionFactory creates persona-bound sessions. Implemented by provider
// clients that support stateful chat (Gemini); the orchestrator never sees
// the concrete backend.
type SessionFactory interface {
	// NewSession creates a fresh session whose persona is fixed to the given
	// instruction string.
	NewSession(ctx context.Context, instruction string) (Session, error)
}

// Participant pairs a participant id with its persona instruction.
// Registration order is significant: mention scanning during target
// inference walks participants in this order.
type Participant struct {
	ID      string
	Persona string
}

// Conversation is the per-thread state owned by the Store. All fields after
// construction are guarded by mu; turn generation for one conversation is
// strictly sequential because mu is held across the whole operation.
type Conversation struct {
	mu sync.Mutex

	id string

	// order preserves participant registration order.
	order    []string
	sessions map[string]Session
	personas map[string]string

	// transcript is append-only; no turn is ever rewritten or removed.
	transcript []Turn
}

// ID returns the conversation id.
func (c *Conversation) ID() string { return c.id }

// Participants returns the participant ids in registration order.
func (c *Conversation) Participants() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Persona returns the instruction string a participant was registered with.
func (c *Conversation) Persona(participantID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.personas[participantID]
	return p, ok
}

// Transcript returns a copy of the transcript in chronological order.
func (c *Conversation) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// window returns the most recent maxTurns transcript entries. Caller must
// hold c.mu.
func (c *Conversation) window(maxTurns int) []Turn {
	if maxTurns <= 0 {
		return nil
	}
	if len(c.transcript) <= maxTurns {
		return c.transcript
	}
	return c.transcript[len(c.transcript)-maxTurns:]
}

// Store is the process-wide map of active conversations. It holds each
// conversation exclusively between Start and End; operations on unknown ids
// fail at the orchestrator.
type Store struct {
	mu     sync.RWMutex
	convos map[string]*Conversation
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{convos: make(map[string]*Conversation)}
}

// Put registers conv under its id, replacing any existing conversation with
// the same id.
func (s *Store) Put(conv *Conversation) {
	s.mu.Lock()
	s.convos[conv.id] = conv
	s.mu.Unlock()
}

// Get looks up a conversation by id.
func (s *Store) Get(id string) (*Conversation, bool) {
	s.mu.RLock()
	conv, ok := s.convos[id]
	s.mu.RUnlock()
	return conv, ok
}

// Delete removes the conversation with the given id. No-op if absent.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.convos, id)
	s.mu.Unlock()
}

// Len reports the number of active conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convos)
}

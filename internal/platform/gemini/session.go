package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/JDerekLomas/sourcelibrary/internal/chat"
	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

// NewSession implements chat.SessionFactory. Each session is a fresh Gemini
// chat whose system instruction fixes the participant's persona; the SDK
// keeps turn history on the provider side.
func (c *Client) NewSession(ctx context.Context, instruction string) (chat.Session, error) {
	gchat, err := c.genai.Chats.Create(ctx, c.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: create chat session: %w", err)
	}
	return &chatSession{client: c, chat: gchat}, nil
}

// chatSession adapts one genai chat to chat.Session, sharing the owning
// client's limiters and retry policy.
type chatSession struct {
	client *Client
	chat   *genai.Chat
}

// Send submits a prompt to the session and returns the response text.
func (s *chatSession) Send(ctx context.Context, prompt string) (string, error) {
	release, err := s.client.gate.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	defer release()

	var text string
	err = provider.Retry(ctx, s.client.logger, s.client.retry, Name, "chat", func(ctx context.Context) error {
		resp, err := s.chat.SendMessage(ctx, genai.Part{Text: prompt})
		if err != nil {
			return err
		}
		text = resp.Text()
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func conversationWith(participants []string, transcript []Turn) *Conversation {
	conv := &Conversation{
		id:       "conv",
		sessions: make(map[string]Session),
		personas: make(map[string]string),
	}
	for _, pid := range participants {
		conv.order = append(conv.order, pid)
		conv.sessions[pid] = &fakeSession{}
	}
	conv.transcript = transcript
	return conv
}

func TestInferTarget(t *testing.T) {
	tests := []struct {
		name           string
		participants   []string
		transcript     []Turn
		author         string
		message        string
		allowAutoRoute bool
		want           string
	}{
		{
			name:         "sole non-author participant ignores message content",
			participants: []string{"Aristotle"},
			author:       "User1",
			message:      "hello @Nobody",
			want:         "Aristotle",
		},
		{
			name:           "at-mention",
			participants:   []string{"Aristotle", "Pythagoras"},
			author:         "User1",
			message:        "@Pythagoras, what say you?",
			allowAutoRoute: true,
			want:           "Pythagoras",
		},
		{
			name:           "name colon prefix",
			participants:   []string{"Aristotle", "Pythagoras"},
			author:         "User1",
			message:        "pythagoras: your thoughts on number",
			allowAutoRoute: true,
			want:           "Pythagoras",
		},
		{
			name:           "bare name as word",
			participants:   []string{"Aristotle", "Pythagoras"},
			author:         "User1",
			message:        "I think ARISTOTLE had it right",
			allowAutoRoute: true,
			want:           "Aristotle",
		},
		{
			name:           "registration order breaks mention ties",
			participants:   []string{"Aristotle", "Pythagoras"},
			author:         "User1",
			message:        "aristotle and pythagoras both",
			allowAutoRoute: true,
			want:           "Aristotle",
		},
		{
			name:           "substring of a longer word does not match",
			participants:   []string{"Ari", "Pythagoras"},
			author:         "User1",
			message:        "an aria is not a mention",
			transcript:     []Turn{{SpeakerID: "Pythagoras", Text: "indeed"}},
			allowAutoRoute: true,
			want:           "Pythagoras",
		},
		{
			name:           "falls back to last non-author speaker",
			participants:   []string{"Aristotle", "Pythagoras"},
			author:         "User1",
			message:        "go on",
			transcript:     []Turn{{SpeakerID: "User1", Text: "hi"}, {SpeakerID: "Aristotle", Text: "greetings"}},
			allowAutoRoute: true,
			want:           "Aristotle",
		},
		{
			name:           "author turns are skipped when scanning backward",
			participants:   []string{"Aristotle", "Pythagoras"},
			author:         "User1",
			message:        "go on",
			transcript:     []Turn{{SpeakerID: "Pythagoras", Text: "all is number"}, {SpeakerID: "User1", Text: "hm"}},
			allowAutoRoute: true,
			want:           "Pythagoras",
		},
		{
			name:           "ambiguous with empty transcript",
			participants:   []string{"Aristotle", "Pythagoras"},
			author:         "User1",
			message:        "someone answer",
			allowAutoRoute: true,
			want:           "",
		},
		{
			name:         "auto route disabled",
			participants: []string{"Aristotle", "Pythagoras"},
			author:       "User1",
			message:      "@Pythagoras hello",
			want:         "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := conversationWith(tt.participants, tt.transcript)
			got := inferTarget(conv, tt.author, tt.message, tt.allowAutoRoute)
			assert.Equal(t, tt.want, got)
		})
	}
}

package redact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		contains string
	}{
		{
			name:     "api key query parameter",
			input:    "POST https://generativelanguage.googleapis.com/v1beta/models?key=AIzaSyD4x8secret failed",
			contains: "?key=" + RedactedKeyPlaceholder,
		},
		{
			name:     "bearer token",
			input:    "request rejected: Authorization: Bearer sk-abcdef1234567890",
			contains: "Bearer " + RedactedCredentialPlaceholder,
		},
		{
			name:     "api key assignment",
			input:    `config error: api_key="mst-0123456789abcdef"`,
			contains: RedactedKeyPlaceholder,
		},
		{
			name:     "jwt token",
			input:    "token eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.abc123xyz rejected",
			contains: "[REDACTED_JWT]",
		},
		{
			name:  "plain message untouched",
			input: "connection refused",
			want:  "connection refused",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := String(tt.input)
			if tt.want != "" || tt.input == "" {
				assert.Equal(t, tt.want, got)
			}
			if tt.contains != "" {
				assert.Contains(t, got, tt.contains)
			}
		})
	}
}

func TestStringRemovesSecretValue(t *testing.T) {
	got := String("call failed: https://api.example.com/ocr?key=supersecretvalue123")
	assert.NotContains(t, got, "supersecretvalue123")
}

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil))

	err := errors.New("upstream: Bearer tok-1234567890abcdef expired")
	got := Error(err)
	assert.NotContains(t, got, "tok-1234567890abcdef")
}

package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a minimal Client for registry tests.
type fakeClient struct {
	name        string
	shutdownErr error
	shutdowns   int
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) ProcessOCR(ctx context.Context, req OCRRequest) (*OCRResult, error) {
	return &OCRResult{Text: "ocr from " + f.name}, nil
}

func (f *fakeClient) ProcessTranslation(ctx context.Context, prompt string) (string, error) {
	return "translation from " + f.name, nil
}

func (f *fakeClient) Shutdown(ctx context.Context) error {
	f.shutdowns++
	return f.shutdownErr
}

func TestRegistryResolveIsCaseInsensitive(t *testing.T) {
	gemini := &fakeClient{name: "gemini"}
	r := NewRegistry(testLogger(), gemini, &fakeClient{name: "mistral"})

	upper, err := r.Resolve("Gemini")
	require.NoError(t, err)
	lower, err := r.Resolve("gemini")
	require.NoError(t, err)

	assert.Same(t, upper.(*fakeClient), lower.(*fakeClient))
	assert.Same(t, gemini, upper.(*fakeClient))
}

func TestRegistryResolveUnknownListsAvailable(t *testing.T) {
	r := NewRegistry(testLogger(), &fakeClient{name: "gemini"}, &fakeClient{name: "mistral"})

	_, err := r.Resolve("claude")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "gemini, mistral")
}

func TestRegistryResolveEmptyName(t *testing.T) {
	r := NewRegistry(testLogger(), &fakeClient{name: "gemini"})

	_, err := r.Resolve("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "gemini")
}

func TestRegistrySkipsNilClients(t *testing.T) {
	// Constructors that degraded to "unavailable" return a nil client; the
	// registry must tolerate them.
	r := NewRegistry(testLogger(), nil, &fakeClient{name: "mistral"})

	assert.Equal(t, []string{"mistral"}, r.Names())
}

func TestRegistryShutdownAllAggregatesFailures(t *testing.T) {
	geminiErr := errors.New("close failed")
	gemini := &fakeClient{name: "gemini", shutdownErr: geminiErr}
	mistral := &fakeClient{name: "mistral"}
	r := NewRegistry(testLogger(), gemini, mistral)

	err := r.ShutdownAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShutdown)
	assert.ErrorIs(t, err, geminiErr)
	assert.Contains(t, err.Error(), "gemini")

	// Both clients were attempted despite the failure.
	assert.Equal(t, 1, gemini.shutdowns)
	assert.Equal(t, 1, mistral.shutdowns)

	// Registry is drained; a second call succeeds without touching clients.
	require.NoError(t, r.ShutdownAll(context.Background()))
	assert.Equal(t, 1, gemini.shutdowns)
	assert.Empty(t, r.Names())
}

func TestRegistryShutdownAllSuccess(t *testing.T) {
	gemini := &fakeClient{name: "gemini"}
	r := NewRegistry(testLogger(), gemini)

	require.NoError(t, r.ShutdownAll(context.Background()))
	assert.Equal(t, 1, gemini.shutdowns)
}

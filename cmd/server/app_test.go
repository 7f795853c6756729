package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDerekLomas/sourcelibrary/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Chat:   config.ChatConfig{DefaultMaxContextTurns: 12},
	}
}

func TestNewApplicationWithoutProviders(t *testing.T) {
	app, err := newApplication(context.Background(), baseConfig(), testLogger())
	require.NoError(t, err)

	assert.Empty(t, app.registry.Names())
	assert.Nil(t, app.jwtService)
	assert.NotNil(t, app.orchestrator)
	assert.NotNil(t, app.assets)
}

func TestNewApplicationWithAuthSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"

	app, err := newApplication(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, app.jwtService)
}

func TestNewApplicationRejectsShortAuthSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Auth.JWTSecret = "short"

	_, err := newApplication(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT service")
}

func TestNewApplicationWithMistralOnly(t *testing.T) {
	cfg := baseConfig()
	cfg.Providers.Mistral.APIKey = "mis-key"

	app, err := newApplication(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral"}, app.registry.Names())
}

func TestUnavailableSessionFactory(t *testing.T) {
	_, err := unavailableSessionFactory{}.NewSession(context.Background(), "persona")
	assert.Error(t, err)
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JDerekLomas/sourcelibrary/internal/assets"
	"github.com/JDerekLomas/sourcelibrary/internal/chat"
	"github.com/JDerekLomas/sourcelibrary/internal/config"
	"github.com/JDerekLomas/sourcelibrary/internal/platform/gemini"
	"github.com/JDerekLomas/sourcelibrary/internal/platform/mistral"
	"github.com/JDerekLomas/sourcelibrary/internal/provider"
	"github.com/JDerekLomas/sourcelibrary/internal/service/auth"
)

// application holds the shared application dependencies so wiring and
// shutdown live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger

	registry     *provider.Registry
	assets       assets.Store
	orchestrator *chat.Orchestrator

	// jwtService is nil when no auth secret is configured; the auth
	// middleware is skipped in that case.
	jwtService auth.JWTService
}

// newApplication wires all dependencies. A provider whose credentials are
// missing or whose client fails to construct is skipped with a warning
// instead of failing startup, so the server stays useful with whichever
// backends are configured.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		assets: assets.NewMemoryStore(),
	}

	if cfg.Auth.JWTSecret != "" {
		jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		app.jwtService = jwtService
		logger.Info("bearer-token authentication enabled")
	} else {
		logger.Warn("no auth secret configured, API endpoints are unauthenticated")
	}

	geminiClient := buildGeminiClient(ctx, cfg, logger)
	mistralClient := buildMistralClient(cfg, logger)

	var clients []provider.Client
	if geminiClient != nil {
		clients = append(clients, geminiClient)
	}
	if mistralClient != nil {
		clients = append(clients, mistralClient)
	}
	app.registry = provider.NewRegistry(logger, clients...)

	// The Gemini client doubles as the chat session factory. Without it the
	// chat endpoints fail per conversation rather than at startup.
	var sessions chat.SessionFactory
	if geminiClient != nil {
		sessions = geminiClient
	} else {
		sessions = unavailableSessionFactory{}
	}
	app.orchestrator = chat.NewOrchestrator(chat.NewStore(), sessions, logger)

	logger.Info("application initialized", "providers", app.registry.Names())
	return app, nil
}

// buildGeminiClient constructs the Gemini client, or nil when unavailable.
func buildGeminiClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) *gemini.Client {
	if cfg.Providers.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, gemini provider unavailable")
		return nil
	}
	client, err := gemini.New(ctx, logger, gemini.Config{
		APIKey:            cfg.Providers.Gemini.APIKey,
		Model:             cfg.Providers.Gemini.Model,
		MaxInFlight:       cfg.Providers.MaxInFlight,
		RequestsPerSecond: cfg.Providers.RequestsPerSecond,
	})
	if err != nil {
		logger.Warn("failed to initialize gemini client, provider unavailable", "error", err)
		return nil
	}
	return client
}

// buildMistralClient constructs the Mistral client, or nil when unavailable.
func buildMistralClient(cfg *config.Config, logger *slog.Logger) *mistral.Client {
	if cfg.Providers.Mistral.APIKey == "" {
		logger.Warn("MISTRAL_API_KEY not set, mistral provider unavailable")
		return nil
	}
	client, err := mistral.New(logger, mistral.Config{
		APIKey:            cfg.Providers.Mistral.APIKey,
		OCRModel:          cfg.Providers.Mistral.OCRModel,
		ChatModel:         cfg.Providers.Mistral.ChatModel,
		MaxInFlight:       cfg.Providers.MaxInFlight,
		RequestsPerSecond: cfg.Providers.RequestsPerSecond,
	})
	if err != nil {
		logger.Warn("failed to initialize mistral client, provider unavailable", "error", err)
		return nil
	}
	return client
}

// unavailableSessionFactory reports chat as unavailable when no
// session-capable provider was configured.
type unavailableSessionFactory struct{}

func (unavailableSessionFactory) NewSession(ctx context.Context, instruction string) (chat.Session, error) {
	return nil, fmt.Errorf("%w: no chat-capable provider configured", provider.ErrInvalidConfig)
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup shuts down the provider registry during graceful shutdown.
func (app *application) cleanup(ctx context.Context) {
	if err := app.registry.ShutdownAll(ctx); err != nil {
		app.logger.Error("provider shutdown reported failures", "error", err)
	}
	app.logger.Info("application shutdown completed")
}

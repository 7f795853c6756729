// Package main implements the entry point for the source library API server,
// which digitizes scanned books through AI-powered OCR and translation and
// hosts multi-participant AI conversations.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/JDerekLomas/sourcelibrary/internal/config"
	"github.com/JDerekLomas/sourcelibrary/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application and runs the HTTP server
// until a shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logr := logger.SetupWithWriter(os.Stdout, cfg.Server.LogLevel)
	logr.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"auth_enabled", cfg.Auth.JWTSecret != "")

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logr)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter(&buf, "warn")

	logger.Info("should be filtered")
	logger.Warn("should appear")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "should appear", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestSetupWithWriterInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter(&buf, "verbose")

	logger.Debug("filtered at info")
	logger.Info("kept")

	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "filtered at info")
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	// No logger in context: fallback wins.
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))

	// Stored logger wins over fallback.
	stored := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := WithContext(context.Background(), stored)
	assert.Same(t, stored, FromContextOrDefault(ctx, fallback))

	// Nil fallback degrades to the process default.
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
}

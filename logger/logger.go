package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nathoo/gamedisk/config"
)

// Setup configures the global slog logger. Logs go to stderr; stdout is the
// game transcript.
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWriter(cfg, os.Stderr)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.Level(),
	}

	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithSession adds the play session ID to logger context.
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session", sessionID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}

// Package logger provides the structured, levelled logger used across
// kashvi-events, built on log/slog.
//
// Local environments get a human-readable text handler at DEBUG; production
// gets JSON at INFO for log aggregators:
//
//	logger.Warn("event: listener is not callable", "event", name, "listener", desc)
//	// → time=... level=WARN msg="event: listener is not callable" event=user.created listener=...
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/kashvi-events/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stdout, config.AppEnv())
	slog.SetDefault(L)
}

// New builds a logger writing to w using the handler kashvi picks for env.
func New(w io.Writer, env string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}) // structured JSON for log aggregators
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}) // human-readable for dev
	}

	return slog.New(handler).With("app", config.AppName())
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }

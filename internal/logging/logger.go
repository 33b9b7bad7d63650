// Package logging configures the process-wide slog logger and derives
// request-scoped loggers from chi's RequestID, so an upload and every
// analysis call it triggers can be traced under one request ID.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the global slog logger from the LOG_LEVEL and
// LOG_FORMAT settings.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Deployments that ship logs to an aggregator should run "json";
// "text" is for reading a local run.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns the default logger carrying the chi RequestID
// when the context holds one, so handler-level entries line up with the
// request line the middleware writes.
//
// Usage:
//
//	func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("building histogram", "column", column)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	// Chi's RequestID middleware stores the ID in context
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a request-scoped logger with extra fields attached,
// for operations that log more than once (upload parse, shrink, session
// creation) and should carry the same file/user fields throughout.
//
// Usage:
//
//	logger := logging.WithFields(ctx, "file", fileName, "user", userEmail)
//	logger.Info("upload started")
//	// ... later ...
//	logger.Info("upload completed", "rows", rows)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

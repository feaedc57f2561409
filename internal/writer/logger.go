package writer

import (
	"context"
	"log/slog"
	"os"
)

// teeHandler forwards records to every wrapped handler.
type teeHandler struct {
	handlers []slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if err := handler.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		wrapped[i] = handler.WithAttrs(attrs)
	}
	return &teeHandler{handlers: wrapped}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		wrapped[i] = handler.WithGroup(name)
	}
	return &teeHandler{handlers: wrapped}
}

// SetupLogger builds a logger that writes human-readable text to stdout and
// structured JSON to the session log file. The caller owns closing the
// returned file.
func SetupLogger(sessionMgr *SessionManager, level slog.Level) (*slog.Logger, *os.File, error) {
	logFile, err := os.OpenFile(sessionMgr.GetLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(&teeHandler{handlers: []slog.Handler{
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}),
	}})
	return logger, logFile, nil
}

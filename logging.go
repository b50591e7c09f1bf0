package roster

import (
	"context"
	"log/slog"
	"time"
)

// MutationLogEvent describes one session operation for logging.
type MutationLogEvent struct {
	Op        string
	Source    string
	Documents int
	Duration  time.Duration
	Err       error
}

// MutationLogger records session operations, including best-effort failures
// that are never returned to the caller.
type MutationLogger interface {
	LogMutation(MutationLogEvent)
}

// MutationLoggerFunc adapts a function to MutationLogger.
type MutationLoggerFunc func(MutationLogEvent)

// LogMutation implements MutationLogger.
func (f MutationLoggerFunc) LogMutation(event MutationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopMutationLogger struct{}

func (noopMutationLogger) LogMutation(MutationLogEvent) {}

// SlogLogger writes mutation events to logger: debug on success, warn on
// failure.
func SlogLogger(logger *slog.Logger) MutationLogger {
	if logger == nil {
		return noopMutationLogger{}
	}
	return slogMutationLogger{logger: logger}
}

type slogMutationLogger struct {
	logger *slog.Logger
}

func (l slogMutationLogger) LogMutation(event MutationLogEvent) {
	attrs := []slog.Attr{
		slog.String("op", event.Op),
		slog.String("source", event.Source),
		slog.Int("documents", event.Documents),
		slog.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "roster operation failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "roster operation", attrs...)
}

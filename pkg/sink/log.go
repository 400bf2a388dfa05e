package sink

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/traceloom/traceloom/pkg/event"
)

// LogSink writes events to a structured logger. Spans and breadcrumbs
// log at debug level so they only appear with --verbose; errors log at
// error level.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink writing to logger.
// A nil logger falls back to log.Default().
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

// EmitSpan logs the span at debug level.
func (l *LogSink) EmitSpan(_ context.Context, s event.Span) error {
	l.logger.Debug("span",
		"integration", s.Integration,
		"name", s.Name,
		"target", s.Target,
		"duration", s.Duration,
		"status", s.Status,
		"trace", s.TraceID)
	return nil
}

// EmitBreadcrumb logs the breadcrumb at debug level.
func (l *LogSink) EmitBreadcrumb(_ context.Context, b event.Breadcrumb) error {
	l.logger.Debug("breadcrumb",
		"integration", b.Integration,
		"category", b.Category,
		"message", b.Message)
	return nil
}

// EmitError logs the error event at error level.
func (l *LogSink) EmitError(_ context.Context, e event.ErrorEvent) error {
	l.logger.Error("intercepted call failed",
		"integration", e.Integration,
		"method", e.Method,
		"target", e.Target,
		"error", e.Message,
		"duration", e.Duration)
	return nil
}

// Close does nothing.
func (l *LogSink) Close() error { return nil }

// Ensure LogSink implements Sink.
var _ Sink = (*LogSink)(nil)

// Package sink defines the monitoring sink consumed by call
// interceptors, with implementations for different backends:
//   - nop: discards everything (the default)
//   - memory: bounded in-memory buffer for tests and CLI inspection
//   - log: structured logging via charmbracelet/log
//   - redis: appends events to a Redis stream for live tailing
//   - mongo: persists events to MongoDB for reports and the HTTP API
//
// # Architecture
//
// Interceptors emit three kinds of events (spans, breadcrumbs, errors)
// and never inspect the result: a sink failure must not change the
// outcome of the intercepted call. Sinks therefore absorb their own
// errors where possible and interceptors ignore emission errors.
//
// Use [Fanout] to send events to several backends at once, e.g. a log
// sink for development plus a Redis stream for the live tail:
//
//	s := sink.Fanout(sink.NewLogSink(logger), redisSink)
//	defer s.Close()
package sink

import (
	"context"
	"errors"

	"github.com/traceloom/traceloom/pkg/event"
)

// Sink receives monitoring events from call interceptors.
// Implementations must be safe for concurrent use: intercepted calls
// may complete on arbitrary goroutines.
type Sink interface {
	// EmitSpan reports a timed unit of work.
	EmitSpan(ctx context.Context, s event.Span) error

	// EmitBreadcrumb reports a lightweight context record.
	EmitBreadcrumb(ctx context.Context, b event.Breadcrumb) error

	// EmitError reports a failed call.
	EmitError(ctx context.Context, e event.ErrorEvent) error

	// Close releases resources held by the sink.
	Close() error
}

// NopSink discards all events. It is the default sink so that wrapping
// a client without configuring monitoring is always safe.
type NopSink struct{}

// NewNopSink creates a sink that discards everything.
func NewNopSink() Sink { return NopSink{} }

// EmitSpan does nothing.
func (NopSink) EmitSpan(context.Context, event.Span) error { return nil }

// EmitBreadcrumb does nothing.
func (NopSink) EmitBreadcrumb(context.Context, event.Breadcrumb) error { return nil }

// EmitError does nothing.
func (NopSink) EmitError(context.Context, event.ErrorEvent) error { return nil }

// Close does nothing.
func (NopSink) Close() error { return nil }

// Ensure NopSink implements Sink.
var _ Sink = NopSink{}

// fanout forwards every event to all member sinks.
type fanout struct {
	sinks []Sink
}

// Fanout composes several sinks into one. Every member receives every
// event even when an earlier member fails; the first error encountered
// is returned. Close closes all members and joins their errors.
func Fanout(sinks ...Sink) Sink {
	return &fanout{sinks: sinks}
}

// EmitSpan forwards the span to all member sinks.
func (f *fanout) EmitSpan(ctx context.Context, s event.Span) error {
	var first error
	for _, snk := range f.sinks {
		if err := snk.EmitSpan(ctx, s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// EmitBreadcrumb forwards the breadcrumb to all member sinks.
func (f *fanout) EmitBreadcrumb(ctx context.Context, b event.Breadcrumb) error {
	var first error
	for _, snk := range f.sinks {
		if err := snk.EmitBreadcrumb(ctx, b); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// EmitError forwards the error event to all member sinks.
func (f *fanout) EmitError(ctx context.Context, e event.ErrorEvent) error {
	var first error
	for _, snk := range f.sinks {
		if err := snk.EmitError(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes all member sinks.
func (f *fanout) Close() error {
	var errs []error
	for _, snk := range f.sinks {
		if err := snk.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

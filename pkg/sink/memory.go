package sink

import (
	"context"
	"sync"

	"github.com/traceloom/traceloom/pkg/event"
)

// DefaultMemoryCapacity bounds each event buffer in a MemorySink.
const DefaultMemoryCapacity = 256

// MemorySink buffers events in memory with a bounded capacity per event
// kind, dropping the oldest entries when full. Useful for tests and for
// CLI commands that report on the events of a single run.
type MemorySink struct {
	mu          sync.Mutex
	capacity    int
	spans       []event.Span
	breadcrumbs []event.Breadcrumb
	errors      []event.ErrorEvent
}

// NewMemorySink creates a memory sink holding up to capacity events of
// each kind. A capacity <= 0 uses [DefaultMemoryCapacity].
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemorySink{capacity: capacity}
}

// EmitSpan buffers the span.
func (m *MemorySink) EmitSpan(_ context.Context, s event.Span) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = appendBounded(m.spans, s, m.capacity)
	return nil
}

// EmitBreadcrumb buffers the breadcrumb.
func (m *MemorySink) EmitBreadcrumb(_ context.Context, b event.Breadcrumb) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breadcrumbs = appendBounded(m.breadcrumbs, b, m.capacity)
	return nil
}

// EmitError buffers the error event.
func (m *MemorySink) EmitError(_ context.Context, e event.ErrorEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = appendBounded(m.errors, e, m.capacity)
	return nil
}

// Close does nothing.
func (m *MemorySink) Close() error { return nil }

// Spans returns a snapshot of the buffered spans in emission order.
func (m *MemorySink) Spans() []event.Span {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]event.Span(nil), m.spans...)
}

// Breadcrumbs returns a snapshot of the buffered breadcrumbs.
func (m *MemorySink) Breadcrumbs() []event.Breadcrumb {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]event.Breadcrumb(nil), m.breadcrumbs...)
}

// Errors returns a snapshot of the buffered error events.
func (m *MemorySink) Errors() []event.ErrorEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]event.ErrorEvent(nil), m.errors...)
}

func appendBounded[T any](buf []T, v T, capacity int) []T {
	buf = append(buf, v)
	if len(buf) > capacity {
		buf = buf[len(buf)-capacity:]
	}
	return buf
}

// Ensure MemorySink implements Sink.
var _ Sink = (*MemorySink)(nil)

package sink

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/traceloom/traceloom/pkg/event"
)

func span(name string) event.Span {
	return event.Span{
		ID:      name,
		TraceID: "trace-1",
		Name:    name,
		Start:   time.Now(),
		Status:  event.StatusOK,
	}
}

func TestNopSink(t *testing.T) {
	ctx := context.Background()
	s := NewNopSink()
	defer s.Close()

	if err := s.EmitSpan(ctx, span("a")); err != nil {
		t.Errorf("EmitSpan error: %v", err)
	}
	if err := s.EmitBreadcrumb(ctx, event.Breadcrumb{}); err != nil {
		t.Errorf("EmitBreadcrumb error: %v", err)
	}
	if err := s.EmitError(ctx, event.ErrorEvent{}); err != nil {
		t.Errorf("EmitError error: %v", err)
	}
}

func TestMemorySinkBuffers(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySink(0)

	_ = m.EmitSpan(ctx, span("a"))
	_ = m.EmitSpan(ctx, span("b"))
	_ = m.EmitBreadcrumb(ctx, event.Breadcrumb{Message: "crumb"})
	_ = m.EmitError(ctx, event.ErrorEvent{Message: "boom"})

	spans := m.Spans()
	if len(spans) != 2 || spans[0].Name != "a" || spans[1].Name != "b" {
		t.Errorf("Spans = %v", spans)
	}
	if got := m.Breadcrumbs(); len(got) != 1 || got[0].Message != "crumb" {
		t.Errorf("Breadcrumbs = %v", got)
	}
	if got := m.Errors(); len(got) != 1 || got[0].Message != "boom" {
		t.Errorf("Errors = %v", got)
	}

	// Snapshots are copies, not views
	spans[0].Name = "mutated"
	if m.Spans()[0].Name != "a" {
		t.Error("Spans snapshot should not alias internal buffer")
	}
}

func TestMemorySinkDropsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySink(3)

	for i := range 5 {
		_ = m.EmitSpan(ctx, span(fmt.Sprintf("s%d", i)))
	}

	spans := m.Spans()
	if len(spans) != 3 {
		t.Fatalf("len = %d, want 3", len(spans))
	}
	if spans[0].Name != "s2" || spans[2].Name != "s4" {
		t.Errorf("oldest entries not dropped: %v", spans)
	}
}

// failingSink fails every emission but still counts them.
type failingSink struct {
	NopSink
	spans int
}

func (f *failingSink) EmitSpan(context.Context, event.Span) error {
	f.spans++
	return errors.New("sink down")
}

func TestFanoutDeliversToAllDespiteError(t *testing.T) {
	ctx := context.Background()
	failing := &failingSink{}
	mem := NewMemorySink(0)
	f := Fanout(failing, mem)

	err := f.EmitSpan(ctx, span("a"))
	if err == nil {
		t.Error("fanout should surface the first error")
	}
	if failing.spans != 1 {
		t.Error("failing member should have been called")
	}
	if len(mem.Spans()) != 1 {
		t.Error("later members should still receive the event")
	}
}

func TestFanoutClose(t *testing.T) {
	mem1 := NewMemorySink(0)
	mem2 := NewMemorySink(0)
	if err := Fanout(mem1, mem2).Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

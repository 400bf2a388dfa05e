package event

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func testCall(err error) *Call {
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return &Call{
		Method: "GET",
		Target: "https://api.example.com/rest/v1/items",
		Args:   []string{"limit=10"},
		Start:  start,
		End:    start.Add(250 * time.Millisecond),
		Err:    err,
	}
}

func TestCallOutcome(t *testing.T) {
	ok := testCall(nil)
	if ok.Failed() {
		t.Error("call without error should not be failed")
	}
	if ok.Status() != StatusOK {
		t.Errorf("Status = %s, want %s", ok.Status(), StatusOK)
	}
	if ok.Duration() != 250*time.Millisecond {
		t.Errorf("Duration = %s", ok.Duration())
	}

	failed := testCall(errors.New("timeout"))
	if !failed.Failed() {
		t.Error("call with error should be failed")
	}
	if failed.Status() != StatusError {
		t.Errorf("Status = %s, want %s", failed.Status(), StatusError)
	}
}

func TestSpanFromCall(t *testing.T) {
	c := testCall(nil)
	traceID := NewTraceID()
	s := SpanFromCall(c, "http-tracing", traceID, "parent-1")

	if s.ID == "" {
		t.Error("span should get a generated ID")
	}
	if s.TraceID != traceID || s.ParentID != "parent-1" {
		t.Errorf("trace linkage wrong: %+v", s)
	}
	if s.Name != "GET" || s.Target != c.Target {
		t.Errorf("span identity wrong: %+v", s)
	}
	if s.Duration != c.Duration() || s.Status != StatusOK {
		t.Errorf("span measurement wrong: %+v", s)
	}

	// IDs are unique per span
	s2 := SpanFromCall(c, "http-tracing", traceID, "")
	if s2.ID == s.ID {
		t.Error("two spans should not share an ID")
	}
}

func TestBreadcrumbFromCall(t *testing.T) {
	c := testCall(nil)
	b := BreadcrumbFromCall(c, "db-breadcrumbs")

	if b.Category != "client.call" {
		t.Errorf("Category = %q", b.Category)
	}
	if b.Message != "GET" {
		t.Errorf("Message = %q", b.Message)
	}
	if b.Time != c.End {
		t.Error("breadcrumb time should be the call end time")
	}
	if b.Data["status"] != "ok" || b.Data["target"] != c.Target {
		t.Errorf("Data = %v", b.Data)
	}
}

func TestErrorFromCall(t *testing.T) {
	c := testCall(errors.New("connection reset"))
	e := ErrorFromCall(c, "db-errors", "trace-9")

	if e.ID == "" {
		t.Error("error event should get a generated ID")
	}
	if e.Message != "connection reset" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Method != "GET" || e.TraceID != "trace-9" {
		t.Errorf("event identity wrong: %+v", e)
	}
	if e.Duration != c.Duration() {
		t.Errorf("Duration = %s", e.Duration)
	}
}

func TestTruncateArgs(t *testing.T) {
	if got := TruncateArgs(nil); got != nil {
		t.Errorf("TruncateArgs(nil) = %v, want nil", got)
	}

	// Each argument is rendered and bounded
	long := strings.Repeat("x", MaxArgLen+50)
	got := TruncateArgs([]any{"short", 42, long})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != "short" || got[1] != "42" {
		t.Errorf("rendered args = %v", got[:2])
	}
	if len(got[2]) != MaxArgLen+3 || !strings.HasSuffix(got[2], "...") {
		t.Errorf("long arg not truncated: len=%d", len(got[2]))
	}

	// Argument count is bounded with a summary marker
	many := make([]any, MaxArgs+3)
	for i := range many {
		many[i] = i
	}
	got = TruncateArgs(many)
	if len(got) != MaxArgs+1 {
		t.Fatalf("len = %d, want %d", len(got), MaxArgs+1)
	}
	if got[MaxArgs] != "... (3 more)" {
		t.Errorf("summary marker = %q", got[MaxArgs])
	}
}

func TestTruncateStringRuneBoundary(t *testing.T) {
	// Fill up to just below the limit, then place a multi-byte rune
	// across the boundary. The cut must not split it.
	s := strings.Repeat("a", MaxArgLen-1) + "日本語"
	got := TruncateString(s)

	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated string is not valid UTF-8: %q", got)
	}
	if len(got) > MaxArgLen+3 {
		t.Errorf("len = %d, want <= %d", len(got), MaxArgLen+3)
	}

	// ASCII at the boundary still cuts at exactly MaxArgLen bytes.
	ascii := TruncateString(strings.Repeat("a", MaxArgLen+10))
	if len(ascii) != MaxArgLen+3 {
		t.Errorf("ascii len = %d, want %d", len(ascii), MaxArgLen+3)
	}
}

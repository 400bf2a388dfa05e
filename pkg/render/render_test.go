package render

import (
	"strings"
	"testing"
	"time"

	"github.com/traceloom/traceloom/pkg/event"
)

func testSpans() []event.Span {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return []event.Span{
		{ID: "root", TraceID: "t1", Name: "probe", Start: base, Duration: time.Second, Status: event.StatusOK},
		{ID: "child-a", TraceID: "t1", ParentID: "root", Name: "GET", Target: "https://x.test/rest/v1", Start: base.Add(10 * time.Millisecond), Duration: 200 * time.Millisecond, Status: event.StatusOK},
		{ID: "child-b", TraceID: "t1", ParentID: "root", Name: "GET", Target: "https://x.test/storage/v1", Start: base.Add(300 * time.Millisecond), Duration: 100 * time.Millisecond, Status: event.StatusError},
	}
}

func TestBuildTree(t *testing.T) {
	tree := BuildTree("t1", testSpans())

	if len(tree.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(tree.Roots))
	}
	root := tree.Roots[0]
	if root.Span.ID != "root" {
		t.Errorf("root = %s", root.Span.ID)
	}
	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.Children))
	}
	// Children ordered by start time
	if root.Children[0].Span.ID != "child-a" || root.Children[1].Span.ID != "child-b" {
		t.Errorf("child order = %s, %s", root.Children[0].Span.ID, root.Children[1].Span.ID)
	}
	if tree.SpanCount() != 3 {
		t.Errorf("SpanCount = %d", tree.SpanCount())
	}
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	spans := []event.Span{
		{ID: "a", TraceID: "t1", ParentID: "missing", Name: "GET"},
		{ID: "b", TraceID: "t1", Name: "GET"},
	}
	tree := BuildTree("t1", spans)
	if len(tree.Roots) != 2 {
		t.Errorf("roots = %d, want 2 (orphan promoted)", len(tree.Roots))
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(BuildTree("t1", testSpans()))

	if !strings.HasPrefix(dot, "digraph trace {") {
		t.Errorf("dot prefix = %q", dot[:30])
	}
	for _, want := range []string{
		`"root"`,
		`"root" -> "child-a";`,
		`"root" -> "child-b";`,
		"https://x.test/rest/v1",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	// Failed span is highlighted
	if !strings.Contains(dot, "color=red") {
		t.Error("failed span should be drawn with a red border")
	}
}

func TestToDOTEmptyTrace(t *testing.T) {
	dot := ToDOT(BuildTree("t1", nil))
	if !strings.Contains(dot, "digraph trace {") || !strings.Contains(dot, "}") {
		t.Errorf("empty trace should still be valid DOT:\n%s", dot)
	}
}

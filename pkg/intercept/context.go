package intercept

import (
	"context"

	"github.com/traceloom/traceloom/pkg/event"
	"github.com/traceloom/traceloom/pkg/filter"
)

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

const (
	guardKey ctxKey = iota
	traceKey
	parentKey
)

// reportGuard enforces the at-most-once invariant for a single call:
// when several interception layers observe the same invocation, only
// the first whose filter accepts the target reports it. The guard is
// created once per call and shared by all layers via the context; each
// call's guard is local to that call's execution, so no locking is
// needed.
type reportGuard struct {
	claimed bool
}

// claim returns true exactly once per call, and only when the filter
// accepts the target. Layers whose filters reject the target do not
// consume the claim.
func (g *reportGuard) claim(p filter.Predicate, target string) bool {
	if g.claimed || !p(target) {
		return false
	}
	g.claimed = true
	return true
}

// ensureGuard returns a context carrying a per-call report guard,
// creating one if the context does not already carry one. The
// outermost interception layer creates it; inner layers reuse it.
func ensureGuard(ctx context.Context) (context.Context, *reportGuard) {
	if g, ok := ctx.Value(guardKey).(*reportGuard); ok {
		return ctx, g
	}
	g := &reportGuard{}
	return context.WithValue(ctx, guardKey, g), g
}

// WithTrace returns a context carrying the given trace ID. Spans
// emitted for calls under this context join that trace.
func WithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

// TraceID returns the trace ID carried by ctx, or "" when unset.
// Spans emitted without a trace ID stand alone.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey).(string); ok {
		return id
	}
	return ""
}

// NewTrace returns a context carrying a freshly generated trace ID,
// along with that ID.
func NewTrace(ctx context.Context) (context.Context, string) {
	id := event.NewTraceID()
	return WithTrace(ctx, id), id
}

// WithParentSpan returns a context under which emitted spans reference
// spanID as their parent.
func WithParentSpan(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, parentKey, spanID)
}

// ParentSpanID returns the parent span ID carried by ctx, or "".
func ParentSpanID(ctx context.Context) string {
	if id, ok := ctx.Value(parentKey).(string); ok {
		return id
	}
	return ""
}

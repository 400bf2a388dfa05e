// Package intercept wraps client calls so that each invocation
// additionally emits monitoring events, without changing the call's
// return value or error behavior.
//
// Interception is decorator composition: wrapping produces a new value
// exposing the same interface as the target, and the target itself is
// never mutated. Two target shapes are supported:
//   - [Invoker] for clients that dispatch operations by method name
//   - http.RoundTripper for real HTTP clients (see roundtripper.go)
//
// # Reporting
//
// Per call, a wrapper records the start time, invokes the original,
// and on completion emits a span and breadcrumb (success or failure)
// and an error event (failure only), subject to the configured signal
// flags and filter. The wrapped call's outcome is returned unchanged;
// sink failures are deliberately ignored.
//
// When several wrappers observe the same call, a per-call guard carried
// on the context ensures the call is reported by at most one of them,
// even when their filters overlap. The wrapper closest to the target
// reports first.
package intercept

import (
	"context"
	"time"

	"github.com/traceloom/traceloom/pkg/event"
	"github.com/traceloom/traceloom/pkg/filter"
	"github.com/traceloom/traceloom/pkg/sink"
)

// Invoker is the target client shape for name-dispatched calls: any
// object exposing network-call methods by name. Implementations return
// the operation's value or fail with an error.
type Invoker interface {
	Invoke(ctx context.Context, method string, args ...any) (any, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, method string, args ...any) (any, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, method string, args ...any) (any, error) {
	return f(ctx, method, args...)
}

// Config describes one interception layer.
type Config struct {
	// Integration names the integration this layer reports for.
	Integration string

	// Signal flags. A disabled signal is never emitted, even for calls
	// the filter accepts.
	Tracing     bool
	Breadcrumbs bool
	Errors      bool

	// Filter decides whether a call is this layer's to report.
	// Nil means report every call.
	Filter filter.Predicate

	// Sink receives the emitted events. Nil means discard.
	Sink sink.Sink
}

func (c Config) filter() filter.Predicate {
	if c.Filter == nil {
		return filter.ReportAll
	}
	return c.Filter
}

func (c Config) sink() sink.Sink {
	if c.Sink == nil {
		return sink.NopSink{}
	}
	return c.Sink
}

// wrappedInvoker decorates an Invoker with one interception layer.
type wrappedInvoker struct {
	next Invoker
	cfg  Config
}

// WrapInvoker returns an Invoker that forwards to target and reports
// completed calls per cfg. The returned value satisfies the same
// interface as the target; callers observe identical results.
func WrapInvoker(target Invoker, cfg Config) Invoker {
	return &wrappedInvoker{next: target, cfg: cfg}
}

// Invoke forwards the call and reports its completion.
func (w *wrappedInvoker) Invoke(ctx context.Context, method string, args ...any) (any, error) {
	ctx, guard := ensureGuard(ctx)

	call := &event.Call{
		Method: method,
		Target: method,
		Args:   event.TruncateArgs(args),
		Start:  time.Now(),
	}

	v, err := w.next.Invoke(ctx, method, args...)

	call.End = time.Now()
	call.Err = err
	report(ctx, guard, call, w.cfg)

	return v, err
}

// report emits the configured signals for a completed call, honoring
// the at-most-once guard and the layer's filter. Sink errors never
// reach the caller.
func report(ctx context.Context, guard *reportGuard, call *event.Call, cfg Config) {
	if !guard.claim(cfg.filter(), call.Target) {
		return
	}

	s := cfg.sink()
	if cfg.Tracing {
		_ = s.EmitSpan(ctx, event.SpanFromCall(call, cfg.Integration, TraceID(ctx), ParentSpanID(ctx)))
	}
	if cfg.Breadcrumbs {
		_ = s.EmitBreadcrumb(ctx, event.BreadcrumbFromCall(call, cfg.Integration))
	}
	if cfg.Errors && call.Failed() {
		_ = s.EmitError(ctx, event.ErrorFromCall(call, cfg.Integration, TraceID(ctx)))
	}
}

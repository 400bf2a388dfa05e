// Package event defines the records produced when an intercepted client
// call is reported: spans for timing, breadcrumbs for context, and error
// events for failures.
//
// A [Call] is created per invocation of a wrapped client method and
// discarded after reporting. Spans, breadcrumbs, and error events are
// derived from it and carry everything a monitoring sink needs; sinks
// never see the call's actual return value.
//
// # Identifiers
//
// Event and trace identifiers are UUIDs. A trace ID groups the spans of
// one logical operation (e.g. one CLI invocation); span IDs are unique
// per span and may reference a parent span to form a tree.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Status describes the outcome of an intercepted call.
type Status string

// Span statuses.
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Call records a single invocation of a wrapped client method.
// It is local to that invocation and never shared across goroutines.
type Call struct {
	Method string    // method or operation name (e.g. "GET", "from.select")
	Target string    // URL or logical target of the call
	Args   []string  // truncated argument representations
	Start  time.Time // when the wrapped method was invoked
	End    time.Time // when the underlying call completed
	Err    error     // nil on success; the original error otherwise
}

// Duration returns the elapsed time between Start and End.
func (c *Call) Duration() time.Duration {
	return c.End.Sub(c.Start)
}

// Failed reports whether the call ended in an error.
func (c *Call) Failed() bool { return c.Err != nil }

// Status maps the call outcome to a span status.
func (c *Call) Status() Status {
	if c.Failed() {
		return StatusError
	}
	return StatusOK
}

// Span is a timed unit of work reported to a tracing backend.
type Span struct {
	ID          string        `json:"id" bson:"_id"`
	TraceID     string        `json:"trace_id" bson:"trace_id"`
	ParentID    string        `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Target      string        `json:"target,omitempty" bson:"target,omitempty"`
	Integration string        `json:"integration" bson:"integration"`
	Start       time.Time     `json:"start" bson:"start"`
	Duration    time.Duration `json:"duration" bson:"duration"`
	Status      Status        `json:"status" bson:"status"`
}

// Breadcrumb is a lightweight event record attached to a later-reported
// error for context.
type Breadcrumb struct {
	Time        time.Time         `json:"time" bson:"time"`
	Category    string            `json:"category" bson:"category"`
	Message     string            `json:"message" bson:"message"`
	Integration string            `json:"integration" bson:"integration"`
	Data        map[string]string `json:"data,omitempty" bson:"data,omitempty"`
}

// ErrorEvent reports a failed call to an error-monitoring backend.
type ErrorEvent struct {
	ID          string        `json:"id" bson:"_id"`
	TraceID     string        `json:"trace_id,omitempty" bson:"trace_id,omitempty"`
	Time        time.Time     `json:"time" bson:"time"`
	Integration string        `json:"integration" bson:"integration"`
	Method      string        `json:"method" bson:"method"`
	Target      string        `json:"target,omitempty" bson:"target,omitempty"`
	Args        []string      `json:"args,omitempty" bson:"args,omitempty"`
	Message     string        `json:"message" bson:"message"`
	Duration    time.Duration `json:"duration" bson:"duration"`
}

// NewTraceID generates a fresh trace identifier.
func NewTraceID() string { return uuid.NewString() }

// SpanFromCall builds a span for the given call.
// The trace and parent identifiers come from the caller's trace context.
func SpanFromCall(c *Call, integration, traceID, parentID string) Span {
	return Span{
		ID:          uuid.NewString(),
		TraceID:     traceID,
		ParentID:    parentID,
		Name:        c.Method,
		Target:      c.Target,
		Integration: integration,
		Start:       c.Start,
		Duration:    c.Duration(),
		Status:      c.Status(),
	}
}

// BreadcrumbFromCall builds a breadcrumb summarizing the given call.
func BreadcrumbFromCall(c *Call, integration string) Breadcrumb {
	data := map[string]string{
		"duration": c.Duration().String(),
		"status":   string(c.Status()),
	}
	if c.Target != "" {
		data["target"] = c.Target
	}
	return Breadcrumb{
		Time:        c.End,
		Category:    "client.call",
		Message:     c.Method,
		Integration: integration,
		Data:        data,
	}
}

// ErrorFromCall builds an error event for a failed call.
// The caller must ensure c.Err is non-nil.
func ErrorFromCall(c *Call, integration, traceID string) ErrorEvent {
	return ErrorEvent{
		ID:          uuid.NewString(),
		TraceID:     traceID,
		Time:        c.End,
		Integration: integration,
		Method:      c.Method,
		Target:      c.Target,
		Args:        c.Args,
		Message:     c.Err.Error(),
		Duration:    c.Duration(),
	}
}

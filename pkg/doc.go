// Package pkg provides the core libraries for Traceloom client monitoring.
//
// # Overview
//
// Traceloom wraps client calls with monitoring integrations that emit
// spans, breadcrumbs, and error events without changing what the call
// returns. The pkg directory is organized into four main areas:
//
//  1. [integration] - Integration registry and option parsing
//  2. [intercept]   - Call interceptors (method invokers and HTTP transports)
//  3. [sink]        - Event sinks (memory, log, Redis stream, MongoDB store)
//  4. [server] / [render] - Query API and trace visualization
//
// # Architecture
//
// The typical data flow through Traceloom:
//
//	client call (Invoker or http.RoundTripper)
//	         ↓
//	    [intercept] package (wrap call, build events, at-most-once guard)
//	         ↓
//	    [filter] package (decide which integration reports)
//	         ↓
//	    [sink] package (fan out to Redis / MongoDB / spool / log)
//	         ↓
//	    [server] and [render] packages (query and visualize)
//
// # Quick Start
//
// Register an integration and wrap an HTTP client:
//
//	import (
//	    "net/http"
//
//	    "github.com/traceloom/traceloom/pkg/filter"
//	    "github.com/traceloom/traceloom/pkg/integration"
//	    "github.com/traceloom/traceloom/pkg/sink"
//	)
//
//	// 1. Create a registry backed by a sink
//	mem := sink.NewMemorySink(0)
//	reg := integration.NewRegistry(mem)
//
//	// 2. Register an integration for one slice of traffic
//	in, _ := integration.New("rest-tracing",
//	    integration.Options{Tracing: true, Breadcrumbs: true, Errors: true},
//	    integration.WithFilter(filter.URLPrefix("https://api.example.com/rest/")))
//	_ = reg.Register(in)
//
//	// 3. Wrap the client transport; calls behave exactly as before
//	client := &http.Client{Transport: reg.WrapTransport(nil)}
//	resp, err := client.Get("https://api.example.com/rest/users")
//
// Every matching request now produces a span and breadcrumb in the sink,
// plus an error event when the call fails, while resp and err are exactly
// what the unwrapped client would have returned.
package pkg

// Package httputil provides the HTTP plumbing shared by instrumented
// clients: retry with exponential backoff, status classification, and
// a small JSON client whose transport is routed through a monitoring
// registry.
//
// The [Client] here is the reference target for interception: it is an
// ordinary HTTP client whose only difference from a bare one is that
// its transport was wrapped by [integration.Registry.WrapTransport].
package httputil

package integration

import (
	"net/http"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/intercept"
	"github.com/traceloom/traceloom/pkg/sink"
)

// Registry holds an ordered sequence of registered integrations and
// applies them to target clients. All integrations report to the
// registry's sink.
//
// Registration happens once at process startup from a single
// goroutine; afterwards the registry is read-only.
type Registry struct {
	sink  sink.Sink
	order []Integration
	names map[string]struct{}
}

// NewRegistry creates an empty registry reporting to s.
// A nil sink discards all events.
func NewRegistry(s sink.Sink) *Registry {
	if s == nil {
		s = sink.NewNopSink()
	}
	return &Registry{
		sink:  s,
		names: make(map[string]struct{}),
	}
}

// Register adds an integration. Registering a second integration with
// the same name fails with code DUPLICATE_INTEGRATION.
func (r *Registry) Register(in Integration) error {
	if in.name == "" {
		return errors.New(errors.ErrCodeInvalidName, "integration name cannot be empty")
	}
	if _, exists := r.names[in.name]; exists {
		return errors.New(errors.ErrCodeDuplicateIntegration,
			"integration %q already registered", in.name)
	}
	r.names[in.name] = struct{}{}
	r.order = append(r.order, in)
	return nil
}

// IsDuplicate reports whether err is a duplicate-registration error.
func IsDuplicate(err error) bool {
	return errors.Is(err, errors.ErrCodeDuplicateIntegration)
}

// Integrations returns the registered integrations in registration
// order.
func (r *Registry) Integrations() []Integration {
	return append([]Integration(nil), r.order...)
}

// Sink returns the registry's sink.
func (r *Registry) Sink() sink.Sink { return r.sink }

func (r *Registry) configFor(in Integration) intercept.Config {
	return intercept.Config{
		Integration: in.name,
		Tracing:     in.opts.Tracing,
		Breadcrumbs: in.opts.Breadcrumbs,
		Errors:      in.opts.Errors,
		Filter:      in.filter,
		Sink:        r.sink,
	}
}

// appliedInvoker marks an invoker already wrapped by a registry, so a
// second application of the same registry is a no-op.
type appliedInvoker struct {
	intercept.Invoker
	registry *Registry
}

// WrapInvoker applies every registered integration to target, in
// registration order, and returns the wrapped invoker. The target is
// not modified. Applying the same registry to its own output returns
// the output unchanged (idempotent per target).
func (r *Registry) WrapInvoker(target intercept.Invoker) intercept.Invoker {
	if a, ok := target.(*appliedInvoker); ok && a.registry == r {
		return target
	}
	wrapped := target
	for _, in := range r.order {
		wrapped = intercept.WrapInvoker(wrapped, r.configFor(in))
	}
	return &appliedInvoker{Invoker: wrapped, registry: r}
}

// appliedTransport marks a transport already wrapped by a registry.
type appliedTransport struct {
	http.RoundTripper
	registry *Registry
}

// WrapTransport applies every registered integration to next, in
// registration order, and returns the wrapped transport. A nil next
// uses http.DefaultTransport. Applying the same registry to its own
// output returns the output unchanged (idempotent per target).
func (r *Registry) WrapTransport(next http.RoundTripper) http.RoundTripper {
	if a, ok := next.(*appliedTransport); ok && a.registry == r {
		return next
	}
	if next == nil {
		next = http.DefaultTransport
	}
	wrapped := next
	for _, in := range r.order {
		wrapped = intercept.WrapTransport(wrapped, r.configFor(in))
	}
	return &appliedTransport{RoundTripper: wrapped, registry: r}
}

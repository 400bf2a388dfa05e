// Package integration plugs named monitoring integrations into client
// wrappers.
//
// An [Integration] is a configured unit: a name, the signal flags it
// enables (tracing, breadcrumbs, errors), and an optional filter
// limiting which calls it reports. Integrations are immutable once
// registered.
//
// A [Registry] holds an ordered sequence of integrations sharing one
// monitoring sink and applies them all to a target client, producing a
// wrapped client that behaves identically but reports its calls. The
// earlier an integration was registered, the closer its layer sits to
// the target, so it gets first claim on each call.
//
// # Usage
//
//	reg := integration.NewRegistry(logSink)
//	rest, _ := integration.New("rest-tracing",
//	    integration.Options{Tracing: true, Breadcrumbs: true},
//	    integration.WithFilter(filter.URLPrefix(baseURL+"/rest/")))
//	if err := reg.Register(rest); err != nil {
//	    return err
//	}
//
//	client := &http.Client{Transport: reg.WrapTransport(nil)}
//
// Registration is a startup-time, single-goroutine activity. Once
// built, the registry and the wrappers it produces are safe for
// concurrent use.
package integration

import (
	"sort"
	"strings"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/filter"
)

// Options holds the recognized integration flags.
type Options struct {
	// Tracing emits a span per reported call.
	Tracing bool `json:"tracing" toml:"tracing"`

	// Breadcrumbs emits a breadcrumb per reported call.
	Breadcrumbs bool `json:"breadcrumbs" toml:"breadcrumbs"`

	// Errors emits an error event per reported failed call.
	Errors bool `json:"errors" toml:"errors"`
}

// Recognized option flag names for ParseOptions.
const (
	OptionTracing     = "tracing"
	OptionBreadcrumbs = "breadcrumbs"
	OptionErrors      = "errors"
)

// ParseOptions builds Options from a flag mapping, the form options
// arrive in from configuration. An unrecognized flag name fails with
// code UNKNOWN_OPTION; misconfiguration is never silently ignored.
func ParseOptions(flags map[string]bool) (Options, error) {
	var opts Options
	var unknown []string
	for name, on := range flags {
		switch name {
		case OptionTracing:
			opts.Tracing = on
		case OptionBreadcrumbs:
			opts.Breadcrumbs = on
		case OptionErrors:
			opts.Errors = on
		default:
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Options{}, errors.New(errors.ErrCodeUnknownOption,
			"unknown option: %s", strings.Join(unknown, ", "))
	}
	return opts, nil
}

// Integration is a configured unit that augments a client with
// observability behavior. Immutable once created.
type Integration struct {
	name   string
	opts   Options
	filter filter.Predicate
}

// Option customizes an Integration at construction time.
type Option func(*Integration)

// WithFilter limits the integration to calls the predicate accepts.
// Without a filter the integration claims every call.
func WithFilter(p filter.Predicate) Option {
	return func(in *Integration) { in.filter = p }
}

// New creates an Integration. The name must be a valid integration
// name (lowercase alphanumerics and hyphens); invalid names fail fast.
func New(name string, opts Options, fns ...Option) (Integration, error) {
	if err := errors.ValidateIntegrationName(name); err != nil {
		return Integration{}, err
	}
	in := Integration{name: name, opts: opts}
	for _, fn := range fns {
		fn(&in)
	}
	return in, nil
}

// Name returns the integration's name.
func (in Integration) Name() string { return in.name }

// Options returns the integration's signal flags.
func (in Integration) Options() Options { return in.opts }

// Filter returns the integration's predicate, or nil when unfiltered.
func (in Integration) Filter() filter.Predicate { return in.filter }

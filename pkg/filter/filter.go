// Package filter provides pure predicates deciding whether an
// intercepted call should be reported.
//
// When several integrations observe the same client, each is given a
// predicate over the call's target URL (or method name) so the
// integrations partition the calls between them instead of reporting
// the same network request twice. A predicate holds no mutable state;
// it is a pure function of its input and safe for concurrent use.
//
// # Usage
//
//	rest := filter.URLPrefix("https://api.example.com/rest/")
//	storage := filter.URLPrefix("https://api.example.com/storage/")
//
//	// The REST integration ignores storage traffic and vice versa.
//	restOnly := filter.All(rest, filter.Not(storage))
package filter

import (
	"net/url"
	"strings"
)

// Predicate reports whether a call with the given target should be
// reported. Targets are URLs for HTTP interception and method names for
// invoker interception.
type Predicate func(target string) bool

// ReportAll reports every call. This is the default when an integration
// declares no filter.
func ReportAll(string) bool { return true }

// ReportNone suppresses every call.
func ReportNone(string) bool { return false }

// URLPrefix matches targets beginning with the given prefix.
func URLPrefix(prefix string) Predicate {
	return func(target string) bool {
		return strings.HasPrefix(target, prefix)
	}
}

// URLPrefixes matches targets beginning with any of the given prefixes.
// With no prefixes it matches nothing.
func URLPrefixes(prefixes ...string) Predicate {
	return func(target string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(target, p) {
				return true
			}
		}
		return false
	}
}

// Host matches targets whose URL host equals host (case-insensitive).
// Targets that do not parse as URLs never match.
func Host(host string) Predicate {
	host = strings.ToLower(host)
	return func(target string) bool {
		u, err := url.Parse(target)
		if err != nil {
			return false
		}
		return strings.ToLower(u.Host) == host
	}
}

// Method matches a target method name exactly. Intended for invoker
// targets, where the reported target is the method name itself.
func Method(name string) Predicate {
	return func(target string) bool {
		return target == name
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(target string) bool {
		return !p(target)
	}
}

// Any matches when at least one of the given predicates matches.
// With no predicates it matches nothing.
func Any(ps ...Predicate) Predicate {
	return func(target string) bool {
		for _, p := range ps {
			if p(target) {
				return true
			}
		}
		return false
	}
}

// All matches when every given predicate matches.
// With no predicates it matches everything.
func All(ps ...Predicate) Predicate {
	return func(target string) bool {
		for _, p := range ps {
			if !p(target) {
				return false
			}
		}
		return true
	}
}

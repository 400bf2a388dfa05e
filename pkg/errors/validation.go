package errors

import (
	"regexp"
	"strings"
)

// integrationNameRegex matches valid integration names: lowercase
// alphanumerics separated by single hyphens (e.g. "supabase-tracing").
var integrationNameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateIntegrationName validates an integration name.
// Names identify integrations in registries, event payloads, and config
// files, so the rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - Lowercase alphanumerics and single hyphens only
func ValidateIntegrationName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "integration name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidName, "integration name too long (max 64 characters)")
	}

	if !integrationNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid integration name: %q", name)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

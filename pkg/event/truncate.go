package event

import (
	"fmt"
	"unicode/utf8"
)

// Truncation bounds for argument capture. Event payloads are context for
// monitoring, not a data export: both the number of captured arguments
// and the length of each representation are bounded.
const (
	// MaxArgs is the maximum number of arguments captured per call.
	MaxArgs = 8

	// MaxArgLen is the maximum length of each captured argument, in bytes.
	MaxArgLen = 128
)

// TruncateArgs renders call arguments as bounded strings.
// At most [MaxArgs] arguments are kept; longer lists are summarized with
// a trailing count marker. Each rendered argument is cut at [MaxArgLen]
// bytes with an ellipsis.
func TruncateArgs(args []any) []string {
	if len(args) == 0 {
		return nil
	}

	n := min(len(args), MaxArgs)
	out := make([]string, 0, n+1)
	for _, a := range args[:n] {
		out = append(out, TruncateString(fmt.Sprintf("%v", a)))
	}
	if len(args) > MaxArgs {
		out = append(out, fmt.Sprintf("... (%d more)", len(args)-MaxArgs))
	}
	return out
}

// TruncateString cuts s at [MaxArgLen] bytes, appending an ellipsis when
// anything was removed. The cut backs up to a rune boundary so the
// result stays valid UTF-8 when a multi-byte rune spans the limit.
func TruncateString(s string) string {
	if len(s) <= MaxArgLen {
		return s
	}
	cut := MaxArgLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

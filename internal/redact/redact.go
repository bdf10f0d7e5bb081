// Package redact applies the fixed secret-masking transformation to any
// string that is about to leave the evaluation engine.
package redact

import (
	"regexp"
	"strings"
)

// secretPatterns is the same regex set the leak checker uses to scan for
// secrets (internal/checkers/leaks.go); redaction and detection share one
// source of truth so a masked value can never slip past its own detector.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sk-[a-z0-9]{16,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`ASIA[0-9A-Z]{16}`),
	regexp.MustCompile(`ssh-rsa [A-Za-z0-9+/=]{40,}`),
	regexp.MustCompile(`(?s)-----BEGIN [A-Z ]+PRIVATE KEY-----.+?-----END [A-Z ]+PRIVATE KEY-----`),
}

// mask replaces a matched secret with asterisks, keeping the last four
// characters visible when the value is long enough to not fully disappear.
func mask(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

// String masks every secret-pattern match in text, iterating pattern by
// pattern left-to-right as original_source/sentrykit/utils/redact.py does.
func String(text string) string {
	redacted := text
	for _, pattern := range secretPatterns {
		for _, match := range pattern.FindAllString(redacted, -1) {
			redacted = strings.ReplaceAll(redacted, match, mask(match))
		}
	}
	return redacted
}

// Value walks a heterogeneous evidence tree (strings, []string, []any,
// map[string]any) and redacts every string leaf, leaving non-string leaves
// untouched. Lists and maps are walked recursively per spec.
func Value(v any) any {
	switch vv := v.(type) {
	case string:
		return String(vv)
	case []string:
		out := make([]string, len(vv))
		for i, s := range vv {
			out[i] = String(s)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, item := range vv {
			out[k] = Value(item)
		}
		return out
	default:
		return v
	}
}

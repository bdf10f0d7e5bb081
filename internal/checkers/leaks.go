package checkers

import (
	"math"
	"regexp"
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/redact"
)

// secretRegexes mirrors the redaction filter's pattern set (spec.md notes
// the entropy threshold is part of the contract, not an implementation
// detail, so this checker keeps its own copy rather than importing
// redact's private list — the two are required to describe the same
// patterns, verified by shared fixtures in the test suite).
var secretRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sk-[a-z0-9]{16,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`ASIA[0-9A-Z]{16}`),
	regexp.MustCompile(`ssh-rsa [A-Za-z0-9+/=]{40,}`),
	regexp.MustCompile(`(?s)-----BEGIN [A-Z ]+PRIVATE KEY-----.+?-----END [A-Z ]+PRIVATE KEY-----`),
}

var piiRegexes = []*regexp.Regexp{
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
}

const entropyThreshold = 3.5

// shannonEntropy computes the Shannon entropy, in bits, of a string's byte
// distribution.
func shannonEntropy(value string) float64 {
	if value == "" {
		return 0
	}
	counts := make(map[byte]int)
	for i := 0; i < len(value); i++ {
		counts[value[i]]++
	}
	length := float64(len(value))
	var entropy float64
	for _, c := range counts {
		freq := float64(c) / length
		entropy -= freq * math.Log2(freq)
	}
	return entropy
}

// Leaks scans output text, claim statements, and context chunks for secrets
// (regex + entropy gate) and PII (regex, single aggregated finding).
func Leaks(run guardmodel.RunInput) []guardmodel.Finding {
	var texts []string
	if run.Output != nil {
		texts = append(texts, run.Output.Text)
		for _, claim := range run.Output.Claims {
			texts = append(texts, claim.Statement)
		}
	}
	for _, chunk := range run.Contexts {
		texts = append(texts, chunk.Text)
	}
	blob := strings.Join(texts, "\n")

	var findings []guardmodel.Finding
	for _, pattern := range secretRegexes {
		for _, match := range pattern.FindAllString(blob, -1) {
			if shannonEntropy(match) < entropyThreshold {
				continue
			}
			findings = append(findings, guardmodel.Finding{
				Kind:     "data_leak",
				Severity: guardmodel.SeverityHigh,
				Details:  "Detected potential secret in output",
				Evidence: map[string]any{"value": redact.String(match)},
			})
		}
	}

	var piiHits []string
	for _, pattern := range piiRegexes {
		piiHits = append(piiHits, pattern.FindAllString(blob, -1)...)
	}
	if len(piiHits) > 0 {
		limit := len(piiHits)
		if limit > 5 {
			limit = 5
		}
		samples := make([]string, limit)
		for i := 0; i < limit; i++ {
			samples[i] = redact.String(piiHits[i])
		}
		findings = append(findings, guardmodel.Finding{
			Kind:     "data_leak",
			Severity: guardmodel.SeverityMedium,
			Details:  "Detected potential PII",
			Evidence: map[string]any{"samples": samples},
		})
	}

	return findings
}

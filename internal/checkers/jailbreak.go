package checkers

import (
	"fmt"
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

var jailbreakPhrases = []string{
	"do anything now",
	"devmode++",
	"unlock hidden mode",
	"no rules apply",
}

// Jailbreak scans the concatenation of goal, constraints, message contents,
// and output text (if present) for a fixed set of jailbreak directives.
func Jailbreak(run guardmodel.RunInput) []guardmodel.Finding {
	var parts []string
	parts = append(parts, run.Goal)
	parts = append(parts, run.Constraints...)
	for _, msg := range run.Messages {
		parts = append(parts, msg.Content)
	}
	if run.Output != nil {
		parts = append(parts, run.Output.Text)
	}
	blob := strings.ToLower(strings.Join(parts, "\n"))

	var findings []guardmodel.Finding
	for _, phrase := range jailbreakPhrases {
		if strings.Contains(blob, phrase) {
			findings = append(findings, guardmodel.Finding{
				Kind:     "jailbreak",
				Severity: guardmodel.SeverityHigh,
				Details:  fmt.Sprintf("Detected jailbreak directive: %s", phrase),
				Evidence: map[string]any{"phrase": phrase},
			})
		}
	}
	return findings
}

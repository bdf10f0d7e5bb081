package checkers

import (
	"fmt"
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/guardpolicy"
	"github.com/thinkwright/sentryguard/internal/urlnorm"
)

// defaultOverridePhrases is the fixed phrase set scanned for in context
// chunks. Callers may override it via ContextPoisoningWithPhrases.
var defaultOverridePhrases = []string{
	"ignore previous instructions",
	"disregard policy",
	"override safety",
	"you are now evil",
	"reset your instructions",
}

// ContextPoisoning runs both sub-scans from spec.md §4.3: an override-phrase
// scan over context chunks, and an off-policy tool-call domain scan.
func ContextPoisoning(run guardmodel.RunInput, policy guardpolicy.Policy) []guardmodel.Finding {
	return contextPoisoning(run, policy, defaultOverridePhrases)
}

// ContextPoisoningWithPhrases is the same check with a caller-supplied
// override-phrase set, for callers that need a non-default phrase list.
func ContextPoisoningWithPhrases(run guardmodel.RunInput, policy guardpolicy.Policy, phrases []string) []guardmodel.Finding {
	return contextPoisoning(run, policy, phrases)
}

func contextPoisoning(run guardmodel.RunInput, policy guardpolicy.Policy, phrases []string) []guardmodel.Finding {
	var findings []guardmodel.Finding

	for _, chunk := range run.Contexts {
		lowered := strings.ToLower(chunk.Text)
		for _, phrase := range phrases {
			if strings.Contains(lowered, strings.ToLower(phrase)) {
				findings = append(findings, guardmodel.Finding{
					Kind:     "context_poisoning",
					Severity: guardmodel.SeverityHigh,
					Details:  fmt.Sprintf("Context chunk %s contains override phrase", chunk.Source),
					Evidence: map[string]any{"phrase": phrase, "source": chunk.Source},
				})
				break // a chunk contributes at most one finding
			}
		}
	}

	if policy.HasAllowedDomains() {
		for _, call := range run.ToolCalls {
			rawURL, _ := call.Args["url"].(string)
			if rawURL == "" {
				continue
			}
			domain := urlnorm.Domain(rawURL)
			if domain == "" || policy.AllowsDomain(domain) {
				continue
			}
			findings = append(findings, guardmodel.Finding{
				Kind:     "context_poisoning",
				Severity: guardmodel.SeverityMedium,
				Details:  fmt.Sprintf("Tool call %s references off-policy domain %s", call.Name, domain),
				Evidence: map[string]any{"tool": call.Name, "domain": domain},
			})
		}
	}

	return findings
}

// Package checkers holds the six deterministic analytic units the engine
// drives in order: tool firewall, context poisoning, jailbreak, leaks,
// drift, and hallucination.
package checkers

import (
	"fmt"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/guardpolicy"
)

// ToolFirewall flags any tool call whose name is not on the policy's
// allow-list. An empty allow-list disables the check entirely.
func ToolFirewall(run guardmodel.RunInput, policy guardpolicy.Policy) []guardmodel.Finding {
	if !policy.HasAllowedTools() {
		return nil
	}

	var findings []guardmodel.Finding
	for _, call := range run.ToolCalls {
		if policy.AllowsTool(call.Name) {
			continue
		}
		findings = append(findings, guardmodel.Finding{
			Kind:     "tool_firewall",
			Severity: guardmodel.SeverityHigh,
			Details:  fmt.Sprintf("Tool %s not in allow-list", call.Name),
			Evidence: map[string]any{"tool": call.Name},
		})
	}
	return findings
}

package report

import (
	"fmt"
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

// FormatMarkdown produces markdown for PR comments.
func FormatMarkdown(verdict guardmodel.Verdict) string {
	var b strings.Builder

	status := "✅ Allowed"
	if verdict.Blocked {
		status = "❌ Blocked"
	}
	fmt.Fprintf(&b, "## sentryguard: %s (score %.2f)\n\n", status, verdict.Score)
	fmt.Fprintf(&b, "**Reason:** %s\n\n", verdict.Reason)

	if len(verdict.Findings) == 0 {
		b.WriteString("No findings.\n")
		return b.String()
	}

	b.WriteString("| Kind | Severity | Details |\n")
	b.WriteString("|------|----------|---------|\n")
	for _, f := range verdict.Findings {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", f.Kind, severityEmoji(f.Severity)+" "+string(f.Severity), f.Details)
	}
	b.WriteString("\n")

	return b.String()
}

func severityEmoji(s guardmodel.Severity) string {
	switch s {
	case guardmodel.SeverityHigh:
		return "🔴"
	case guardmodel.SeverityMedium:
		return "🟡"
	case guardmodel.SeverityLow:
		return "⚪"
	default:
		return "·"
	}
}

// FormatExplain produces a detailed markdown transcript of every finding's
// full evidence tree, for debugging extraction grammars and policy tuning —
// the same idiom as the teacher's FormatTranscript: a separate formatter
// invoked via an optional flag, writing full raw detail to a file.
func FormatExplain(verdict guardmodel.Verdict) string {
	var b strings.Builder
	b.WriteString("# Guardrail Evaluation Detail\n\n")
	fmt.Fprintf(&b, "**Blocked:** %v\n\n**Score:** %.2f\n\n**Reason:** %s\n\n", verdict.Blocked, verdict.Score, verdict.Reason)

	if len(verdict.Findings) == 0 {
		b.WriteString("No findings.\n")
		return b.String()
	}

	for i, f := range verdict.Findings {
		fmt.Fprintf(&b, "## Finding %d: %s (%s)\n\n", i+1, f.Kind, f.Severity)
		fmt.Fprintf(&b, "%s\n\n", f.Details)
		if len(f.Evidence) > 0 {
			b.WriteString("Evidence:\n\n```\n")
			for k, v := range f.Evidence {
				fmt.Fprintf(&b, "%s: %v\n", k, v)
			}
			b.WriteString("```\n\n")
		}
		b.WriteString("---\n\n")
	}

	return b.String()
}

// Package guardreport builds the sanitized Report attached to every
// Verdict: a structured summary and an HTML render of it, following the
// teacher's internal/report package's split between FormatJSON-style
// structured output and a rendered presentation layer.
package guardreport

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/guardpolicy"
	"github.com/thinkwright/sentryguard/internal/redact"
)

// template is the opaque HTML template supplied at build time (spec.md §6),
// containing exactly the five named placeholders.
const template = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Guardrail verdict</title></head>
<body>
<h1 class="status-{{STATUS_CLASS}}">{{STATUS_TEXT}}</h1>
<p>Score: {{SCORE}}</p>
<p>Reason: {{REASON}}</p>
{{FINDINGS_SECTION}}
</body>
</html>`

// Build sanitizes verdict through the redaction filter and renders both the
// structured summary and the HTML report. The effective policy is embedded
// in the structured summary (via Policy.ToMap) so an audit of the verdict
// doesn't need the original policy file to know what it was evaluated
// against.
func Build(verdict guardmodel.Verdict, policy guardpolicy.Policy) guardmodel.Report {
	data := summarize(verdict, policy)
	return guardmodel.Report{
		HTML: render(verdict),
		Data: data,
	}
}

func summarize(verdict guardmodel.Verdict, policy guardpolicy.Policy) map[string]any {
	findings := make([]any, 0, len(verdict.Findings))
	for _, f := range verdict.Findings {
		findings = append(findings, map[string]any{
			"kind":     f.Kind,
			"severity": string(f.Severity),
			"details":  redact.String(f.Details),
			"evidence": redact.Value(f.Evidence),
		})
	}
	return map[string]any{
		"blocked":  verdict.Blocked,
		"reason":   redact.String(verdict.Reason),
		"score":    verdict.Score,
		"findings": findings,
		"policy":   policy.ToMap(),
	}
}

func render(verdict guardmodel.Verdict) string {
	statusClass := "allowed"
	statusText := "Allowed"
	if verdict.Blocked {
		statusClass = "blocked"
		statusText = "Blocked"
	}

	out := template
	out = strings.ReplaceAll(out, "{{STATUS_CLASS}}", html.EscapeString(statusClass))
	out = strings.ReplaceAll(out, "{{STATUS_TEXT}}", html.EscapeString(statusText))
	out = strings.ReplaceAll(out, "{{SCORE}}", fmt.Sprintf("%.2f", verdict.Score))
	out = strings.ReplaceAll(out, "{{REASON}}", html.EscapeString(redact.String(verdict.Reason)))
	out = strings.ReplaceAll(out, "{{FINDINGS_SECTION}}", findingsSection(verdict.Findings))
	return out
}

func findingsSection(findings []guardmodel.Finding) string {
	if len(findings) == 0 {
		return "<p>No findings.</p>"
	}

	var b strings.Builder
	b.WriteString("<table>\n<thead><tr><th>Kind</th><th>Severity</th><th>Details</th><th>Evidence</th></tr></thead>\n<tbody>\n")
	for _, f := range findings {
		b.WriteString("<tr>")
		b.WriteString("<td>" + html.EscapeString(f.Kind) + "</td>")
		b.WriteString(fmt.Sprintf(`<td class="severity-%s">%s</td>`, html.EscapeString(string(f.Severity)), html.EscapeString(string(f.Severity))))
		b.WriteString("<td>" + html.EscapeString(redact.String(f.Details)) + "</td>")
		b.WriteString("<td>" + html.EscapeString(redact.String(evidenceString(f.Evidence))) + "</td>")
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

// evidenceString renders a finding's evidence map as a compact, stable,
// human-readable string for the HTML table cell (the structured form lives
// in Report.Data for machine consumers).
func evidenceString(evidence map[string]any) string {
	keys := make([]string, 0, len(evidence))
	for k := range evidence {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, evidence[k]))
	}
	return strings.Join(parts, ", ")
}

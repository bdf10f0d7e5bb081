package report

import (
	"encoding/json"
	"fmt"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

// FormatJSON produces machine-readable JSON for CI artifacts, the verdict's
// report.Data enriched with the top-level block decision and score.
func FormatJSON(verdict guardmodel.Verdict) string {
	out := map[string]any{
		"blocked": verdict.Blocked,
		"reason":  verdict.Reason,
		"score":   verdict.Score,
		"report":  verdict.Report.Data,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal verdict: %s"}`, err)
	}
	return string(data)
}

package checkers

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

// locationKeywords maps canonical location labels to the substrings that
// count as a mention of them (spec.md §4.6 Location extraction).
var locationKeywords = map[string][]string{
	"austin":       {"austin", "austin, tx", "austin texas", "atx", "austin metro"},
	"dallas":       {"dallas", "dallas, tx", "dfw", "dallas metro"},
	"round rock":   {"round rock"},
	"cedar park":   {"cedar park"},
	"pflugerville": {"pflugerville"},
	"leander":      {"leander"},
	"remote":       {"remote", "work from anywhere"},
}

var austinMetro = map[string]struct{}{
	"round rock":   {},
	"cedar park":   {},
	"pflugerville": {},
	"leander":      {},
}

var (
	seasonPattern = regexp.MustCompile(`(?i)(spring|summer|fall|autumn|winter)\s+(20\d{2})`)
	payPattern    = regexp.MustCompile(`(?i)\$?(\d{1,3}(?:,\d{3})*|\d{4,})\s*(?:per month|/month|monthly|a month)`)
	sizePattern   = regexp.MustCompile(`(?i)(\d{2,})\s*\+?\s*(?:employees|people|staff)`)
)

func extractLocations(text string) map[string]struct{} {
	lowered := strings.ToLower(text)
	hits := map[string]struct{}{}
	for canonical, keywords := range locationKeywords {
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				hits[canonical] = struct{}{}
				break
			}
		}
	}
	return hits
}

func extractTimeframes(text string) map[string]struct{} {
	hits := map[string]struct{}{}
	for _, m := range seasonPattern.FindAllStringSubmatch(text, -1) {
		hits[strings.ToLower(m[1]+" "+m[2])] = struct{}{}
	}
	return hits
}

func extractPay(text string) (int, bool) {
	m := payPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func extractCompanySize(text string) (int, bool) {
	m := sizePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func sortedSetKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// classifyLocation implements spec.md §4.6's tie-break: major offenders win
// over minor ones, and the asymmetric Austin-metro downgrade only applies
// when Austin itself was requested.
func classifyLocation(desired, observed map[string]struct{}, treatMetroMinor bool) (label string, offending map[string]struct{}) {
	if len(desired) == 0 || len(observed) == 0 {
		return "", nil
	}

	major := map[string]struct{}{}
	minor := map[string]struct{}{}
	_, austinDesired := desired["austin"]

	for loc := range observed {
		if _, ok := desired[loc]; ok {
			continue
		}
		if treatMetroMinor && austinDesired {
			if _, ok := austinMetro[loc]; ok {
				minor[loc] = struct{}{}
				continue
			}
		}
		major[loc] = struct{}{}
	}

	if len(major) > 0 {
		return "major", major
	}
	if len(minor) > 0 {
		return "minor", minor
	}
	return "", nil
}

// DriftParams carries the optional policy-derived overrides the drift
// checker needs (spec.md §4.6 pay/company-size thresholds, metro
// downgrading).
type DriftParams struct {
	MinPay            *int
	MinCompanySize    *int
	TreatMetroAsMinor bool
}

// Drift compares the baseline text (goal + constraints) against the output
// text for location, timeframe, pay, and company-size divergence. It may
// emit 0-4 findings.
func Drift(run guardmodel.RunInput, params DriftParams) []guardmodel.Finding {
	// Preserves the original implementation's single-space join of goal and
	// constraints, including its accidental cross-boundary number matching
	// (spec.md §9 Open Question) — not guessed away.
	baselineText := strings.Join(append([]string{run.Goal}, run.Constraints...), " ")

	var outputText string
	if run.Output != nil {
		outputText = run.Output.Text
	}

	var findings []guardmodel.Finding

	desiredLocations := extractLocations(baselineText)
	observedLocations := extractLocations(outputText)
	if label, offending := classifyLocation(desiredLocations, observedLocations, params.TreatMetroAsMinor); label != "" {
		severity := guardmodel.SeverityHigh
		if label == "minor" {
			severity = guardmodel.SeverityMedium
		}
		findings = append(findings, guardmodel.Finding{
			Kind:     "goal_drift",
			Severity: severity,
			Details:  "Response references disallowed location(s)",
			Evidence: map[string]any{
				"expected":       sortedSetKeys(desiredLocations),
				"observed":       sortedSetKeys(observedLocations),
				"classification": label,
				"offending":      sortedSetKeys(offending),
			},
		})
	}

	desiredTimeframes := extractTimeframes(baselineText)
	observedTimeframes := extractTimeframes(outputText)
	if len(desiredTimeframes) > 0 && len(observedTimeframes) > 0 && disjoint(desiredTimeframes, observedTimeframes) {
		findings = append(findings, guardmodel.Finding{
			Kind:     "goal_drift",
			Severity: guardmodel.SeverityHigh,
			Details:  "Response timeframe deviates from requested goal",
			Evidence: map[string]any{
				"expected":       sortedSetKeys(desiredTimeframes),
				"observed":       sortedSetKeys(observedTimeframes),
				"classification": "major",
			},
		})
	}

	baselinePay, baselineHasPay := extractPay(baselineText)
	effectiveMinPay := 0
	haveMinPay := false
	if params.MinPay != nil {
		effectiveMinPay, haveMinPay = *params.MinPay, true
	} else if baselineHasPay {
		effectiveMinPay, haveMinPay = baselinePay, true
	}
	if observedPay, ok := extractPay(outputText); ok && haveMinPay && observedPay < effectiveMinPay {
		findings = append(findings, guardmodel.Finding{
			Kind:     "goal_drift",
			Severity: guardmodel.SeverityHigh,
			Details:  fmt.Sprintf("Pay $%d below threshold $%d", observedPay, effectiveMinPay),
			Evidence: map[string]any{
				"expected_min":   effectiveMinPay,
				"observed":       observedPay,
				"classification": "major",
			},
		})
	}

	baselineSize, baselineHasSize := extractCompanySize(baselineText)
	effectiveMinSize := 0
	haveMinSize := false
	if params.MinCompanySize != nil {
		effectiveMinSize, haveMinSize = *params.MinCompanySize, true
	} else if baselineHasSize {
		effectiveMinSize, haveMinSize = baselineSize, true
	}
	if observedSize, ok := extractCompanySize(outputText); ok && haveMinSize && observedSize < effectiveMinSize {
		findings = append(findings, guardmodel.Finding{
			Kind:     "goal_drift",
			Severity: guardmodel.SeverityHigh,
			Details:  "Company size below requested minimum",
			Evidence: map[string]any{
				"expected_min":   effectiveMinSize,
				"observed":       observedSize,
				"classification": "major",
			},
		})
	}

	return findings
}

func disjoint(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return false
		}
	}
	return true
}

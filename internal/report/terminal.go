package report

import (
	"fmt"
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

// Muted 256-color palette
const (
	bold  = "\033[1m"
	reset = "\033[0m"

	rose  = "\033[38;5;174m" // soft red/pink
	amber = "\033[38;5;179m" // warm yellow
	sage  = "\033[38;5;108m" // muted green
	slate = "\033[38;5;110m" // muted blue
	stone = "\033[38;5;245m" // medium gray
	chalk = "\033[38;5;188m" // off-white
)

const ruler = "────────────────────────────────────────────────────────"

func sectionHeader(title string) string {
	return fmt.Sprintf("\n  %s%s%s\n  %s%s%s\n", bold+chalk, strings.ToUpper(title), reset, stone, ruler, reset)
}

// FormatTerminal produces human-readable terminal output for one verdict.
func FormatTerminal(verdict guardmodel.Verdict) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s%ssentryguard verdict%s\n", bold, chalk, reset))
	b.WriteString(fmt.Sprintf("  %s%s%s\n", stone, ruler, reset))

	statusColor, statusLabel := sage, "ALLOWED ✔"
	if verdict.Blocked {
		statusColor, statusLabel = rose, "BLOCKED ✘"
	}
	fmt.Fprintf(&b, "  %s%s%s   %sscore %.2f%s\n", statusColor, statusLabel, reset, stone, verdict.Score, reset)
	fmt.Fprintf(&b, "  %sreason%s   %s\n", stone, reset, verdict.Reason)

	if len(verdict.Findings) == 0 {
		b.WriteString("\n  " + sage + "No findings." + reset + "\n\n")
		return b.String()
	}

	b.WriteString(sectionHeader(fmt.Sprintf("Findings (%d)", len(verdict.Findings))))
	for i, f := range verdict.Findings {
		color := severityColor(f.Severity)
		fmt.Fprintf(&b, "  %s●%s  %s%s%s  %s[%s]%s\n", color, reset, chalk, f.Kind, reset, color, f.Severity, reset)
		for _, line := range wordWrap(f.Details, 64) {
			fmt.Fprintf(&b, "      %s\n", line)
		}
		if i < len(verdict.Findings)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s%s%s\n", stone, ruler, reset))
	fmt.Fprintf(&b, "  %s%sOverall%s   %s%3.0f%%%s   %s%s%s\n\n",
		bold, chalk, reset, chalk, minPct(verdict.Score), reset, statusColor, statusLabel, reset)

	return b.String()
}

func severityColor(s guardmodel.Severity) string {
	switch s {
	case guardmodel.SeverityHigh:
		return rose
	case guardmodel.SeverityMedium:
		return amber
	case guardmodel.SeverityLow:
		return slate
	default:
		return stone
	}
}

// minPct clamps a risk score to a 0-100 display percentage (scores can
// exceed 1.0 when multiple findings stack).
func minPct(score float64) float64 {
	pct := score * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// wordWrap breaks text into lines of at most maxWidth characters, splitting
// at word boundaries.
func wordWrap(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > maxWidth {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return lines
}

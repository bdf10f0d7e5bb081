package checkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/thinkwright/sentryguard/internal/extract"
	"github.com/thinkwright/sentryguard/internal/fetch"
	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/obslog"
	"github.com/thinkwright/sentryguard/internal/redact"
)

// verifyExtraction applies a claim's extraction strategy to a fetched
// document, per spec.md §4.7/§4.8.
func verifyExtraction(claim guardmodel.Claim, document string) (bool, error) {
	ext := claim.Extraction
	switch ext.Kind {
	case guardmodel.ExtractionCSS:
		text, err := extract.CSS(document, ext.Pattern, ext.MustInclude)
		if err != nil {
			return false, err
		}
		target := ext.MustInclude
		if target == "" {
			target = ext.Pattern
		}
		return strings.Contains(strings.ToLower(text), strings.ToLower(target)), nil
	case guardmodel.ExtractionXPath:
		text, err := extract.XPath(document, ext.Pattern, ext.MustInclude)
		if err != nil {
			return false, err
		}
		target := ext.MustInclude
		if target == "" {
			target = ext.Pattern
		}
		return strings.Contains(strings.ToLower(text), strings.ToLower(target)), nil
	case guardmodel.ExtractionRegex:
		text, err := extract.Regex(document, ext.Pattern)
		if err != nil {
			return false, err
		}
		if ext.MustInclude == "" {
			return false, fmt.Errorf("regex extraction missing required snippet")
		}
		return strings.Contains(strings.ToLower(text), strings.ToLower(ext.MustInclude)), nil
	case guardmodel.ExtractionContains:
		return extract.Contains(document, ext.Pattern, ext.MustInclude), nil
	default:
		return false, fmt.Errorf("unsupported extraction kind: %s", ext.Kind)
	}
}

// verifyClaim tries each evidence URL in order until one verifies the
// claim, returning the per-URL error trail if none does.
func verifyClaim(ctx context.Context, claim guardmodel.Claim, fetcher fetch.Fetcher) (bool, []string) {
	if len(claim.EvidenceURLs) == 0 {
		return false, []string{"no_evidence_urls"}
	}

	var errs []string
	for _, url := range claim.EvidenceURLs {
		document, err := fetcher(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Sprintf("fetch_error:%s", err))
			obslog.Debug("claim_fetch_error", "url", url, "error", err.Error())
			continue
		}

		ok, err := verifyExtraction(claim, document)
		if err != nil {
			errs = append(errs, fmt.Sprintf("parse_error:%s", err))
			obslog.Debug("claim_extraction_error", "url", url, "error", err.Error(), "pattern", claim.Extraction.Pattern)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errs
}

// Hallucination verifies every claim in the output via its declared
// extraction strategy, emitting one aggregated finding per unverifiable
// claim (spec.md §4.7).
func Hallucination(ctx context.Context, run guardmodel.RunInput, fetcher fetch.Fetcher) []guardmodel.Finding {
	if run.Output == nil || len(run.Output.Claims) == 0 {
		return nil
	}
	if fetcher == nil {
		fetcher = fetch.Default
	}

	var findings []guardmodel.Finding
	for _, claim := range run.Output.Claims {
		valid, errs := verifyClaim(ctx, claim, fetcher)
		if valid {
			continue
		}

		limit := len(errs)
		if limit > 3 {
			limit = 3
		}
		redactedErrs := make([]string, limit)
		for i := 0; i < limit; i++ {
			redactedErrs[i] = redact.String(errs[i])
		}

		findings = append(findings, guardmodel.Finding{
			Kind:     "hallucination",
			Severity: guardmodel.SeverityHigh,
			Details:  fmt.Sprintf("Claim lacks verifiable evidence: %s", redact.String(claim.Statement)),
			Evidence: map[string]any{
				"statement": redact.String(claim.Statement),
				"urls":      claim.EvidenceURLs,
				"errors":    redactedErrs,
			},
		})
	}
	return findings
}

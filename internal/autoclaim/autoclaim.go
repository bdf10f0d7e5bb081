// Package autoclaim generates naive claims from free-form output text, for
// callers that want the hallucination checker to exercise something even
// when a scenario fixture declares no claims of its own. Ported from
// original_source/sentrykit/claim_extractors/autoclaims.py's generate_claims.
package autoclaim

import (
	"strings"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

const maxClaims = 3

// GenerateClaims splits output text on "." into sentences and builds a
// "contains"-kind claim for each of the first three non-empty sentences,
// using the same evidence URL for all of them.
func GenerateClaims(output guardmodel.RunOutput, evidenceURL string) []guardmodel.Claim {
	var claims []guardmodel.Claim
	for _, sentence := range strings.Split(output.Text, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if len(claims) >= maxClaims {
			break
		}

		var urls []string
		if evidenceURL != "" {
			urls = []string{evidenceURL}
		}

		claims = append(claims, guardmodel.Claim{
			Statement:    sentence,
			EvidenceURLs: urls,
			Extraction: guardmodel.Extraction{
				Kind:        guardmodel.ExtractionContains,
				Pattern:     truncate(sentence, 40),
				MustInclude: truncate(sentence, 20),
			},
		})
	}
	return claims
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

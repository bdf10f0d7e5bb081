package checkers

import (
	"testing"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

func austinCompliantRun() guardmodel.RunInput {
	return guardmodel.RunInput{
		Goal: "Find an Austin internship paying at least $5,000 per month",
		Output: &guardmodel.RunOutput{
			Text: "Austin role paying $5,200 per month at Tech Labs.",
		},
	}
}

func TestDriftAustinCompliantNoFindings(t *testing.T) {
	findings := Drift(austinCompliantRun(), DriftParams{TreatMetroAsMinor: true})
	if len(findings) != 0 {
		t.Errorf("expected no drift findings, got %d: %+v", len(findings), findings)
	}
}

func TestDriftDallasMajorLocation(t *testing.T) {
	run := guardmodel.RunInput{
		Goal: "Find an Austin internship paying at least $5,000 per month",
		Output: &guardmodel.RunOutput{
			Text: "Dallas internship paying $4,000 per month.",
		},
	}

	findings := Drift(run, DriftParams{TreatMetroAsMinor: true})

	var locationFinding, payFinding *guardmodel.Finding
	for i := range findings {
		f := &findings[i]
		if class, _ := f.Classification(); class == "major" {
			if _, ok := f.Evidence["offending"]; ok {
				locationFinding = f
			} else if _, ok := f.Evidence["expected_min"]; ok {
				payFinding = f
			}
		}
	}

	if locationFinding == nil {
		t.Fatal("expected a major location drift finding")
	}
	if locationFinding.Severity != guardmodel.SeverityHigh {
		t.Errorf("expected high severity for major location drift, got %s", locationFinding.Severity)
	}

	if payFinding == nil {
		t.Fatal("expected a pay-below-threshold finding")
	}
	if payFinding.Evidence["expected_min"] != 5000 || payFinding.Evidence["observed"] != 4000 {
		t.Errorf("unexpected pay evidence: %+v", payFinding.Evidence)
	}
}

func TestDriftMetroDowngradedToMinor(t *testing.T) {
	run := guardmodel.RunInput{
		Goal:   "Find an Austin internship",
		Output: &guardmodel.RunOutput{Text: "Round Rock office available."},
	}

	findings := Drift(run, DriftParams{TreatMetroAsMinor: true})
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != guardmodel.SeverityMedium {
		t.Errorf("expected medium severity for metro downgrade, got %s", findings[0].Severity)
	}
	class, _ := findings[0].Classification()
	if class != "minor" {
		t.Errorf("expected classification=minor, got %q", class)
	}
}

func TestDriftMetroNotDowngradedWhenAustinNotRequested(t *testing.T) {
	run := guardmodel.RunInput{
		Goal:   "Find a Dallas internship",
		Output: &guardmodel.RunOutput{Text: "Round Rock office available."},
	}

	findings := Drift(run, DriftParams{TreatMetroAsMinor: true})
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != guardmodel.SeverityHigh {
		t.Errorf("expected high severity (no Austin-metro downgrade applies), got %s", findings[0].Severity)
	}
}

func TestDriftTimeframeDisjoint(t *testing.T) {
	run := guardmodel.RunInput{
		Goal:   "Internship for summer 2026",
		Output: &guardmodel.RunOutput{Text: "This role starts winter 2027."},
	}

	findings := Drift(run, DriftParams{})
	var found bool
	for _, f := range findings {
		if class, _ := f.Classification(); class == "major" {
			if _, ok := f.Evidence["expected"]; ok {
				if exp, ok := f.Evidence["expected"].([]string); ok && len(exp) > 0 && exp[0] == "summer 2026" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Errorf("expected a timeframe drift finding, got %+v", findings)
	}
}

func TestDriftCompanySizeBelowMinimum(t *testing.T) {
	size := 500
	run := guardmodel.RunInput{
		Goal:   "Find an internship",
		Output: &guardmodel.RunOutput{Text: "This startup has 50 employees."},
	}

	findings := Drift(run, DriftParams{MinCompanySize: &size})
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Evidence["expected_min"] != 500 || findings[0].Evidence["observed"] != 50 {
		t.Errorf("unexpected evidence: %+v", findings[0].Evidence)
	}
}

func TestDriftExplicitMinPayOverridesBaseline(t *testing.T) {
	minPay := 6000
	run := guardmodel.RunInput{
		Goal:   "Find a role paying at least $5,000 per month",
		Output: &guardmodel.RunOutput{Text: "This role pays $5,500 per month."},
	}

	findings := Drift(run, DriftParams{MinPay: &minPay})
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding (explicit min_pay should override baseline), got %d", len(findings))
	}
	if findings[0].Evidence["expected_min"] != 6000 {
		t.Errorf("expected explicit min_pay to win, got %+v", findings[0].Evidence)
	}
}

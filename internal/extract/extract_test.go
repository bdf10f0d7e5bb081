package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/thinkwright/sentryguard/internal/guarderrors"
)

const sampleDoc = `
<html>
  <body>
    <div class="card main" id="job-1">
      <h2>Senior Engineer</h2>
      <p class="pay">Pay: $5,500 per month</p>
    </div>
    <div class="card">
      <p>Unrelated listing</p>
    </div>
  </body>
</html>`

func TestCSSTagOnly(t *testing.T) {
	text, err := CSS(sampleDoc, "h2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Senior Engineer" {
		t.Errorf("text = %q, want %q", text, "Senior Engineer")
	}
}

func TestCSSTagClassID(t *testing.T) {
	text, err := CSS(sampleDoc, "div.card#job-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Fatal("expected non-empty extracted text")
	}
	if !strings.Contains(text, "Senior Engineer") || !strings.Contains(text, "$5,500") {
		t.Errorf("text = %q, want to contain both header and pay line", text)
	}
}

func TestCSSMustIncludeSatisfied(t *testing.T) {
	_, err := CSS(sampleDoc, ".pay", "$5,500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCSSMustIncludeMissingIsParseError(t *testing.T) {
	_, err := CSS(sampleDoc, ".pay", "$9,999")
	if !errors.Is(err, guarderrors.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestCSSNoElementsMatched(t *testing.T) {
	_, err := CSS(sampleDoc, "span.nope", "")
	if !errors.Is(err, guarderrors.ErrParse) {
		t.Errorf("expected ErrParse for no matching elements, got %v", err)
	}
}

func TestXPathTagOnly(t *testing.T) {
	text, err := XPath(sampleDoc, "//h2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Senior Engineer" {
		t.Errorf("text = %q, want %q", text, "Senior Engineer")
	}
}

func TestXPathAttrPredicate(t *testing.T) {
	text, err := XPath(sampleDoc, `//div[@id='job-1']`, "Senior Engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Fatal("expected non-empty text")
	}
}

func TestXPathInvalidGrammarIsParseError(t *testing.T) {
	_, err := XPath(sampleDoc, "//div[text()='nope']", "")
	if !errors.Is(err, guarderrors.ErrParse) {
		t.Errorf("expected ErrParse for unsupported grammar, got %v", err)
	}
}

func TestRegexCollapsesWhitespace(t *testing.T) {
	doc := "Pay:   $5,500    per\nmonth"
	got, err := Regex(doc, `\$[\d,]+\s+per\s+month`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "$5,500 per month" {
		t.Errorf("got %q, want collapsed whitespace form", got)
	}
}

func TestRegexNoMatchIsParseError(t *testing.T) {
	_, err := Regex("no numbers here", `\d+`)
	if !errors.Is(err, guarderrors.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestContainsUsesMustIncludeOverPattern(t *testing.T) {
	if !Contains(sampleDoc, "irrelevant pattern", "$5,500") {
		t.Error("expected must_include to take precedence and match")
	}
}

func TestContainsFallsBackToPattern(t *testing.T) {
	if !Contains(sampleDoc, "Senior Engineer", "") {
		t.Error("expected pattern match when must_include unset")
	}
}

func TestContainsCaseInsensitive(t *testing.T) {
	if !Contains(sampleDoc, "", "SENIOR engineer") {
		t.Error("expected case-insensitive match")
	}
}

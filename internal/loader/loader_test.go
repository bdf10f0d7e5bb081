package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadRunInputYAML(t *testing.T) {
	path := writeScenario(t, "scenario.yaml", `
goal: Find an Austin software engineering internship
constraints:
  - must pay at least $5000 per month
messages:
  - role: user
    content: Find me an internship
contexts:
  - source: job_board
    text: Austin based internship opportunities
tool_calls:
  - name: job_scraper
    args:
      url: https://jobs.example.com/austin/123
output:
  text: "Austin role paying $5,200 per month at Tech Labs."
  claims:
    - statement: "Tech Labs is hiring in Austin"
      evidence_urls: ["https://jobs.example.com/austin/123"]
      extraction:
        kind: contains
        pattern: "Tech Labs"
`)

	run, err := LoadRunInput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Goal != "Find an Austin software engineering internship" {
		t.Errorf("Goal = %q", run.Goal)
	}
	if len(run.Constraints) != 1 {
		t.Errorf("expected 1 constraint, got %d", len(run.Constraints))
	}
	if len(run.Messages) != 1 || run.Messages[0].Role != "user" {
		t.Errorf("unexpected messages: %+v", run.Messages)
	}
	if len(run.Contexts) != 1 || run.Contexts[0].Source != "job_board" {
		t.Errorf("unexpected contexts: %+v", run.Contexts)
	}
	if len(run.ToolCalls) != 1 || run.ToolCalls[0].Args["url"] != "https://jobs.example.com/austin/123" {
		t.Errorf("unexpected tool calls: %+v", run.ToolCalls)
	}
	if run.Output == nil || run.Output.Text == "" {
		t.Fatal("expected output to be populated")
	}
	if len(run.Output.Claims) != 1 || run.Output.Claims[0].Extraction.Kind != "contains" {
		t.Errorf("unexpected claims: %+v", run.Output.Claims)
	}
}

func TestLoadRunInputJSON(t *testing.T) {
	path := writeScenario(t, "scenario.json", `{
		"goal": "Find a Dallas internship",
		"output": {"text": "Dallas internship paying $4,000 per month."}
	}`)

	run, err := LoadRunInput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Goal != "Find a Dallas internship" {
		t.Errorf("Goal = %q", run.Goal)
	}
	if run.Output == nil || run.Output.Text != "Dallas internship paying $4,000 per month." {
		t.Errorf("unexpected output: %+v", run.Output)
	}
}

func TestLoadRunInputNoOutput(t *testing.T) {
	path := writeScenario(t, "scenario.yaml", `goal: Just a goal, no output yet`)

	run, err := LoadRunInput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Output != nil {
		t.Errorf("expected nil output, got %+v", run.Output)
	}
}

func TestLoadRunInputUnsupportedFormat(t *testing.T) {
	path := writeScenario(t, "scenario.txt", "goal: nope")
	if _, err := LoadRunInput(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadRunInputMissingFile(t *testing.T) {
	if _, err := LoadRunInput(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

package checkers

import (
	"testing"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/guardpolicy"
)

func TestToolFirewallEmptyAllowListDisabled(t *testing.T) {
	run := guardmodel.RunInput{ToolCalls: []guardmodel.ToolCall{{Name: "anything"}}}
	findings := ToolFirewall(run, guardpolicy.New())
	if len(findings) != 0 {
		t.Errorf("expected no findings with empty allow-list, got %d", len(findings))
	}
}

func TestToolFirewallFlagsDisallowedTool(t *testing.T) {
	policy := guardpolicy.New()
	policy.AllowedToolNames = map[string]struct{}{"job_scraper": {}}
	run := guardmodel.RunInput{ToolCalls: []guardmodel.ToolCall{
		{Name: "job_scraper"},
		{Name: "shell_exec"},
	}}

	findings := ToolFirewall(run, policy)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Kind != "tool_firewall" || f.Severity != guardmodel.SeverityHigh {
		t.Errorf("unexpected finding: %+v", f)
	}
	if f.Evidence["tool"] != "shell_exec" {
		t.Errorf("evidence tool = %v, want shell_exec", f.Evidence["tool"])
	}
}

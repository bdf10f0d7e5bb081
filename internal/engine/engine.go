// Package engine orchestrates the six guardrail checkers against one
// RunInput and produces a Verdict: ordered findings, a risk score, a block
// decision, and an attached report.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/thinkwright/sentryguard/internal/checkers"
	"github.com/thinkwright/sentryguard/internal/fetch"
	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/guardpolicy"
	"github.com/thinkwright/sentryguard/internal/guardreport"
)

// checkerFunc is one named, isolatable unit of the pipeline. Rather than
// dispatching by reflection, the engine holds an ordered slice of these —
// the same "named function value" dispatch the teacher's probe runner uses
// for RunLiveProbes, just sequential instead of fanned out over goroutines.
type checkerFunc struct {
	name string
	run  func(ctx context.Context, run guardmodel.RunInput, policy guardpolicy.Policy, fetcher fetch.Fetcher) (findings []guardmodel.Finding)
}

// pipeline is the fixed checker order from spec.md §4.1. Order matters: it
// determines both the findings list order and, downstream, the sorted
// reason string.
var pipeline = []checkerFunc{
	{"tool_firewall", func(_ context.Context, run guardmodel.RunInput, policy guardpolicy.Policy, _ fetch.Fetcher) []guardmodel.Finding {
		return checkers.ToolFirewall(run, policy)
	}},
	{"context_poisoning", func(_ context.Context, run guardmodel.RunInput, policy guardpolicy.Policy, _ fetch.Fetcher) []guardmodel.Finding {
		return checkers.ContextPoisoning(run, policy)
	}},
	{"jailbreak", func(_ context.Context, run guardmodel.RunInput, _ guardpolicy.Policy, _ fetch.Fetcher) []guardmodel.Finding {
		return checkers.Jailbreak(run)
	}},
	{"leaks", func(_ context.Context, run guardmodel.RunInput, _ guardpolicy.Policy, _ fetch.Fetcher) []guardmodel.Finding {
		return checkers.Leaks(run)
	}},
	{"drift", func(_ context.Context, run guardmodel.RunInput, policy guardpolicy.Policy, _ fetch.Fetcher) []guardmodel.Finding {
		return checkers.Drift(run, driftParams(policy))
	}},
	{"hallucination", func(ctx context.Context, run guardmodel.RunInput, _ guardpolicy.Policy, fetcher fetch.Fetcher) []guardmodel.Finding {
		return checkers.Hallucination(ctx, run, fetcher)
	}},
}

func driftParams(policy guardpolicy.Policy) checkers.DriftParams {
	return checkers.DriftParams{
		MinPay:            policy.MinPayThreshold,
		MinCompanySize:    policy.MinCompanySize,
		TreatMetroAsMinor: policy.TreatMetroAsMinor,
	}
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithFetcher overrides the hallucination checker's default web fetcher,
// e.g. with a pure test double or a context-cancellation-aware client.
func WithFetcher(f fetch.Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// Engine holds the immutable Policy shared across evaluations. It is safe
// for concurrent use: Evaluate mutates no shared state.
type Engine struct {
	policy  guardpolicy.Policy
	fetcher fetch.Fetcher
}

// New constructs an Engine bound to a clone of policy, defaulting to
// fetch.Default. Cloning means the caller's Policy value (its maps and
// *int fields are reference types) can keep being reused or mutated for
// the next scanrunner batch item without racing an evaluation already in
// flight against it.
func New(policy guardpolicy.Policy, opts ...Option) *Engine {
	e := &Engine{policy: policy.Clone(), fetcher: fetch.Default}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every checker in order, isolating failures, and returns the
// resulting Verdict. Evaluate never panics and never returns an error: a
// failing checker becomes a single internal_error finding instead.
func (e *Engine) Evaluate(run guardmodel.RunInput) guardmodel.Verdict {
	return e.EvaluateContext(context.Background(), run)
}

// EvaluateContext is Evaluate with an explicit context, threaded through to
// the hallucination checker's fetcher for cancellation.
func (e *Engine) EvaluateContext(ctx context.Context, run guardmodel.RunInput) guardmodel.Verdict {
	var findings []guardmodel.Finding

	for _, c := range pipeline {
		findings = append(findings, runIsolated(ctx, c, run, e.policy, e.fetcher)...)
	}

	score := score(findings)
	reason := reason(findings)
	blocked := blockDecision(findings, e.policy)

	verdict := guardmodel.Verdict{
		Blocked:  blocked,
		Reason:   reason,
		Score:    score,
		Findings: findings,
	}
	verdict.Report = guardreport.Build(verdict, e.policy)
	return verdict
}

// runIsolated invokes one checker, converting any panic into a single
// internal_error finding (spec.md §4.1). Go checkers don't raise checked
// errors, so a panic recover is this engine's equivalent of the source's
// try/except around each checker invocation.
func runIsolated(ctx context.Context, c checkerFunc, run guardmodel.RunInput, policy guardpolicy.Policy, fetcher fetch.Fetcher) (findings []guardmodel.Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = []guardmodel.Finding{{
				Kind:     "internal_error",
				Severity: guardmodel.SeverityLow,
				Details:  fmt.Sprintf("Checker %s failed: %v", c.name, r),
				Evidence: map[string]any{"checker": c.name},
			}}
		}
	}()
	return c.run(ctx, run, policy, fetcher)
}

func score(findings []guardmodel.Finding) float64 {
	var total float64
	for _, f := range findings {
		total += guardmodel.SeverityWeight(f.Severity)
	}
	return total
}

func reason(findings []guardmodel.Finding) string {
	if len(findings) == 0 {
		return "No findings"
	}
	kinds := map[string]struct{}{}
	for _, f := range findings {
		kinds[f.Kind] = struct{}{}
	}
	unique := make([]string, 0, len(kinds))
	for k := range kinds {
		unique = append(unique, k)
	}
	sort.Strings(unique)
	return strings.Join(unique, "; ")
}

// blockDecision implements the block-key algebra of spec.md §4.1: a finding
// blocks if any of its candidate match-keys intersects policy.block_on.
func blockDecision(findings []guardmodel.Finding, policy guardpolicy.Policy) bool {
	if len(policy.BlockOn) == 0 {
		return false
	}
	for _, f := range findings {
		for _, key := range candidateKeys(f) {
			if _, ok := policy.BlockOn[key]; ok {
				return true
			}
		}
	}
	return false
}

func candidateKeys(f guardmodel.Finding) []string {
	keys := []string{
		f.Kind,
		f.Kind + ":any",
		f.Kind + ":" + string(f.Severity),
	}
	if classification, ok := f.Classification(); ok {
		keys = append(keys, f.Kind+":"+classification)
	}
	if f.Severity == guardmodel.SeverityHigh {
		keys = append(keys, f.Kind+":high")
	}
	return keys
}

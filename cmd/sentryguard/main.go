package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thinkwright/sentryguard/internal/autoclaim"
	"github.com/thinkwright/sentryguard/internal/config"
	"github.com/thinkwright/sentryguard/internal/engine"
	"github.com/thinkwright/sentryguard/internal/guardmodel"
	"github.com/thinkwright/sentryguard/internal/guardpolicy"
	"github.com/thinkwright/sentryguard/internal/loader"
	"github.com/thinkwright/sentryguard/internal/report"
	"github.com/thinkwright/sentryguard/internal/scanrunner"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "sentryguard",
		Short:   "Guardrail evaluator for autonomous-agent runs",
		Version: version,
	}

	var (
		flagCI          bool
		flagFormat      string
		flagPolicy      string
		flagOutput      string
		flagNoPager     bool
		flagExplain     string
		flagConcurrency int
	)

	scanCmd := &cobra.Command{
		Use:   "scan <run.yaml|run.json> [more scenarios...]",
		Short: "Evaluate one or more run scenarios against a policy and print their verdicts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCIDefaults(cmd, &flagFormat, &flagNoPager, flagCI)

			if len(args) > 1 && flagOutput != "" {
				return fmt.Errorf("--output is only supported for a single scenario")
			}

			load := func(_ context.Context, scenarioPath string) (guardmodel.Verdict, error) {
				policy, err := config.Load(flagPolicy, scenarioPath)
				if err != nil {
					return guardmodel.Verdict{}, fmt.Errorf("load policy: %w", err)
				}
				run, err := loader.LoadRunInput(scenarioPath)
				if err != nil {
					return guardmodel.Verdict{}, fmt.Errorf("load scenario: %w", err)
				}
				if run.Output != nil && len(run.Output.Claims) == 0 {
					run.Output.Claims = autoclaim.GenerateClaims(*run.Output, firstToolCallURL(run))
				}
				runID := uuid.NewString()
				fmt.Fprintf(os.Stderr, "Evaluating %s (run %s)\n", scenarioPath, runID)
				return engine.New(policy).Evaluate(run), nil
			}

			results := scanrunner.Run(cmd.Context(), args, load, scanrunner.RunConfig{Concurrency: flagConcurrency},
				func(done, total int, path string) {
					fmt.Fprintf(os.Stderr, "[%d/%d] evaluated %s\n", done, total, path)
				})

			var anyBlocked bool
			var loadErr error
			for i, res := range results {
				if res.Err != nil {
					loadErr = fmt.Errorf("%s: %w", res.Path, res.Err)
					continue
				}
				if res.Verdict.Blocked {
					anyBlocked = true
				}

				output := formatVerdict(res.Verdict, flagFormat)
				if err := writeOutput(output, flagOutput, flagFormat, flagNoPager); err != nil {
					return err
				}

				if flagExplain != "" {
					explainPath := flagExplain
					if len(results) > 1 {
						explainPath = fmt.Sprintf("%s.%d", flagExplain, i)
					}
					if err := os.WriteFile(explainPath, []byte(report.FormatExplain(res.Verdict)), 0o644); err != nil {
						return fmt.Errorf("write explain detail: %w", err)
					}
					fmt.Fprintf(os.Stderr, "Explain detail for %s written to %s\n", res.Path, explainPath)
				}
			}

			if loadErr != nil {
				return loadErr
			}
			if flagCI && anyBlocked {
				return fmt.Errorf("scan failed: one or more scenarios were blocked")
			}
			return nil
		},
	}
	scanCmd.Flags().BoolVar(&flagCI, "ci", false, "CI mode: JSON output, no pager, exit 1 on block")
	scanCmd.Flags().StringVar(&flagFormat, "format", "terminal", "Output format: terminal, json, markdown")
	scanCmd.Flags().StringVar(&flagPolicy, "policy", "", "Path to sentryguard.yaml policy file")
	scanCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write report to file (single scenario only)")
	scanCmd.Flags().BoolVar(&flagNoPager, "no-pager", false, "Disable automatic paging")
	scanCmd.Flags().StringVar(&flagExplain, "explain", "", "Write a full per-finding evidence dump (markdown) to this path")
	scanCmd.Flags().IntVar(&flagConcurrency, "concurrency", 1, "Number of scenarios to evaluate concurrently")

	verifyClaimCmd := &cobra.Command{
		Use:   "verify-claim <claim.yaml|claim.json>",
		Short: "Exercise the hallucination checker against one claim, for debugging extraction grammars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := loadClaimFixture(args[0])
			if err != nil {
				return fmt.Errorf("load claim fixture: %w", err)
			}

			run := guardmodel.RunInput{Output: &guardmodel.RunOutput{Claims: []guardmodel.Claim{claim}}}
			verdict := engine.New(guardpolicy.New()).Evaluate(run)

			fmt.Print(formatVerdict(verdict, "terminal"))
			return nil
		},
	}

	root.AddCommand(scanCmd, verifyClaimCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// firstToolCallURL returns the first "url" argument found among a run's tool
// calls, or "" if none declared one. Used as the evidence URL for claims
// autoclaim.GenerateClaims synthesizes from free-text output.
func firstToolCallURL(run guardmodel.RunInput) string {
	for _, call := range run.ToolCalls {
		if u, ok := call.Args["url"].(string); ok && u != "" {
			return u
		}
	}
	return ""
}

func formatVerdict(verdict guardmodel.Verdict, format string) string {
	switch format {
	case "json":
		return report.FormatJSON(verdict)
	case "markdown":
		return report.FormatMarkdown(verdict)
	default:
		return report.FormatTerminal(verdict)
	}
}

func writeOutput(output, path, format string, noPager bool) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
		return nil
	}

	if format == "terminal" && !noPager && isTerminal() {
		return outputWithPager(output)
	}

	fmt.Print(output)
	return nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func outputWithPager(output string) error {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	var args []string
	if pager == "less" {
		args = []string{"-R", "-X"}
	}

	cmd := exec.Command(pager, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		fmt.Print(output)
		return nil
	}

	if err := cmd.Start(); err != nil {
		fmt.Print(output)
		return nil
	}

	io.WriteString(stdin, output)
	stdin.Close()

	cmd.Wait()
	return nil
}

// applyCIDefaults sets machine-friendly defaults when --ci is used: JSON
// format and no pager, unless the user explicitly overrode them.
func applyCIDefaults(cmd *cobra.Command, format *string, noPager *bool, ci bool) {
	if !ci {
		return
	}
	if !cmd.Flags().Changed("format") {
		*format = "json"
	}
	*noPager = true
}

// loadClaimFixture is a thin wrapper reusing the scenario loader's claim
// shape for a single-claim debugging fixture.
func loadClaimFixture(path string) (guardmodel.Claim, error) {
	run, err := loader.LoadRunInput(path)
	if err != nil {
		return guardmodel.Claim{}, err
	}
	if run.Output == nil || len(run.Output.Claims) == 0 {
		return guardmodel.Claim{}, fmt.Errorf("fixture %s declares no claims under output.claims", path)
	}
	return run.Output.Claims[0], nil
}

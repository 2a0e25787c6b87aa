package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
)

// RenderResult prints the evaluation in a friendly, ASCII-only format.
func RenderResult(out io.Writer, result domain.EvaluationResult) {
	fmt.Fprintln(out, "cmdgate evaluation complete")
	fmt.Fprintf(out, "Directory: %s\n", result.Context.WorkingDir)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Command:")
	fmt.Fprintf(out, "  %s\n", result.Command)

	fmt.Fprintf(out, "\nRisk: %s (confidence %.2f)\n",
		strings.ToUpper(result.Assessment.Level.String()),
		result.Assessment.Confidence)
	for _, reason := range result.Assessment.Reasons {
		fmt.Fprintf(out, " - %s\n", reason)
	}

	fmt.Fprintf(out, "Impact: %s, reversible=%t, network=%t\n",
		result.Impact.Scope, result.Impact.Reversible, result.Impact.RequiresNetwork)

	fmt.Fprintf(out, "\nVerdict: %s\n", result.Decision.Verdict)
	if result.Decision.Reason != "" {
		fmt.Fprintf(out, "Reason: %s\n", result.Decision.Reason)
	}
	for _, warning := range result.Decision.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}

	if result.Sandbox != nil {
		renderSandbox(out, result.Sandbox)
	}
}

func renderSandbox(out io.Writer, report *domain.SandboxReport) {
	fmt.Fprintln(out)
	if !report.Ran {
		fmt.Fprintf(out, "Sandbox: did not run (%s: %s)\n", report.Failure, report.Detail)
		return
	}
	outcome := report.Outcome
	if outcome == nil {
		fmt.Fprintln(out, "Sandbox: ran, no outcome recorded")
		return
	}
	fmt.Fprintf(out, "Sandbox: exit=%d in %dms", outcome.ExitCode, outcome.DurationMS)
	if outcome.TimedOut {
		fmt.Fprint(out, " (timed out)")
	}
	fmt.Fprintln(out)
	if len(outcome.CreatedPaths) > 0 {
		fmt.Fprintf(out, "  created: %s\n", strings.Join(outcome.CreatedPaths, ", "))
	}
	if len(outcome.ModifiedPaths) > 0 {
		fmt.Fprintf(out, "  modified: %s\n", strings.Join(outcome.ModifiedPaths, ", "))
	}
	if len(outcome.DeletedPaths) > 0 {
		fmt.Fprintf(out, "  deleted: %s\n", strings.Join(outcome.DeletedPaths, ", "))
	}
	if outcome.Stderr != "" {
		fmt.Fprintln(out, "  stderr:")
		for _, line := range strings.Split(strings.TrimRight(outcome.Stderr, "\n"), "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
}

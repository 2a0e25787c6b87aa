package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
	"github.com/doeshing/cmdgate/internal/domain"
)

func newEvalCommand(container *app.Container) *cobra.Command {
	var (
		mode        string
		autoConfirm bool
		withSandbox bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "eval [command string]",
		Short: "Evaluate a candidate command and decide whether it may run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.EvaluationRequest{
				Context:      cmd.Context(),
				Command:      strings.Join(args, " "),
				ModeOverride: mode,
				AutoConfirm:  autoConfirm,
				WithSandbox:  withSandbox,
			}
			result, err := container.Pipeline.Evaluate(req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			out := cmd.OutOrStdout()
			RenderResult(out, result)
			return resolveVerdict(out, container, result)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Override confirmation mode (strict|standard|permissive)")
	cmd.Flags().BoolVarP(&autoConfirm, "yes", "y", false, "Auto-approve confirmations below critical risk")
	cmd.Flags().BoolVarP(&withSandbox, "sandbox", "s", false, "Run gated commands in a disposable sandbox first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the evaluation as JSON and skip prompting")

	return cmd
}

// resolveVerdict handles the interactive tail of an evaluation. Approved
// entries stay pending so the executing caller can report the real outcome;
// declined ones are finalized on the spot.
func resolveVerdict(out io.Writer, container *app.Container, result domain.EvaluationResult) error {
	switch result.Decision.Verdict {
	case domain.VerdictBlock:
		return fmt.Errorf("command blocked: %s", result.Decision.Reason)

	case domain.VerdictRequireConfirmation:
		prompter := NewPrompter(nil, out)
		if !prompter.Enabled() {
			if err := container.Pipeline.Finalize(result.EntryID, domain.ResponseDeclined, nil); err != nil {
				return err
			}
			return fmt.Errorf("confirmation required but stdin is not a terminal")
		}
		approved, err := prompter.Confirm(result.Decision, result.Assessment, result.Command)
		if err != nil {
			return err
		}
		if !approved {
			if err := container.Pipeline.Finalize(result.EntryID, domain.ResponseDeclined, nil); err != nil {
				return err
			}
			fmt.Fprintln(out, "Declined. Command will not run.")
			return nil
		}
		fmt.Fprintf(out, "Approved. Report the outcome with: cmdgate audit finalize %s\n", result.EntryID)
		return nil

	default:
		fmt.Fprintf(out, "Allowed. Report the outcome with: cmdgate audit finalize %s\n", result.EntryID)
		return nil
	}
}

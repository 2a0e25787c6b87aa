package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
	"github.com/doeshing/cmdgate/internal/domain"
)

const msgNoEntriesRecorded = "No audit entries recorded yet."

func newAuditCommand(container *app.Container) *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the evaluation audit trail",
	}

	auditCmd.AddCommand(
		newAuditListCommand(container),
		newAuditShowCommand(container),
		newAuditExportCommand(container),
		newAuditFinalizeCommand(container),
		newAuditClearCommand(container),
	)

	return auditCmd
}

func newAuditListCommand(container *app.Container) *cobra.Command {
	var (
		level    string
		executed bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.AuditFilter{Limit: limit}
			if level != "" {
				parsed, ok := domain.ParseRiskLevel(level)
				if !ok {
					return fmt.Errorf("unknown risk level %q", level)
				}
				filter.Level = &parsed
			}
			if cmd.Flags().Changed("executed") {
				filter.Executed = &executed
			}
			return listAuditEntries(cmd.OutOrStdout(), container, filter)
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Only entries at this risk level")
	cmd.Flags().BoolVar(&executed, "executed", false, "Only entries that were (or were not) executed")
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultAuditQueryLimit, "Max entries to show")
	return cmd
}

func newAuditShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one audit entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := container.AuditStore.Get(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entry)
		},
	}
}

func newAuditExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the audit trail to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.AuditStore.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export audit trail to %s: %w", args[0], err)
			}
			return nil
		},
	}
}

func newAuditFinalizeCommand(container *app.Container) *cobra.Command {
	var (
		response string
		exitCode int
	)

	cmd := &cobra.Command{
		Use:   "finalize <id>",
		Short: "Record the terminal outcome of a pending evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseResponse(response)
			if err != nil {
				return err
			}
			var outcome *domain.ExecutionOutcome
			if parsed == domain.ResponseExecuted {
				outcome = &domain.ExecutionOutcome{ExitCode: exitCode}
			}
			if err := container.Pipeline.Finalize(args[0], parsed, outcome); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entry %s finalized as %s.\n", args[0], parsed)
			return nil
		},
	}

	cmd.Flags().StringVar(&response, "response", string(domain.ResponseExecuted), "Terminal response (executed|confirmed|declined)")
	cmd.Flags().IntVar(&exitCode, "exit-code", 0, "Exit code of the executed command")
	return cmd
}

func newAuditClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.AuditStore.Clear(); err != nil {
				return fmt.Errorf("failed to clear audit trail: %w", err)
			}
			return nil
		},
	}
}

func parseResponse(value string) (domain.UserResponse, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "executed":
		return domain.ResponseExecuted, nil
	case "confirmed":
		return domain.ResponseConfirmed, nil
	case "declined":
		return domain.ResponseDeclined, nil
	default:
		return "", fmt.Errorf("response must be executed|confirmed|declined, got %q", value)
	}
}

func listAuditEntries(out io.Writer, container *app.Container, filter domain.AuditFilter) error {
	entries, err := container.AuditStore.Query(filter)
	if err != nil {
		return fmt.Errorf("failed to query audit trail: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, msgNoEntriesRecorded)
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(out, "%s | %s | %-8s | %-20s | %s\n",
			entry.ID,
			humanize.Time(entry.Timestamp),
			entry.Assessment.Level,
			verdictSummary(entry),
			entry.Command)
	}
	return nil
}

func verdictSummary(entry domain.AuditEntry) string {
	if entry.Finalized() {
		return fmt.Sprintf("%s/%s", entry.Decision.Verdict, entry.Response)
	}
	return fmt.Sprintf("%s/pending", entry.Decision.Verdict)
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	evalCmd := newEvalCommand(container)

	root := &cobra.Command{
		Use:   "cmdgate [command string]",
		Short: "cmdgate - execution gate for generated shell commands",
		Long:  "cmdgate assesses a candidate shell command for risk and decides whether it may run, needs confirmation, or is blocked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			evalCmd.SetArgs(args)
			return evalCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(evalCmd)
	root.AddCommand(newAuditCommand(container))
	root.AddCommand(newRulesCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}

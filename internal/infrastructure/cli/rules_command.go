package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
)

func newRulesCommand(container *app.Container) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the loaded classification rules",
	}

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List rules in precedence-independent table order",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, rule := range container.Classifier.Rules() {
				fmt.Fprintf(out, "%-40s %-8s %.2f  %s\n",
					rule.Name, rule.Level, rule.Confidence, rule.Reason)
			}
			return nil
		},
	})

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show where rules are loaded from",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := container.ConfigLoader.Load(cmd.Context())
			if err != nil {
				return err
			}

			source := "embedded defaults"
			if cfg.Security.RulesFile != "" {
				if _, statErr := os.Stat(cfg.Security.RulesFile); statErr == nil {
					source = cfg.Security.RulesFile
				} else {
					source = fmt.Sprintf("embedded defaults (%s not found)", cfg.Security.RulesFile)
				}
			}

			builtin, patterns := 0, 0
			for _, rule := range container.Classifier.Rules() {
				if strings.HasPrefix(rule.Name, "pattern:") {
					patterns++
				} else {
					builtin++
				}
			}

			fmt.Fprintf(out, "Pattern source: %s\n", source)
			fmt.Fprintf(out, "Built-in rules: %d\n", builtin)
			fmt.Fprintf(out, "Pattern rules:  %d\n", patterns)
			return nil
		},
	})

	return rulesCmd
}

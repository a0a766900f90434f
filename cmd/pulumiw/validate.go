// File: cmd/pulumiw/validate.go
// Brief: `pulumiw validate` catalog validation command.

package main

import (
	"fmt"

	"github.com/example/pulumiw/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newValidateCommand(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate",
		Short:         "Validate catalog.yaml and list the registered services",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.repoRoot()
			if err != nil {
				return err
			}
			entries, err := catalog.Load(root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Validation passed: %d service(s) defined\n", len(entries))
			mark := color.New(color.FgGreen).Sprint("✓")
			for _, e := range entries {
				desc := e.Description
				if desc == "" {
					desc = "no description"
				}
				fmt.Fprintf(out, "  %s %s (%s/%s) - %s\n", mark, e.Name, e.Provider, e.Type, desc)
			}
			return nil
		},
	}
	return cmd
}

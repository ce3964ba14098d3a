package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [version]",
		Short: "Print the latest released version, or compare it with the given one",
		Long: "Without an argument, prints the newest patch version announced on the store.\n" +
			"With an argument, exits 0 when it equals the latest version and 1 otherwise.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx := ctx.runContext(cmd)
			runner, err := ctx.runner(runCtx)
			if err != nil {
				return err
			}
			expected := ""
			if len(args) == 1 {
				expected = args[0]
			}
			result, err := runner.Check(runCtx, expected)
			if err != nil {
				return err
			}
			if expected == "" {
				fmt.Fprintln(cmd.OutOrStdout(), result.Latest.String())
				return nil
			}
			if !result.Matches {
				return &exitCodeError{code: 1}
			}
			return nil
		},
	}
}

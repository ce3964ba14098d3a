package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <version> <output-dir>",
		Short: "Download the installation with DepotDownloader",
		Long: "Runs DepotDownloader for the configured app into output-dir.\n" +
			"Credentials come from [download] or STEAM_USERNAME / STEAM_TOTP_SECRET; when a\n" +
			"shared secret is set, a Steam Guard code is generated and passed as STEAM_2FA_CODE.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx := ctx.runContext(cmd)
			runner, err := ctx.runner(runCtx)
			if err != nil {
				return err
			}
			if err := runner.Download(runCtx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s into %s\n", args[0], args[1])
			return nil
		},
	}
}

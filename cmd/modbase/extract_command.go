package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modbase/internal/extract"
	"modbase/internal/pipeline"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var excludeFlag string

	cmd := &cobra.Command{
		Use:   "extract <input-dir> <output-dir> [exclude-extensions]",
		Short: "Mirror an installation, replacing binary assets with placeholders",
		Long: "Copies every moddable file from input-dir into the empty output-dir. Engine\n" +
			"binaries are dropped; binary assets become JSON placeholders recording their\n" +
			"size and sha256. A comma-separated extension list (argument or --exclude)\n" +
			"replaces the configured placeholder list.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx := ctx.runContext(cmd)
			runner, err := ctx.runner(runCtx)
			if err != nil {
				return err
			}
			override := excludeFlag
			if len(args) == 3 {
				override = args[2]
			}
			stats, err := runner.Extract(runCtx, pipeline.ExtractRequest{
				InputDir:    args[0],
				OutputDir:   args[1],
				Placeholder: extract.ParseExtensionList(override),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Copied", fmt.Sprint(stats.Copied), formatMB(stats.CopiedBytes)},
				{"Placeholders", fmt.Sprint(stats.Placeholders), ""},
				{"Skipped", fmt.Sprint(stats.Skipped), ""},
				{"Omitted total", "", formatMB(stats.OmittedBytes)},
			}
			fmt.Fprintln(out, renderTable([]string{"Files", "Count", "Size"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight}, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().StringVar(&excludeFlag, "exclude", "", "Comma-separated extensions to replace with placeholders")
	return cmd
}

func formatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}

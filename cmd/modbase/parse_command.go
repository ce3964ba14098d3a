package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modbase/internal/pipeline"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <input-dir> <output-dir> <release-notes-dir>",
		Short: "Write snapshot metadata for a downloaded installation",
		Long: "Reads the installed version and depot manifests from input-dir, makes sure\n" +
			"release notes exist for the version and its parent patches, and writes the\n" +
			"snapshot metadata document into output-dir.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx := ctx.runContext(cmd)
			runner, err := ctx.runner(runCtx)
			if err != nil {
				return err
			}
			result, err := runner.Parse(runCtx, pipeline.ParseRequest{
				InputDir:  args[0],
				OutputDir: args[1],
				NotesDir:  args[2],
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			name := result.Version.String()
			if result.VersionName != "" {
				name += " (" + result.VersionName + ")"
			}
			fmt.Fprintf(out, "Version:  %s\n", name)
			fmt.Fprintf(out, "Depots:   %d (%d named)\n", len(result.Catalog.Depots), result.Catalog.Named())
			rows := make([][]string, 0, len(result.Notes))
			for _, n := range result.Notes {
				rows = append(rows, []string{n.Version.String(), n.Status.String(), n.File})
			}
			fmt.Fprintln(out, renderTable([]string{"Version", "Notes", "File"}, rows, nil, shouldColorize(out)))
			if result.Selected.Fallback {
				fmt.Fprintf(out, "Note: no release notes for %s yet; using %s (best effort)\n",
					result.Version, result.Selected.Version)
			}
			fmt.Fprintf(out, "Metadata: %s\n", result.MetadataPath)
			return nil
		},
	}
}

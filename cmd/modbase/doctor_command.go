package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modbase/internal/preflight"
	"modbase/internal/services/steam"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external programs, directories, and store reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var store preflight.AppDetailer
			if !offline {
				client, err := steam.New(cfg.Store.BaseURL, cfg.Store.Language, cfg.Store.UserAgent, cfg.StoreTimeout())
				if err != nil {
					return err
				}
				store = client
			}

			results := preflight.RunAll(cmd.Context(), cfg, store)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				switch {
				case !r.Passed && r.Optional:
					state = "warn"
				case !r.Passed:
					state = "FAIL"
				}
				rows = append(rows, []string{r.Name, state, r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil, shouldColorize(out)))
			if preflight.Failed(results) {
				return &exitCodeError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the store reachability check")
	return cmd
}

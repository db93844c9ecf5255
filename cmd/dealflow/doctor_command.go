package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dealflow/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the evaluation store and external services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					kind := statusOK
					switch {
					case r.Failed():
						kind = statusError
					case !r.Passed:
						kind = statusWarn
					}
					rows = append(rows, []string{r.Name, colorizeText(statusKindLabel(kind), kind, colorize), r.Detail})
				}
				fmt.Fprintln(out, renderTable([]column{{title: "Check"}, {title: "Status"}, {title: "Detail"}}, rows))
			}

			if preflight.AnyFailed(results) {
				return errors.New("one or more required checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dealflow/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFlag string
		limit      int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored evaluations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := store.ListOptions{Limit: limit}
			if strings.TrimSpace(statusFlag) != "" {
				status, ok := store.ParseStatus(statusFlag)
				if !ok {
					return fmt.Errorf("unknown status %q (use completed, failed or needs_review)", statusFlag)
				}
				opts.Status = status
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			evaluations, err := st.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				if evaluations == nil {
					evaluations = []*store.Evaluation{}
				}
				return writeJSON(cmd, evaluations)
			}

			out := cmd.OutOrStdout()
			if len(evaluations) == 0 {
				fmt.Fprintln(out, "No evaluations found")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(evaluations))
			for _, ev := range evaluations {
				rows = append(rows, []string{
					shortID(ev.ID),
					ev.Company,
					colorizeText(string(ev.Status), evaluationStatusKind(ev.Status), colorize),
					scoreCell(ev),
					ev.RiskLevel,
					ev.Recommendation,
					ev.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "ID"}, {title: "Company"}, {title: "Status"}, {title: "Score", right: true},
				{title: "Risk"}, {title: "Recommendation"}, {title: "Created"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Filter by status (completed, failed, needs_review)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of evaluations to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func scoreCell(ev *store.Evaluation) string {
	if ev.Status != store.StatusCompleted {
		return "-"
	}
	return formatScore(ev.Score)
}

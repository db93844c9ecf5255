package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dealflow/internal/startup"
	"dealflow/internal/store"
)

type showOutput struct {
	*store.Evaluation
	Memo   json.RawMessage `json:"memo,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		dealNote bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one evaluation by ID or unique ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			id := strings.TrimSpace(args[0])
			ev, err := st.Resolve(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, store.ErrAmbiguousID) {
					return fmt.Errorf("evaluation id %q is ambiguous; use more characters", id)
				}
				return err
			}
			if ev == nil {
				return fmt.Errorf("evaluation %q not found", id)
			}

			out := cmd.OutOrStdout()
			switch {
			case dealNote:
				if strings.TrimSpace(ev.DealNote) == "" {
					return fmt.Errorf("evaluation %s has no deal note (status %s)", ev.ID, ev.Status)
				}
				fmt.Fprint(out, ev.DealNote)
				if !strings.HasSuffix(ev.DealNote, "\n") {
					fmt.Fprintln(out)
				}
				return nil
			case asJSON:
				view := showOutput{Evaluation: ev}
				if ev.MemoJSON != "" {
					view.Memo = json.RawMessage(ev.MemoJSON)
				}
				if ev.ResultJSON != "" {
					view.Result = json.RawMessage(ev.ResultJSON)
				}
				return writeJSON(cmd, view)
			default:
				return renderEvaluation(out, ev, shouldColorize(out))
			}
		},
	}

	cmd.Flags().BoolVar(&dealNote, "deal-note", false, "Print the markdown deal note")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("deal-note", "json")
	return cmd
}

func renderEvaluation(w io.Writer, ev *store.Evaluation, colorize bool) error {
	fmt.Fprintf(w, "Evaluation %s [%s]\n", ev.ID, colorizeText(string(ev.Status), evaluationStatusKind(ev.Status), colorize))
	fmt.Fprintf(w, "Company:        %s\n", ev.Company)
	fmt.Fprintf(w, "Source:         %s\n", ev.Source)
	fmt.Fprintf(w, "Created:        %s\n", ev.CreatedAt.Local().Format(time.DateTime))
	if ev.Error != "" {
		fmt.Fprintf(w, "Error:          %s\n", ev.Error)
	}
	if ev.MemoJSON == "" {
		return nil
	}

	var memo startup.Memo
	if err := json.Unmarshal([]byte(ev.MemoJSON), &memo); err != nil {
		return fmt.Errorf("decode stored memo: %w", err)
	}
	fmt.Fprintf(w, "Score:          %s/10\n", formatScore(memo.InvestmentScore))
	fmt.Fprintf(w, "Risk:           %s\n", memo.Risk.Level)
	fmt.Fprintf(w, "Recommendation: %s\n", memo.Recommendation)
	writeBullets(w, "Strengths", memo.Strengths)
	writeBullets(w, "Concerns", memo.Concerns)
	writeBullets(w, "Risk factors", memo.Risk.Factors)
	writeBullets(w, "Verification flags", memo.VerificationFlags)
	return nil
}

func writeBullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dealflow/internal/extraction"
	"dealflow/internal/pipeline"
)

type evaluateOutput struct {
	Result       pipeline.Result `json:"result"`
	Saved        bool            `json:"saved"`
	DealNotePath string          `json:"deal_note_path,omitempty"`
}

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var (
		filePath string
		videoURL string
		formJSON string
		asJSON   bool
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one pitch document, video or form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := buildInput(filePath, videoURL, formJSON)
			if err != nil {
				return err
			}
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			recorder, err := ctx.recorder(!noSave)
			if err != nil {
				return err
			}
			defer ctx.close()

			res := runner.Evaluate(cmd.Context(), in)
			saved, err := recorder.Save(cmd.Context(), res)
			if err != nil {
				return err
			}

			out := evaluateOutput{Result: res, Saved: !noSave, DealNotePath: saved.DealNotePath}
			if asJSON {
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
			} else {
				renderResult(cmd.OutOrStdout(), out, shouldColorize(cmd.OutOrStdout()))
			}
			if !res.Success {
				return fmt.Errorf("evaluation %s %s", res.EvaluationID, res.Status())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Pitch document (.json, .yaml, .txt, .md)")
	cmd.Flags().StringVar(&videoURL, "video", "", "Pitch video URL")
	cmd.Flags().StringVar(&formJSON, "form", "", "Pitch form as a JSON object")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the full result as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the evaluation or write the deal note")
	cmd.MarkFlagsMutuallyExclusive("file", "video", "form")
	cmd.MarkFlagsOneRequired("file", "video", "form")
	return cmd
}

func buildInput(filePath, videoURL, formJSON string) (extraction.Input, error) {
	in := extraction.Input{
		FilePath: strings.TrimSpace(filePath),
		VideoURL: strings.TrimSpace(videoURL),
	}
	if strings.TrimSpace(formJSON) != "" {
		if err := json.Unmarshal([]byte(formJSON), &in.Form); err != nil {
			return in, fmt.Errorf("parse --form: %w", err)
		}
		if in.Form == nil {
			return in, errors.New("parse --form: expected a JSON object")
		}
	}
	return in, nil
}

func renderResult(w io.Writer, out evaluateOutput, colorize bool) {
	res := out.Result
	status := res.Status()
	fmt.Fprintf(w, "Evaluation %s [%s]\n", res.EvaluationID, colorizeText(string(status), evaluationStatusKind(status), colorize))
	if res.Company != "" {
		fmt.Fprintf(w, "Company:        %s\n", res.Company)
	}
	if m := res.Memo; m != nil {
		fmt.Fprintf(w, "Score:          %s/10\n", formatScore(m.InvestmentScore))
		fmt.Fprintf(w, "Risk:           %s\n", m.Risk.Level)
		fmt.Fprintf(w, "Recommendation: %s\n", m.Recommendation)
	}
	if res.Error != "" {
		fmt.Fprintf(w, "Error:          %s\n", res.Error)
	}

	fmt.Fprintln(w, "Phases:")
	for _, p := range res.Phases {
		kind, label := statusOK, "ok"
		switch {
		case !p.Success && p.Optional:
			kind, label = statusWarn, "skipped"
		case !p.Success:
			kind, label = statusError, "failed"
		}
		line := fmt.Sprintf("  %-20s %s", p.Name, colorizeText(label, kind, colorize))
		if p.Error != "" {
			line += "  " + p.Error
		}
		fmt.Fprintln(w, line)
	}

	switch {
	case out.DealNotePath != "":
		fmt.Fprintf(w, "Deal note:      %s\n", out.DealNotePath)
	case !out.Saved:
		fmt.Fprintln(w, "Not saved (--no-save)")
	}
}

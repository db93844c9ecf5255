package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dealflow/internal/extraction"
	"dealflow/internal/fileutil"
	"dealflow/internal/logging"
	"dealflow/internal/notifications"
	"dealflow/internal/pipeline"
)

// batchManifest accepts either a bare list of inputs or an object with an
// items list.
type batchManifest struct {
	Items []extraction.Input `yaml:"items"`
}

type batchItemSummary struct {
	Index        int    `json:"index"`
	Input        string `json:"input"`
	EvaluationID string `json:"evaluation_id,omitempty"`
	Company      string `json:"company,omitempty"`
	Status       string `json:"status"`
	Score        string `json:"score,omitempty"`
	DealNotePath string `json:"deal_note_path,omitempty"`
	Error        string `json:"error,omitempty"`
}

type batchOutput struct {
	Items     []batchItemSummary `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Skipped   int                `json:"skipped"`
	Duration  string             `json:"duration"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "batch MANIFEST.yaml",
		Short: "Evaluate every pitch listed in a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inputs, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			if outDir = strings.TrimSpace(outDir); outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}

			lock := flock.New(cfg.BatchLockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire batch lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another dealflow batch is already running (lock %s)", cfg.BatchLockPath())
			}
			defer func() {
				_ = lock.Unlock()
			}()

			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			recorder, err := ctx.recorder(true)
			if err != nil {
				return err
			}
			defer ctx.close()

			logger := ctx.loggerValue()
			progress := io.Discard
			if !asJSON {
				progress = cmd.OutOrStdout()
			}
			colorize := shouldColorize(cmd.OutOrStdout())

			started := time.Now()
			out := batchOutput{Items: make([]batchItemSummary, 0, len(inputs))}
			batch := runner.EvaluateBatch(cmd.Context(), inputs, func(i int, res pipeline.Result) {
				item := batchItemSummary{
					Index:        i + 1,
					Input:        inputs[i].Label(),
					EvaluationID: res.EvaluationID,
					Company:      res.Company,
					Status:       string(res.Status()),
					Error:        res.Error,
				}
				if res.Memo != nil {
					item.Score = formatScore(res.Memo.InvestmentScore)
				}
				saved, err := recorder.Save(cmd.Context(), res)
				if err != nil {
					logging.WarnWithContext(logger, "failed to record batch item", "record_failed",
						logging.Error(err),
						logging.Int("index", i),
					)
					if item.Error != "" {
						item.Error += "; "
					}
					item.Error += err.Error()
				}
				if saved.DealNotePath != "" {
					item.DealNotePath = saved.DealNotePath
					if outDir != "" {
						target := filepath.Join(outDir, filepath.Base(saved.DealNotePath))
						if err := fileutil.CopyFileVerified(saved.DealNotePath, target); err != nil {
							logging.WarnWithContext(logger, "failed to export deal note", "deal_note_export_failed",
								logging.Error(err),
								logging.String("target", target),
							)
						} else {
							item.DealNotePath = target
						}
					}
				}
				out.Items = append(out.Items, item)
				fmt.Fprintf(progress, "[%d/%d] %-24s %s %s\n", i+1, len(inputs), itemLabel(item),
					colorizeText(item.Status, evaluationStatusKind(res.Status()), colorize), item.Score)
			})

			elapsed := time.Since(started)
			out.Succeeded, out.Failed, out.Skipped = batch.Succeeded, batch.Failed, batch.Skipped
			out.Duration = elapsed.Round(time.Millisecond).String()

			notifier := notifications.NewService(cfg)
			if err := notifier.Publish(cmd.Context(), notifications.EventBatchCompleted, notifications.Payload{
				"succeeded": batch.Succeeded,
				"failed":    batch.Failed,
				"duration":  elapsed,
			}); err != nil {
				logger.Warn("failed to send batch notification", logging.Error(err))
			}

			if asJSON {
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Batch complete: %d succeeded, %d failed, %d skipped in %s\n",
					out.Succeeded, out.Failed, out.Skipped, out.Duration)
			}
			if batch.Skipped > 0 {
				return cmd.Context().Err()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Also copy each deal note into this directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the batch summary as JSON")
	return cmd
}

func itemLabel(item batchItemSummary) string {
	if item.Company != "" {
		return item.Company
	}
	return item.Input
}

// loadManifest reads the manifest and resolves relative file paths against
// its directory.
func loadManifest(path string) ([]extraction.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var inputs []extraction.Input
	if listErr := yaml.Unmarshal(data, &inputs); listErr != nil {
		var manifest batchManifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", listErr)
		}
		inputs = manifest.Items
	}
	if len(inputs) == 0 {
		return nil, errors.New("manifest lists no items")
	}

	base := filepath.Dir(path)
	for i := range inputs {
		file := strings.TrimSpace(inputs[i].FilePath)
		if file != "" && !filepath.IsAbs(file) {
			inputs[i].FilePath = filepath.Join(base, file)
		}
	}
	return inputs, nil
}

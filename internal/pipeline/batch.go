package pipeline

import (
	"context"
	"fmt"

	"dealflow/internal/extraction"
	"dealflow/internal/logging"
	"dealflow/internal/services"
	"dealflow/internal/startup"
)

// BatchResult summarizes a batch run.
type BatchResult struct {
	Results   []Result       `json:"results"`
	Memos     []startup.Memo `json:"memos"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped,omitempty"`
}

// EvaluateBatch evaluates inputs one after another. A failing item is logged
// and skipped; it never aborts the batch. onResult, when set, sees every
// item's result as soon as it is available. Cancelling ctx stops the loop
// before the next item and counts the remainder as skipped.
func (r *Runner) EvaluateBatch(ctx context.Context, inputs []extraction.Input, onResult func(index int, res Result)) BatchResult {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, r.logger)
	batch := BatchResult{Memos: []startup.Memo{}}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			batch.Skipped = len(inputs) - i
			logging.WarnWithContext(logger, "batch interrupted", "batch_interrupted",
				logging.Int("remaining", batch.Skipped),
				logging.Error(err),
				logging.String(logging.FieldImpact, "remaining items were not evaluated"),
			)
			break
		}

		res := r.evaluateIsolated(ctx, in)
		batch.Results = append(batch.Results, res)
		if res.Success && res.Memo != nil {
			batch.Succeeded++
			batch.Memos = append(batch.Memos, res.Memo.Clone())
		} else {
			batch.Failed++
			logging.WarnWithContext(logger, "batch item failed", "batch_item_failure",
				logging.Int("index", i),
				logging.String("input", in.Label()),
				logging.String("error_message", res.Error),
				logging.String(logging.FieldImpact, "item skipped, batch continued"),
			)
		}
		if onResult != nil {
			onResult(i, res)
		}
	}

	logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("total", len(inputs)),
		logging.Int("succeeded", batch.Succeeded),
		logging.Int("failed", batch.Failed),
	)
	return batch
}

func (r *Runner) evaluateIsolated(ctx context.Context, in extraction.Input) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			err := services.Wrap(ErrPanic, "batch", "evaluate", fmt.Sprint(rec), nil)
			res = Result{Source: in.Source(), Err: err, Error: err.Error()}
		}
	}()
	return r.Evaluate(ctx, in)
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"dealflow/internal/config"
	"dealflow/internal/fileutil"
	"dealflow/internal/logging"
	"dealflow/internal/notifications"
	"dealflow/internal/store"
	"dealflow/internal/textutil"
)

// Recorder persists finished evaluations: the store row, the deal note file
// and the completion notification.
type Recorder struct {
	store       *store.Store
	dealNoteDir string
	notifier    notifications.Service
	logger      *slog.Logger
}

// Saved describes what the recorder wrote for one result.
type Saved struct {
	Evaluation   *store.Evaluation `json:"evaluation,omitempty"`
	DealNotePath string            `json:"deal_note_path,omitempty"`
}

// NewRecorder builds a Recorder. st may be nil to skip persistence and
// notifier may be nil to skip notifications.
func NewRecorder(st *store.Store, cfg *config.Config, notifier notifications.Service, logger *slog.Logger) *Recorder {
	r := &Recorder{
		store:    st,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "recorder"),
	}
	if cfg != nil {
		r.dealNoteDir = cfg.Paths.DealNoteDir
	}
	return r
}

// DealNoteFileName is the file a result's deal note is written to.
func DealNoteFileName(company, evaluationID string) string {
	id := evaluationID
	if len(id) > 8 {
		id = id[:8]
	}
	return textutil.SanitizeToken(company) + "-" + id + ".md"
}

// Save records res. Notification failures are logged, never returned.
func (r *Recorder) Save(ctx context.Context, res Result) (Saved, error) {
	logger := logging.WithContext(ctx, r.logger)
	var saved Saved

	ev, err := res.Record()
	if err != nil {
		return saved, err
	}
	saved.Evaluation = ev
	if r.store != nil {
		if err := r.store.Save(ctx, ev); err != nil {
			return saved, fmt.Errorf("save evaluation: %w", err)
		}
	}

	if res.Success && strings.TrimSpace(res.DealNote) != "" && r.dealNoteDir != "" {
		path := filepath.Join(r.dealNoteDir, DealNoteFileName(ev.Company, ev.ID))
		if err := fileutil.WriteFileAtomic(path, []byte(res.DealNote), 0o644); err != nil {
			return saved, fmt.Errorf("write deal note: %w", err)
		}
		saved.DealNotePath = path
		logger.Info("deal note written",
			logging.String("deal_note_path", path),
			logging.String(logging.FieldEventType, "deal_note_written"),
		)
	}

	r.notify(ctx, res, ev)
	return saved, nil
}

func (r *Recorder) notify(ctx context.Context, res Result, ev *store.Evaluation) {
	if r.notifier == nil {
		return
	}
	event := notifications.EventEvaluationCompleted
	payload := notifications.Payload{
		"company":       ev.Company,
		"evaluation_id": ev.ID,
	}
	if res.Success {
		payload["score"] = ev.Score
		payload["recommendation"] = ev.Recommendation
	} else {
		event = notifications.EventEvaluationFailed
		payload["error"] = res.Error
		if phase := res.FailedPhase(); phase != "" {
			payload["phase"] = phase
		}
	}
	if err := r.notifier.Publish(ctx, event, payload); err != nil {
		logging.WithContext(ctx, r.logger).Warn("failed to send evaluation notification",
			logging.Error(err),
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
		)
	}
}

// FailedPhase names the required phase that stopped the run, if any.
func (r Result) FailedPhase() string {
	for _, p := range r.Phases {
		if !p.Success && !p.Optional {
			return p.Name
		}
	}
	return ""
}

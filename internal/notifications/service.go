package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dealflow/internal/config"
)

const userAgent = "Dealflow-Go/0.1.0"

// Event identifies a notification type.
type Event string

const (
	EventEvaluationCompleted Event = "evaluation_completed"
	EventEvaluationFailed    Event = "evaluation_failed"
	EventBatchCompleted      Event = "batch_completed"
	EventTest                Event = "test"
)

// Payload carries event specific values. Keys per event:
//
//	evaluation_completed: company, score (float64), recommendation
//	evaluation_failed:    company, error, phase
//	batch_completed:      succeeded, failed (int), duration (time.Duration)
type Payload map[string]any

// Service publishes notification events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventEvaluationCompleted: cfg.Notifications.Evaluation,
			EventEvaluationFailed:    cfg.Notifications.Errors,
			EventBatchCompleted:      cfg.Notifications.Batch,
			EventTest:                true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventEvaluationCompleted:
		company := payload.text("company", "Unknown Company")
		recommendation := payload.text("recommendation", "no recommendation")
		msg := message{
			title: "Dealflow - Evaluation Complete",
			body:  fmt.Sprintf("✅ %s: %.1f/10, %s", company, payload.number("score"), recommendation),
			tags:  []string{"dealflow", "evaluation", "completed"},
		}
		if strings.HasPrefix(recommendation, "STRONG BUY") {
			msg.priority = "high"
		}
		return msg, true
	case EventEvaluationFailed:
		var b strings.Builder
		b.WriteString("❌ Evaluation failed for ")
		b.WriteString(payload.text("company", "Unknown Company"))
		if phase := payload.text("phase", ""); phase != "" {
			b.WriteString(" during ")
			b.WriteString(phase)
		}
		b.WriteString(": ")
		b.WriteString(payload.text("error", "unknown"))
		return message{
			title:    "Dealflow - Evaluation Failed",
			body:     b.String(),
			tags:     []string{"dealflow", "evaluation", "error"},
			priority: "high",
		}, true
	case EventBatchCompleted:
		succeeded := payload.count("succeeded")
		failed := payload.count("failed")
		duration := payload.elapsed("duration").Round(time.Second)
		if duration < 0 {
			duration = 0
		}
		if failed == 0 {
			return message{
				title: "Dealflow - Batch Complete",
				body:  fmt.Sprintf("Batch complete: %d evaluated in %s", succeeded, duration),
				tags:  []string{"dealflow", "batch", "completed"},
			}, true
		}
		return message{
			title: "Dealflow - Batch Complete (with errors)",
			body:  fmt.Sprintf("Batch complete: %d succeeded, %d failed in %s", succeeded, failed, duration),
			tags:  []string{"dealflow", "batch", "completed"},
		}, true
	case EventTest:
		return message{
			title:    "Dealflow - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"dealflow", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) text(key, fallback string) string {
	switch v := p[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case error:
		return strings.TrimSpace(v.Error())
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	}
	return fallback
}

func (p Payload) number(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (p Payload) count(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func (p Payload) elapsed(key string) time.Duration {
	if v, ok := p[key].(time.Duration); ok {
		return v
	}
	return 0
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

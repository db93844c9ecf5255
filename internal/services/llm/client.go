package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultEndpoint    = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout = 15 * time.Second
	healthPrompt       = `Reply with {"ok":true}`
)

// Config holds the OpenRouter connection settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client talks to an OpenAI-compatible chat completion endpoint and always
// asks for a JSON object response.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryMaxAttempts sets how many requests a single call may issue.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

// WithRetryBackoff sets the first and the largest delay between attempts.
func WithRetryBackoff(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.base = base
		c.retry.max = maxDelay
	}
}

// WithSleeper replaces the wait between attempts. Tests use it to skip real sleeps.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleeper = sleeper }
}

// NewClient builds a client. Empty BaseURL means OpenRouter.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg = Config{
		APIKey:         strings.TrimSpace(cfg.APIKey),
		BaseURL:        strings.TrimSpace(cfg.BaseURL),
		Model:          strings.TrimSpace(cfg.Model),
		Referer:        strings.TrimSpace(cfg.Referer),
		Title:          strings.TrimSpace(cfg.Title),
		TimeoutSeconds: cfg.TimeoutSeconds,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultEndpoint
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate sends prompt under SystemPrompt and returns the model's raw content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.CompleteJSON(ctx, SystemPrompt, prompt)
}

// CompleteJSON sends an explicit system and user prompt pair.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	system = strings.TrimSpace(system)
	user = strings.TrimSpace(user)
	switch {
	case system == "":
		return "", errors.New("llm generate: system prompt required")
	case user == "":
		return "", errors.New("llm generate: prompt required")
	case c.cfg.APIKey == "":
		return "", errors.New("llm generate: api key required")
	}
	return c.complete(ctx, "llm generate", c.newRequest(system, user))
}

// HealthCheck issues a minimal request and expects {"ok":true} back.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	content, err := c.complete(ctx, "llm health", c.newRequest(SystemPrompt, healthPrompt))
	if err != nil {
		return err
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := DecodeStrict(content, &reply); err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	if !reply.OK {
		return errors.New("llm health: model did not acknowledge")
	}
	return nil
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) newRequest(system, user string) chatRequest {
	return chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
}

// complete runs req under the retry policy until a choice carries content.
func (c *Client) complete(ctx context.Context, op string, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", op, err)
	}
	var lastErr error
	attempts := c.retry.maxAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, raw, err := c.post(ctx, body)
		if err == nil {
			content, finish := resp.content()
			if content != "" {
				return content, nil
			}
			err = &emptyContentError{
				op:      op,
				finish:  finish,
				refusal: resp.refusal(),
				snippet: snippet(string(raw)),
			}
		}
		lastErr = err
		delay, ok := c.retry.next(ctx, err, attempt)
		if !ok {
			return "", err
		}
		if err := c.retry.wait(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: gave up after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (chatResponse, []byte, error) {
	var out chatResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return out, nil, fmt.Errorf("llm request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return out, nil, fmt.Errorf("llm request (timeout %s): %w", c.http.Timeout, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return out, raw, &statusError{
			code:       resp.StatusCode,
			body:       strings.TrimSpace(string(raw)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, raw, fmt.Errorf("llm request: decode response: %w", err)
	}
	if out.Error != nil {
		return out, raw, fmt.Errorf("llm request: provider error: %s", strings.TrimSpace(out.Error.Message))
	}
	return out, raw, nil
}

// chatResponse accepts the shapes providers actually return: message content,
// streaming deltas, legacy text and tool or function call arguments.
type chatResponse struct {
	Choices []struct {
		Message      responseMessage `json:"message"`
		Delta        responseMessage `json:"delta"`
		Text         string          `json:"text"`
		FinishReason string          `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type responseMessage struct {
	Content   string `json:"content"`
	Refusal   string `json:"refusal"`
	ToolCalls []struct {
		Function struct {
			Arguments string `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
	FunctionCall *struct {
		Arguments string `json:"arguments"`
	} `json:"function_call"`
}

func (m responseMessage) arguments() string {
	if m.FunctionCall != nil {
		if args := strings.TrimSpace(m.FunctionCall.Arguments); args != "" {
			return args
		}
	}
	for _, call := range m.ToolCalls {
		if args := strings.TrimSpace(call.Function.Arguments); args != "" {
			return args
		}
	}
	return ""
}

func (r chatResponse) content() (string, string) {
	finish := ""
	for _, ch := range r.Choices {
		if finish == "" {
			finish = strings.TrimSpace(ch.FinishReason)
		}
		for _, candidate := range []string{
			ch.Message.Content, ch.Delta.Content, ch.Text,
			ch.Message.arguments(), ch.Delta.arguments(),
		} {
			if s := strings.TrimSpace(candidate); s != "" {
				return s, finish
			}
		}
	}
	return "", finish
}

func (r chatResponse) refusal() string {
	for _, ch := range r.Choices {
		if s := strings.TrimSpace(ch.Message.Refusal + ch.Delta.Refusal); s != "" {
			return s
		}
	}
	return ""
}

type statusError struct {
	code       int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.code, e.body)
}

type emptyContentError struct {
	op      string
	finish  string
	refusal string
	snippet string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.op, e.finish, e.refusal, e.snippet)
}

// snippet flattens whitespace and keeps at most 160 runes for error messages.
func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	if runes := []rune(clean); len(runes) > 160 {
		return string(runes[:160]) + "..."
	}
	return clean
}

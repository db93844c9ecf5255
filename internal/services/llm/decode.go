package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrMalformedResponse marks content that is not exactly one JSON value.
var ErrMalformedResponse = errors.New("malformed model response")

// DecodeStrict decodes content into target only when it is exactly one JSON
// value surrounded by optional whitespace. Code fences, leading prose and
// trailing text are all rejected so callers fall back instead of guessing.
func DecodeStrict(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("%w: empty payload", ErrMalformedResponse)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v (payload snippet: %s)", ErrMalformedResponse, err, snippet(trimmed))
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON value (payload snippet: %s)", ErrMalformedResponse, snippet(trimmed))
	}
	return nil
}

// GenerateJSON runs one generation under timeout and strictly decodes the
// result into T. A zero timeout leaves ctx unchanged.
func GenerateJSON[T any](ctx context.Context, gen TextGenerator, timeout time.Duration, prompt string) (T, error) {
	var out T
	if IsDisabled(gen) {
		return out, Disabled{}.unavailable()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	content, err := gen.Generate(ctx, prompt)
	if err != nil {
		return out, err
	}
	if err := DecodeStrict(content, &out); err != nil {
		return out, err
	}
	return out, nil
}

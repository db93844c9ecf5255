package testsupport

import (
	"context"
	"sync"
)

// StubGenerator is a scripted text generator. Responses are returned in
// order and the last one repeats. Respond, when set, takes precedence.
type StubGenerator struct {
	Responses []string
	Err       error
	Respond   func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// Generate records prompt and returns the next scripted response.
func (s *StubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	idx := len(s.prompts) - 1
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Respond != nil {
		return s.Respond(prompt)
	}
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	return s.Responses[idx], nil
}

// Prompts returns every prompt received so far.
func (s *StubGenerator) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Calls returns the number of Generate calls.
func (s *StubGenerator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

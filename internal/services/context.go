package services

import "context"

type contextKey string

const (
	evaluationIDKey contextKey = "evaluation_id"
	phaseKey        contextKey = "phase"
	requestIDKey    contextKey = "request_id"
)

// WithEvaluationID annotates context with the evaluation identifier.
func WithEvaluationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, evaluationIDKey, id)
}

// EvaluationIDFromContext extracts the evaluation identifier if present.
func EvaluationIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(evaluationIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPhase annotates context with the pipeline phase name.
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the phase name if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(phaseKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

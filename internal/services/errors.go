package services

import (
	"errors"
	"strings"

	"dealflow/internal/store"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrUnavailable   = errors.New("service unavailable")
)

// Error carries the phase context recorded by Wrap.
type Error struct {
	Marker    error
	Phase     string
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	b.WriteString(buildDetail(e.Phase, e.Operation, e.Message))
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Cause}
}

// Wrap builds an error message that includes phase context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &Error{
		Marker:    marker,
		Phase:     strings.TrimSpace(phase),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// ErrorDetails is the flattened view of a wrapped error used for persistence
// and display.
type ErrorDetails struct {
	Kind      string
	Phase     string
	Operation string
	Message   string
	Cause     string
}

// Details extracts the Wrap context from err. Errors that were never wrapped
// report their full text as the message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		return ErrorDetails{Kind: kindOf(err), Message: strings.TrimSpace(err.Error())}
	}
	details := ErrorDetails{
		Kind:      kindOf(svcErr.Marker),
		Phase:     svcErr.Phase,
		Operation: svcErr.Operation,
		Message:   svcErr.Message,
	}
	if svcErr.Cause != nil {
		details.Cause = strings.TrimSpace(svcErr.Cause.Error())
	}
	if details.Message == "" {
		details.Message = details.Cause
	}
	return details
}

// FailureStatus maps a phase error to the evaluation status persisted after
// the pipeline stops.
func FailureStatus(err error) store.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return store.StatusNeedsReview
	default:
		return store.StatusFailed
	}
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrExternalTool):
		return "external"
	default:
		return "transient"
	}
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase != "" {
		parts = append(parts, phase)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"dealflow/internal/services"
	"dealflow/internal/store"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extraction", "read document", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extraction", "read document", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestDetailsSurvivesOuterWrapping(t *testing.T) {
	inner := services.Wrap(services.ErrValidation, "mapping", "decode", "input rejected", errors.New("bad json"))
	outer := fmt.Errorf("evaluate: %w", inner)

	details := services.Details(outer)
	if details.Kind != "validation" {
		t.Fatalf("expected validation kind, got %q", details.Kind)
	}
	if details.Phase != "mapping" || details.Operation != "decode" {
		t.Fatalf("unexpected phase/op: %+v", details)
	}
	if details.Message != "input rejected" || details.Cause != "bad json" {
		t.Fatalf("unexpected message/cause: %+v", details)
	}

	plain := services.Details(errors.New("plain failure"))
	if plain.Message != "plain failure" || plain.Kind != "transient" {
		t.Fatalf("unexpected plain details: %+v", plain)
	}
}

func TestFailureStatusMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "extraction", "select source", "invalid", nil)
	if status := services.FailureStatus(validationErr); status != store.StatusNeedsReview {
		t.Fatalf("expected needs_review for validation error, got %s", status)
	}

	transientErr := services.Wrap(services.ErrTransient, "analysis", "score", "score failed", errors.New("io"))
	if status := services.FailureStatus(transientErr); status != store.StatusFailed {
		t.Fatalf("expected failed for transient error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != store.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}

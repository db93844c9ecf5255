package textutil

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Strong founder-market fit", []string{"strong", "founder", "market", "fit"}},
		{"ARR up 3x to $1.2M", []string{"arr"}},
		{"Series-A2 ready, 2024", []string{"series", "ready", "2024"}},
		{"a b c", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.input), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestNewFingerprint(t *testing.T) {
	if fp := NewFingerprint("an AI in Q3"); fp != nil {
		t.Fatalf("expected nil fingerprint for short tokens, got %v", fp)
	}
	fp := NewFingerprint("churn churn revenue")
	if diff := cmp.Diff(Fingerprint{"churn": 2, "revenue": 1}, fp); diff != "" {
		t.Fatalf("fingerprint mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(fp.norm()-math.Sqrt(5)) > 1e-9 {
		t.Fatalf("norm = %v, want sqrt(5)", fp.norm())
	}
}

func TestSimilarity(t *testing.T) {
	original := NewFingerprint("Strong founder-market fit in logistics software")
	reworded := NewFingerprint("strong founder market fit in logistics software")
	partial := NewFingerprint("Founder has deep logistics experience")
	unrelated := NewFingerprint("Customer acquisition cost is rising quickly")

	if got := Similarity(original, reworded); math.Abs(got-1) > 1e-9 {
		t.Errorf("reworded similarity = %v, want 1", got)
	}
	if got := Similarity(original, partial); got <= 0 || got >= 0.8 {
		t.Errorf("partial similarity = %v, want between 0 and 0.8", got)
	}
	if got := Similarity(original, unrelated); got != 0 {
		t.Errorf("unrelated similarity = %v, want 0", got)
	}
	if Similarity(original, partial) != Similarity(partial, original) {
		t.Error("similarity is not symmetric")
	}
	if got := Similarity(nil, original); got != 0 {
		t.Errorf("nil similarity = %v, want 0", got)
	}
}

func TestNearDuplicate(t *testing.T) {
	list := []string{"Revenue generating", "Strong founder-market fit"}
	tests := []struct {
		candidate string
		want      bool
	}{
		{"revenue generating", true},
		{"  Strong founder market fit ", true},
		{"Sticky customers", false},
		{"", false},
		{"ok", false},
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			if got := NearDuplicate(list, tt.candidate, 0.8); got != tt.want {
				t.Fatalf("NearDuplicate(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"Acme Robotics":    "acme_robotics",
		"  ":               "unknown",
		"Tailspin/Freight": "tailspin_freight",
		"???":              "unknown",
		"R2-D2_Labs":       "r2-d2_labs",
		"Café Labs":        "caf__labs",
	}
	for in, want := range tests {
		if got := SanitizeToken(in); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

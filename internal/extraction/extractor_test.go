package extraction_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"dealflow/internal/extraction"
	"dealflow/internal/services"
	"dealflow/internal/services/llm"
	"dealflow/internal/testsupport"
)

func TestInputSourcePriority(t *testing.T) {
	tests := []struct {
		in   extraction.Input
		want extraction.Source
	}{
		{extraction.Input{FilePath: "deck.json", VideoURL: "https://v", Form: map[string]any{"a": 1}}, extraction.SourceFile},
		{extraction.Input{VideoURL: "https://v", Form: map[string]any{"a": 1}}, extraction.SourceVideo},
		{extraction.Input{FilePath: "  ", Form: map[string]any{"a": 1}}, extraction.SourceForm},
		{extraction.Input{}, extraction.SourceForm},
	}
	for _, tt := range tests {
		if got := tt.in.Source(); got != tt.want {
			t.Fatalf("Source(%+v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFromFileStructuredDocuments(t *testing.T) {
	dir := t.TempDir()
	jsonPath := testsupport.WriteJSON(t, filepath.Join(dir, "pitch.json"), testsupport.DetailedPitch())
	yamlPath := testsupport.WriteFile(t, filepath.Join(dir, "pitch.yaml"), `company_name: Acme Robotics
market_size: 12000000000
founders:
  - name: Ada Park
    experience_years: 11
`)

	ex := extraction.New(nil, time.Second, nil)
	for _, path := range []string{jsonPath, yamlPath} {
		out, err := ex.FromFile(context.Background(), path)
		if err != nil {
			t.Fatalf("FromFile(%s): %v", path, err)
		}
		if out.CompanyName.Or("") != "Acme Robotics" || out.MarketSize.Or(0) != 12e9 {
			t.Fatalf("%s: unexpected extraction %+v", path, out)
		}
		if len(out.Founders) == 0 || out.Founders[0].ExperienceYears.Or(0) != 11 {
			t.Fatalf("%s: unexpected founders %+v", path, out.Founders)
		}
	}
}

func TestFromFileErrors(t *testing.T) {
	dir := t.TempDir()
	ex := extraction.New(nil, time.Second, nil)

	tests := []struct {
		name   string
		path   string
		marker error
	}{
		{"missing", filepath.Join(dir, "missing.json"), services.ErrNotFound},
		{"pdf", testsupport.WriteFile(t, filepath.Join(dir, "deck.pdf"), "%PDF-1.7"), services.ErrValidation},
		{"unknown", testsupport.WriteFile(t, filepath.Join(dir, "deck.key"), "data"), services.ErrValidation},
		{"json array", testsupport.WriteFile(t, filepath.Join(dir, "list.json"), "[1,2]"), services.ErrValidation},
		{"text without model", testsupport.WriteFile(t, filepath.Join(dir, "pitch.md"), "# Acme"), services.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ex.FromFile(context.Background(), tt.path)
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
		})
	}
}

func TestFromFileTextUsesModel(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "pitch.txt"), "Acme builds warehouse robots.")
	gen := &testsupport.StubGenerator{Responses: []string{`{"company_name":"Acme","revenue":"$1,000"}`}}
	out, err := extraction.New(gen, time.Second, nil).FromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if out.CompanyName.Or("") != "Acme" || out.Revenue.Or(0) != 1000 {
		t.Fatalf("unexpected extraction %+v", out)
	}
	if !strings.Contains(gen.Prompts()[0], "warehouse robots") {
		t.Fatalf("document text missing from prompt")
	}
}

func TestFromFileTextTruncatesOnRuneBoundary(t *testing.T) {
	// 48 KiB minus one ASCII byte puts the limit inside the two-byte é.
	body := strings.Repeat("a", 48*1024-1) + "é tail"
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "pitch.md"), body)
	gen := &testsupport.StubGenerator{Responses: []string{`{"company_name":"Acme"}`}}
	if _, err := extraction.New(gen, time.Second, nil).FromFile(context.Background(), path); err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	prompt := gen.Prompts()[0]
	if !utf8.ValidString(prompt) {
		t.Fatal("prompt is not valid UTF-8")
	}
	if strings.Contains(prompt, "tail") {
		t.Fatal("expected text past the limit to be dropped")
	}
}

func TestFromVideo(t *testing.T) {
	ex := extraction.New(llm.Disabled{}, time.Second, nil)
	if _, err := ex.FromVideo(context.Background(), "not a url"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := ex.FromVideo(context.Background(), "https://video.example.com/pitch"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	gen := &testsupport.StubGenerator{Responses: []string{"Sure! Here is the data"}}
	_, err := extraction.New(gen, time.Second, nil).FromVideo(context.Background(), "https://video.example.com/pitch")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool for prose, got %v", err)
	}
}

func TestExtractForm(t *testing.T) {
	out, source, err := extraction.Extract(context.Background(), extraction.New(nil, time.Second, nil), extraction.Input{Form: testsupport.ScenarioB()})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if source != extraction.SourceForm || out.CompetitionLevel.Or("") != "high" {
		t.Fatalf("unexpected extraction %s %+v", source, out)
	}
}

package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dealflow/internal/config"
	"dealflow/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLLM(t *testing.T) {
	if r := CheckLLM(context.Background(), "LLM", config.LLMConfig{Enabled: false}); !r.Passed {
		t.Fatalf("disabled LLM should pass, got %+v", r)
	}
	r := CheckLLM(context.Background(), "LLM", config.LLMConfig{Enabled: true})
	if r.Passed || !r.Optional || r.Failed() {
		t.Fatalf("missing key should be an optional failure, got %+v", r)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()
	r = CheckLLM(context.Background(), "LLM", config.LLMConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL, Model: "m"})
	if !r.Passed {
		t.Fatalf("expected reachable LLM, got %+v", r)
	}
}

func TestCheckPublicData(t *testing.T) {
	ctx := context.Background()
	if r := CheckPublicData(ctx, config.PublicData{Mode: config.PublicDataSynthetic}); !r.Passed {
		t.Fatalf("synthetic should pass, got %+v", r)
	}
	if r := CheckPublicData(ctx, config.PublicData{Mode: config.PublicDataHTTP}); r.Passed {
		t.Fatal("http mode without url should fail")
	}

	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer unauthorized.Close()
	if r := CheckPublicData(ctx, config.PublicData{Mode: config.PublicDataHTTP, BaseURL: unauthorized.URL}); r.Passed {
		t.Fatalf("expected auth failure, got %+v", r)
	}

	notAllowed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer notAllowed.Close()
	if r := CheckPublicData(ctx, config.PublicData{Mode: config.PublicDataHTTP, BaseURL: notAllowed.URL, APIKey: "secret"}); !r.Passed {
		t.Fatalf("expected reachable endpoint, got %+v", r)
	}
}

func TestCheckNotifications(t *testing.T) {
	if r := CheckNotifications(config.Notifications{}); !r.Passed {
		t.Fatalf("unset topic should pass, got %+v", r)
	}
	if r := CheckNotifications(config.Notifications{NtfyTopic: "dealflow"}); r.Passed {
		t.Fatal("bare topic name should fail")
	}
	if r := CheckNotifications(config.Notifications{NtfyTopic: "https://ntfy.sh/dealflow"}); !r.Passed {
		t.Fatalf("full topic url should pass, got %+v", r)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_TestConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunAll(context.Background(), cfg)
	want := []string{"Data directory", "Log directory", "Deal note directory", "Evaluation store", "LLM", "Public data", "Notifications"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, r := range results {
		if r.Name != want[i] {
			t.Fatalf("result %d: expected %q, got %q", i, want[i], r.Name)
		}
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if AnyFailed(results) {
		t.Fatal("expected no required failures")
	}
}

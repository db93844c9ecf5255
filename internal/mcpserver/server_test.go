package mcpserver_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"dealflow/internal/mcpserver"
	"dealflow/internal/pipeline"
	"dealflow/internal/scoring"
	"dealflow/internal/store"
	"dealflow/internal/testsupport"
)

type fixture struct {
	session *sdkmcp.ClientSession
	store   *store.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	runner := pipeline.New(cfg, nil)
	recorder := pipeline.NewRecorder(st, cfg, nil, nil)
	srv := mcpserver.New(runner, recorder, st, cfg.Preferences(), nil)

	t1, t2 := sdkmcp.NewInMemoryTransports()
	if _, err := srv.MCPServer.Connect(ctx, t1, nil); err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return fixture{session: session, store: st}
}

func callText(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text, res.IsError
		}
	}
	t.Fatalf("no text content in %s result", name)
	return "", false
}

func callJSON(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	text, isError := callText(t, session, name, args)
	if isError {
		t.Fatalf("CallTool(%s) returned error: %s", name, text)
	}
	out := make(map[string]any)
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal %s result: %v (text: %s)", name, err, text)
	}
	return out
}

func TestListTools(t *testing.T) {
	f := newFixture(t)
	res, err := f.session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"evaluate_startup", "list_evaluations", "get_deal_note", "score_metrics"} {
		if !names[want] {
			t.Fatalf("tool %s not registered (have %v)", want, names)
		}
	}
}

func TestEvaluateListAndDealNote(t *testing.T) {
	f := newFixture(t)

	out := callJSON(t, f.session, "evaluate_startup", map[string]any{"form": testsupport.ScenarioA()})
	result, _ := out["result"].(map[string]any)
	if result["success"] != true || out["saved"] != true || out["status"] != string(store.StatusCompleted) {
		t.Fatalf("unexpected evaluate output %v", out)
	}
	id, _ := result["evaluation_id"].(string)
	if id == "" {
		t.Fatal("expected evaluation id")
	}
	memo, _ := result["memo"].(map[string]any)
	if rec, _ := memo["recommendation"].(string); !strings.HasPrefix(rec, "BUY") {
		t.Fatalf("expected BUY recommendation, got %q", rec)
	}

	listed := callJSON(t, f.session, "list_evaluations", map[string]any{"status": "completed"})
	if listed["count"] != float64(1) {
		t.Fatalf("expected one evaluation, got %v", listed)
	}

	note, isError := callText(t, f.session, "get_deal_note", map[string]any{"id": id[:8]})
	if isError {
		t.Fatalf("get_deal_note returned error: %s", note)
	}
	if !strings.Contains(note, "# Deal Note:") {
		t.Fatalf("unexpected deal note %q", note)
	}
}

func TestEvaluateNoSave(t *testing.T) {
	f := newFixture(t)

	out := callJSON(t, f.session, "evaluate_startup", map[string]any{"form": testsupport.ScenarioB(), "no_save": true})
	if out["saved"] != false {
		t.Fatalf("expected unsaved evaluation, got %v", out["saved"])
	}
	evaluations, err := f.store.List(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(evaluations) != 0 {
		t.Fatalf("expected empty store, got %d", len(evaluations))
	}
}

func TestToolErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"evaluate without input", "evaluate_startup", map[string]any{}, "is required"},
		{"unknown status", "list_evaluations", map[string]any{"status": "pending"}, "Unknown status"},
		{"missing evaluation", "get_deal_note", map[string]any{"id": "deadbeef"}, "not found"},
		{"empty metrics", "score_metrics", map[string]any{"metrics": map[string]any{}}, "at least one"},
		{"negative weight", "score_metrics", map[string]any{"metrics": map[string]any{"revenue": 1000}, "market_weight": -1}, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := callText(t, f.session, tt.tool, tt.args)
			if !isError {
				t.Fatalf("expected error result, got %s", text)
			}
			if !strings.Contains(text, tt.want) {
				t.Fatalf("error %q does not contain %q", text, tt.want)
			}
		})
	}
}

func TestScoreMetricsMatchesCombiner(t *testing.T) {
	f := newFixture(t)
	metrics := scoring.Metrics{
		scoring.MetricFounderFit:      8,
		scoring.MetricExperienceYears: 12,
		scoring.MetricMarketSize:      5e9,
		scoring.MetricMarketGrowth:    0.25,
		scoring.MetricRevenue:         1.2e6,
		scoring.MetricLTV:             9000,
		scoring.MetricCAC:             1500,
	}
	args := map[string]any{"metrics": map[string]any{}, "traction_weight": 0.5}
	for k, v := range metrics {
		args["metrics"].(map[string]any)[k] = v
	}

	out := callJSON(t, f.session, "score_metrics", args)

	prefs := testsupport.NewConfig(t).Preferences()
	prefs.TractionWeight = 0.5
	want := scoring.Combine(metrics, prefs)
	result, _ := out["result"].(map[string]any)
	if result["overall_score"] != want.Overall {
		t.Fatalf("overall = %v, want %v", result["overall_score"], want.Overall)
	}
	alignment, _ := out["investor_alignment"].(map[string]any)
	areas, _ := alignment["investor_focus_areas"].([]any)
	if len(areas) != 1 || areas[0] != "traction" {
		t.Fatalf("expected traction focus, got %v", alignment)
	}
	if out["completeness"] != scoring.Completeness(metrics) {
		t.Fatalf("completeness = %v, want %v", out["completeness"], scoring.Completeness(metrics))
	}
}

package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dealflow/internal/store"
	"dealflow/internal/testsupport"
)

func TestSaveAssignsIDAndGetRoundTrips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ev := &store.Evaluation{
		Company:        "Acme Robotics",
		Source:         "file",
		Status:         store.StatusCompleted,
		Score:          7.27,
		Recommendation: "BUY",
		RiskLevel:      "low",
		DealNote:       "# Acme Robotics",
	}
	if err := st.Save(ctx, ev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ev.ID == "" {
		t.Fatal("expected Save to assign an id")
	}
	if ev.CreatedAt.IsZero() || ev.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := st.Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected evaluation to be found")
	}
	if got.Company != "Acme Robotics" || got.Score != 7.27 || got.Recommendation != "BUY" || got.DealNote != "# Acme Robotics" {
		t.Fatalf("unexpected evaluation %+v", got)
	}
	if got.Error != "" || got.MemoJSON != "" {
		t.Fatalf("expected empty optional fields, got %+v", got)
	}
}

func TestSaveUpdatesExistingRowAndKeepsCreatedAt(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := &store.Evaluation{ID: "fixed-id", Company: "Acme", Source: "form", CreatedAt: created}
	if err := st.Save(ctx, ev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ev.Status = store.StatusNeedsReview
	ev.Error = "public data lookup timed out"
	if err := st.Save(ctx, ev); err != nil {
		t.Fatalf("Save update: %v", err)
	}

	got, err := st.Get(ctx, "fixed-id")
	if err != nil || got == nil {
		t.Fatalf("Get: %v (found=%v)", err, got != nil)
	}
	if got.Status != store.StatusNeedsReview || got.Error != "public data lookup timed out" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed: %v", got.CreatedAt)
	}
}

func TestSaveDefaultsStatusToCompleted(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ev := &store.Evaluation{Company: "Acme", Source: "form"}
	if err := st.Save(context.Background(), ev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ev.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %q", ev.Status)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	got, err := st.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []store.Evaluation{
		{ID: "a", Company: "Alpha", Source: "file", Status: store.StatusCompleted, CreatedAt: base},
		{ID: "b", Company: "Beta", Source: "file", Status: store.StatusFailed, CreatedAt: base.Add(time.Hour)},
		{ID: "c", Company: "Gamma", Source: "form", Status: store.StatusCompleted, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		if err := st.Save(ctx, &seed[i]); err != nil {
			t.Fatalf("Save %s: %v", seed[i].ID, err)
		}
	}

	all, err := st.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("expected newest first, got %v", ids(all))
	}

	completed, err := st.List(ctx, store.ListOptions{Status: store.StatusCompleted, Limit: 1})
	if err != nil {
		t.Fatalf("List completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "c" {
		t.Fatalf("unexpected filtered list %v", ids(completed))
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[store.StatusCompleted] != 2 || stats[store.StatusFailed] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestResolveByPrefix(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, id := range []string{"abc123", "abd456"} {
		if err := st.Save(ctx, &store.Evaluation{ID: id, Company: id, Source: "form"}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := st.Resolve(ctx, "abc")
	if err != nil || got == nil || got.ID != "abc123" {
		t.Fatalf("Resolve(abc) = %v, %v", got, err)
	}
	if _, err := st.Resolve(ctx, "ab"); !errors.Is(err, store.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
	if got, err := st.Resolve(ctx, "zz"); err != nil || got != nil {
		t.Fatalf("expected no match, got %v, %v", got, err)
	}
	if got, err := st.Resolve(ctx, "a_c"); err != nil || got != nil {
		t.Fatalf("expected wildcard to be escaped, got %v, %v", got, err)
	}
}

func TestDelete(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	ev := &store.Evaluation{Company: "Acme", Source: "form"}
	if err := st.Save(ctx, ev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	removed, err := st.Delete(ctx, ev.ID)
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v", removed, err)
	}
	removed, err = st.Delete(ctx, ev.ID)
	if err != nil || removed {
		t.Fatalf("second Delete = %v, %v", removed, err)
	}
}

func TestCheckHealth(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	if err := st.Save(ctx, &store.Evaluation{Company: "Acme", Source: "form"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	health, err := st.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("unexpected health %+v", health)
	}
	if health.SchemaVersion != 1 || health.TotalEvaluations != 1 || len(health.MissingColumns) != 0 {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evaluations.db")
	st, err := store.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and bump the recorded version behind the store's back.
	st, err = store.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := st.ForceSchemaVersion(context.Background(), 99); err != nil {
		t.Fatalf("ForceSchemaVersion: %v", err)
	}
	_ = st.Close()

	if _, err := store.OpenPath(path); !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database should remain on disk: %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]store.Status{
		"completed":    store.StatusCompleted,
		" FAILED ":     store.StatusFailed,
		"needs-review": store.StatusNeedsReview,
		"review":       store.StatusNeedsReview,
	}
	for input, want := range tests {
		got, ok := store.ParseStatus(input)
		if !ok || got != want {
			t.Fatalf("ParseStatus(%q) = %q, %v", input, got, ok)
		}
	}
	if _, ok := store.ParseStatus("pending"); ok {
		t.Fatal("expected pending to be rejected")
	}
}

func ids(evs []*store.Evaluation) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.ID)
	}
	return out
}

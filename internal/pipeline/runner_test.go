package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dealflow/internal/extraction"
	"dealflow/internal/interview"
	"dealflow/internal/pipeline"
	"dealflow/internal/services"
	"dealflow/internal/services/publicdata"
	"dealflow/internal/startup"
	"dealflow/internal/store"
	"dealflow/internal/testsupport"
	"dealflow/internal/verification"
)

type panickySource struct {
	company string
}

func (s panickySource) Lookup(ctx context.Context, company string, founders []string) (map[string]any, error) {
	if company == s.company {
		panic("lookup exploded")
	}
	return publicdata.Synthetic{}.Lookup(ctx, company, founders)
}

type failingSource struct{}

func (failingSource) Lookup(context.Context, string, []string) (map[string]any, error) {
	return nil, services.Wrap(services.ErrTimeout, "public_data", "lookup", "upstream timed out", nil)
}

type stubInterviewer struct {
	agendas [][]string
}

func (s *stubInterviewer) Conduct(_ context.Context, _ startup.Profile, agenda []string) (interview.Analysis, error) {
	s.agendas = append(s.agendas, agenda)
	return interview.Analysis{
		FounderCredibility:  interview.Assessment{Score: 8, Notes: []string{"clear answers"}},
		MarketUnderstanding: interview.Assessment{Score: 7},
		ExecutionCapability: interview.Assessment{Score: 7},
	}, nil
}

func newRunner(t *testing.T, opts ...pipeline.Option) *pipeline.Runner {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return pipeline.New(cfg, nil, opts...)
}

func TestEvaluateScenarioABuys(t *testing.T) {
	runner := newRunner(t)

	res := runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.ScenarioA()})
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Memo == nil {
		t.Fatal("expected memo")
	}
	if res.Memo.InvestmentScore < 7.0 {
		t.Fatalf("expected score >= 7, got %.2f", res.Memo.InvestmentScore)
	}
	if !strings.Contains(res.Memo.Recommendation, "BUY") {
		t.Fatalf("expected BUY recommendation, got %q", res.Memo.Recommendation)
	}
	if res.Status() != store.StatusCompleted {
		t.Fatalf("expected completed status, got %q", res.Status())
	}

	want := []string{
		pipeline.PhaseExtraction,
		pipeline.PhasePublicData,
		pipeline.PhaseAnalysis,
		pipeline.PhaseInterview,
		pipeline.PhaseRefinement,
	}
	if diff := cmp.Diff(want, res.AgentsExecuted); diff != "" {
		t.Fatalf("agents executed mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.DealNote, "7.") || !strings.Contains(res.DealNote, res.Memo.Profile.CompanyName) {
		t.Fatalf("deal note missing score or company:\n%s", res.DealNote)
	}
}

func TestEvaluateInterviewFailureIsOptional(t *testing.T) {
	runner := newRunner(t)

	res := runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.ScenarioA()})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	phase, ok := res.Phase(pipeline.PhaseInterview)
	if !ok {
		t.Fatal("expected interview phase to be recorded")
	}
	if phase.Success || !phase.Optional || phase.Error == "" {
		t.Fatalf("expected optional interview failure, got %+v", phase)
	}
	if res.State.Interview != nil {
		t.Fatal("expected empty interview data after failure")
	}
	if res.State.Refinement == nil {
		t.Fatal("expected refinement to run after optional failure")
	}
}

func TestEvaluateScenarioBHoldsOrPasses(t *testing.T) {
	runner := newRunner(t)

	res := runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.ScenarioB()})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if res.Memo.InvestmentScore > 5.0 {
		t.Fatalf("expected score <= 5, got %.2f", res.Memo.InvestmentScore)
	}
	rec := res.Memo.Recommendation
	if !strings.HasPrefix(rec, "HOLD") && !strings.HasPrefix(rec, "PASS") {
		t.Fatalf("expected HOLD or PASS, got %q", rec)
	}
}

func TestEvaluateScenarioCUsesDefaults(t *testing.T) {
	runner := newRunner(t)

	res := runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.ScenarioC()})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	profile := res.Memo.Profile
	if profile.CompanyName != "Unknown Company" || profile.FundingStage != "Seed" || len(profile.Founders) != 1 {
		t.Fatalf("unexpected default profile %+v", profile)
	}
	if res.Company != "Unknown Company" {
		t.Fatalf("unexpected result company %q", res.Company)
	}
}

func TestEvaluateExtractionFailureStops(t *testing.T) {
	runner := newRunner(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	res := runner.Evaluate(context.Background(), extraction.Input{FilePath: missing})
	if res.Success {
		t.Fatal("expected failure")
	}
	if diff := cmp.Diff([]string{pipeline.PhaseExtraction}, res.AgentsExecuted); diff != "" {
		t.Fatalf("agents executed mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(res.Err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", res.Err)
	}
	if res.Status() != store.StatusNeedsReview {
		t.Fatalf("expected needs_review, got %q", res.Status())
	}
	if len(res.Partial) != 0 || res.Memo != nil {
		t.Fatalf("expected no partial results, got %v", res.Partial)
	}
}

func TestEvaluateRecoversPhasePanic(t *testing.T) {
	runner := newRunner(t, pipeline.WithPublicData(panickySource{company: "Acme Robotics"}))

	var res pipeline.Result
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				t.Fatalf("panic escaped Evaluate: %v", rec)
			}
		}()
		res = runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.DetailedPitch()})
	}()

	if res.Success {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Err, pipeline.ErrPanic) {
		t.Fatalf("expected ErrPanic, got %v", res.Err)
	}
	if res.Status() != store.StatusFailed {
		t.Fatalf("expected failed status, got %q", res.Status())
	}
	if _, ok := res.Partial[pipeline.PhaseExtraction]; !ok {
		t.Fatalf("expected extraction output in partial results, got %v", res.Partial)
	}
	if _, ok := res.Partial[pipeline.PhasePublicData]; ok {
		t.Fatal("failed phase must not appear in partial results")
	}
	if res.Company != "Acme Robotics" {
		t.Fatalf("expected company from extraction, got %q", res.Company)
	}
}

func TestEvaluateLookupFailureContinuesWithEmptyPayload(t *testing.T) {
	runner := newRunner(t, pipeline.WithPublicData(failingSource{}))

	res := runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.DetailedPitch()})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	pd := res.State.PublicData
	if pd == nil || !pd.LookupFailed || len(pd.PublicData) != 0 {
		t.Fatalf("expected failed lookup with empty payload, got %+v", pd)
	}
	if pd.Verification.CompetitionAccuracy != verification.AccuracyUnknown {
		t.Fatalf("expected unknown competition accuracy, got %q", pd.Verification.CompetitionAccuracy)
	}
}

func TestEvaluateWithInterviewer(t *testing.T) {
	interviewer := &stubInterviewer{}
	runner := newRunner(t, pipeline.WithInterviewer(interviewer))

	res := runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.DetailedPitch()})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if len(interviewer.agendas) != 1 || len(interviewer.agendas[0]) == 0 {
		t.Fatalf("expected one conducted interview with agenda, got %v", interviewer.agendas)
	}
	if res.State.Interview == nil || res.State.Interview.Analysis == nil {
		t.Fatal("expected interview output")
	}
	if res.State.Interview.Schedule.MeetingLink == "" {
		t.Fatal("expected meeting link")
	}
	changes := res.State.Refinement.Refinement.Report.Changes
	if !containsString(changes, "Incorporated interview insights") {
		t.Fatalf("expected interview change in report, got %v", changes)
	}
}

func TestSkipInterviewRemovesPhase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.SkipInterview = true
	runner := pipeline.New(cfg, nil)

	want := []string{pipeline.PhaseExtraction, pipeline.PhasePublicData, pipeline.PhaseAnalysis, pipeline.PhaseRefinement}
	if diff := cmp.Diff(want, runner.PhaseNames()); diff != "" {
		t.Fatalf("phase names mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalysisUsesClockAndPreferences(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	prefs := startup.InvestorPreferences{FounderWeight: 1, MarketWeight: 0, DifferentiationWeight: 0, TractionWeight: 0}
	runner := newRunner(t, pipeline.WithClock(func() time.Time { return fixed }), pipeline.WithPreferences(prefs))

	res := runner.Evaluate(context.Background(), extraction.Input{Form: testsupport.ScenarioA()})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	analysisMemo := res.State.Analysis.Memo
	if !analysisMemo.GeneratedAt.Equal(fixed) {
		t.Fatalf("expected analysis memo at %v, got %v", fixed, analysisMemo.GeneratedAt)
	}
	if len(res.State.Analysis.Analysis.Alignment.FocusAreas) != 1 {
		t.Fatalf("expected a single focus area, got %v", res.State.Analysis.Analysis.Alignment.FocusAreas)
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

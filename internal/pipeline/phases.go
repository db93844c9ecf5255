package pipeline

import (
	"context"
	"log/slog"
	"time"

	"dealflow/internal/extraction"
	"dealflow/internal/interview"
	"dealflow/internal/logging"
	"dealflow/internal/mapping"
	"dealflow/internal/memo"
	"dealflow/internal/scoring"
	"dealflow/internal/services"
	"dealflow/internal/services/publicdata"
	"dealflow/internal/verification"
)

// Phase is one step of an evaluation.
type Phase interface {
	Name() string
	// Optional phases log their failure and let the run continue.
	Optional() bool
	Run(ctx context.Context, st State) (Output, error)
}

type extractionPhase struct {
	extractor extraction.Extractor
}

func (extractionPhase) Name() string   { return PhaseExtraction }
func (extractionPhase) Optional() bool { return false }

func (p extractionPhase) Run(ctx context.Context, st State) (Output, error) {
	extracted, source, err := extraction.Extract(ctx, p.extractor, st.Input)
	if err != nil {
		return nil, err
	}
	return &ExtractionOutput{Source: source, Label: st.Input.Label(), Extracted: extracted}, nil
}

type publicDataPhase struct {
	source     publicdata.Source
	mapper     *mapping.Mapper
	comparator *verification.Comparator
	logger     *slog.Logger
}

func (publicDataPhase) Name() string   { return PhasePublicData }
func (publicDataPhase) Optional() bool { return false }

func (p publicDataPhase) Run(ctx context.Context, st State) (Output, error) {
	if st.Extraction == nil {
		return nil, services.Wrap(services.ErrValidation, PhasePublicData, "map profile", "extraction output missing", nil)
	}
	profile := p.mapper.Map(ctx, st.Extraction.Extracted)

	out := &PublicDataOutput{Profile: profile}
	payload, err := p.source.Lookup(ctx, profile.CompanyName, profile.FounderNames())
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "public data lookup failed", "public_data_unavailable",
			logging.String("company", profile.CompanyName),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check public_data settings or run dealflow doctor"),
			logging.String(logging.FieldImpact, "verification compared pitch claims against an empty payload"),
		)
		out.LookupFailed = true
	}
	if payload == nil || err != nil {
		payload = map[string]any{}
	}
	out.PublicData = payload
	out.Verification = p.comparator.Verify(ctx, profile, payload)
	out.Summary = verification.Summarize(profile, payload, out.Verification)
	out.Draft = memo.BuildDraft(profile, payload, out.Verification)
	return out, nil
}

type analysisPhase struct {
	estimator scoring.Estimator
	now       func() time.Time
}

func (analysisPhase) Name() string   { return PhaseAnalysis }
func (analysisPhase) Optional() bool { return false }

func (p analysisPhase) Run(ctx context.Context, st State) (Output, error) {
	if st.PublicData == nil {
		return nil, services.Wrap(services.ErrValidation, PhaseAnalysis, "score profile", "mapped profile missing", nil)
	}
	pd := st.PublicData
	result, metrics := scoring.ScoreProfile(ctx, p.estimator, pd.Profile, st.Preferences)
	flags := memo.VerificationFlags(pd.Summary, pd.Verification)
	return &AnalysisOutput{
		Memo:     memo.Assemble(pd.Profile, result, flags, p.now()),
		Metrics:  metrics,
		Analysis: scoring.Analyze(result, metrics, st.Preferences, pd.Verification.Signals()),
	}, nil
}

type interviewPhase struct {
	scheduler   *interview.Scheduler
	interviewer interview.Interviewer
}

func (interviewPhase) Name() string   { return PhaseInterview }
func (interviewPhase) Optional() bool { return true }

func (p interviewPhase) Run(ctx context.Context, st State) (Output, error) {
	if st.Analysis == nil {
		return nil, services.Wrap(services.ErrValidation, PhaseInterview, "schedule", "analysis memo missing", nil)
	}
	profile := st.Analysis.Memo.Profile
	schedule := p.scheduler.Schedule(profile, st.Analysis.Memo.InvestmentScore)
	analysis, err := p.interviewer.Conduct(ctx, profile, schedule.Agenda)
	if err != nil {
		return nil, err
	}
	return &InterviewOutput{Schedule: schedule, Analysis: &analysis}, nil
}

type refinementPhase struct {
	refiner *memo.Refiner
}

func (refinementPhase) Name() string   { return PhaseRefinement }
func (refinementPhase) Optional() bool { return true }

func (p refinementPhase) Run(ctx context.Context, st State) (Output, error) {
	if st.Analysis == nil || st.PublicData == nil {
		return nil, services.Wrap(services.ErrValidation, PhaseRefinement, "refine", "analysis memo missing", nil)
	}
	evidence := memo.Evidence{PublicData: st.PublicData.PublicData}
	if st.Interview != nil {
		evidence.Interview = st.Interview.Analysis
	}
	refinement := p.refiner.Refine(ctx, st.Analysis.Memo, evidence)
	return &RefinementOutput{Refinement: refinement, DealNote: memo.DealNote(refinement.Memo)}, nil
}

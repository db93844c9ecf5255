package pipeline

import (
	"dealflow/internal/extraction"
	"dealflow/internal/interview"
	"dealflow/internal/memo"
	"dealflow/internal/scoring"
	"dealflow/internal/startup"
	"dealflow/internal/verification"
)

// Phase names, in execution order.
const (
	PhaseExtraction = "extraction"
	PhasePublicData = "public_data_mapping"
	PhaseAnalysis   = "analysis"
	PhaseInterview  = "interview"
	PhaseRefinement = "refinement"
)

// State is the record threaded between phases. Phases receive it by value
// and must treat the outputs it points at as read-only.
type State struct {
	EvaluationID string
	Input        extraction.Input
	Preferences  startup.InvestorPreferences

	Extraction *ExtractionOutput
	PublicData *PublicDataOutput
	Analysis   *AnalysisOutput
	Interview  *InterviewOutput
	Refinement *RefinementOutput
}

// Output is what one phase contributes to State.
type Output interface {
	apply(State) State
}

// ExtractionOutput is the typed submission read from the chosen source.
type ExtractionOutput struct {
	Source    extraction.Source `json:"source"`
	Label     string            `json:"label"`
	Extracted startup.Extracted `json:"extracted"`
}

func (o *ExtractionOutput) apply(s State) State { s.Extraction = o; return s }

// PublicDataOutput holds the mapped profile and everything learned from
// public data before scoring.
type PublicDataOutput struct {
	PublicData   map[string]any       `json:"public_data"`
	LookupFailed bool                 `json:"lookup_failed,omitempty"`
	Profile      startup.Profile      `json:"startup_profile"`
	Verification verification.Result  `json:"verification"`
	Summary      verification.Summary `json:"comparison_summary"`
	Draft        memo.Draft           `json:"draft_memo"`
}

func (o *PublicDataOutput) apply(s State) State { s.PublicData = o; return s }

// AnalysisOutput is the canonical memo with its scoring detail.
type AnalysisOutput struct {
	Memo     startup.Memo     `json:"memo"`
	Metrics  scoring.Metrics  `json:"metrics"`
	Analysis scoring.Analysis `json:"analysis"`
}

func (o *AnalysisOutput) apply(s State) State { s.Analysis = o; return s }

// InterviewOutput is the proposed interview and, when conducted, its analysis.
type InterviewOutput struct {
	Schedule interview.Schedule  `json:"schedule"`
	Analysis *interview.Analysis `json:"analysis,omitempty"`
}

func (o *InterviewOutput) apply(s State) State { s.Interview = o; return s }

// RefinementOutput is the refined memo and its deal note.
type RefinementOutput struct {
	Refinement memo.Refinement `json:"refinement"`
	DealNote   string          `json:"deal_note"`
}

func (o *RefinementOutput) apply(s State) State { s.Refinement = o; return s }

// FinalMemo returns the refined memo when refinement ran, otherwise the
// analysis memo.
func (s State) FinalMemo() (startup.Memo, bool) {
	switch {
	case s.Refinement != nil:
		return s.Refinement.Refinement.Memo, true
	case s.Analysis != nil:
		return s.Analysis.Memo, true
	default:
		return startup.Memo{}, false
	}
}

// CompanyName returns the best known company name.
func (s State) CompanyName() string {
	switch {
	case s.PublicData != nil:
		return s.PublicData.Profile.CompanyName
	case s.Extraction != nil:
		if name := s.Extraction.Extracted.CompanyName; name.Set {
			return name.Value
		}
	}
	return ""
}

func (s State) payload(phase string) any {
	switch phase {
	case PhaseExtraction:
		return s.Extraction
	case PhasePublicData:
		return s.PublicData
	case PhaseAnalysis:
		return s.Analysis
	case PhaseInterview:
		return s.Interview
	case PhaseRefinement:
		return s.Refinement
	default:
		return nil
	}
}

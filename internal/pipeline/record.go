package pipeline

import (
	"encoding/json"
	"fmt"

	"dealflow/internal/store"
)

// Record converts the result into a persisted evaluation row.
func (r Result) Record() (*store.Evaluation, error) {
	resultJSON, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	ev := &store.Evaluation{
		ID:         r.EvaluationID,
		Company:    r.Company,
		Source:     string(r.Source),
		Status:     r.Status(),
		Error:      r.Error,
		DealNote:   r.DealNote,
		ResultJSON: string(resultJSON),
	}
	if ev.Company == "" {
		ev.Company = "Unknown Company"
	}
	if r.Memo != nil {
		memoJSON, err := json.Marshal(r.Memo)
		if err != nil {
			return nil, fmt.Errorf("encode memo: %w", err)
		}
		ev.MemoJSON = string(memoJSON)
		ev.Score = r.Memo.InvestmentScore
		ev.Recommendation = r.Memo.Recommendation
		ev.RiskLevel = string(r.Memo.Risk.Level)
	}
	return ev, nil
}

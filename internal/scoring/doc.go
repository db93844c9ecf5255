// Package scoring turns a startup profile into segment scores and an overall
// investment score.
//
// Combine is pure: it reads a Metrics map and the investor preferences and
// returns a Result with one SegmentScore per segment. Estimators supply the
// judgement-based inputs. Fallback is deterministic; AIEstimator asks the
// configured text generator first and falls back per call. Analyze derives
// confidence, risk flags, the curation decision, whether an interview is
// warranted and investor alignment from a combined result.
package scoring

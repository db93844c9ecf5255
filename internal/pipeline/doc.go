// Package pipeline runs a single evaluation through its phases.
//
// Phases run strictly in order: extraction, public data and mapping,
// analysis, interview, refinement. Each phase receives a copy of the State
// built from earlier outputs and returns its own Output; the Runner records
// that output once and hands the next phase a new State. A returned error or
// a recovered panic becomes a failed PhaseResult at the phase boundary. A
// required phase failure stops the run and returns everything that completed
// in Result.Partial. Optional phases (interview, refinement) log and continue.
//
// EvaluateBatch is a sequential loop over Evaluate with per-item isolation.
package pipeline

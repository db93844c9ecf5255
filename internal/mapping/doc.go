// Package mapping turns loosely typed extracted pitch data into a complete
// startup.Profile.
//
// Mapping never fails. Every absent field resolves to a documented default,
// a submission without founders receives a single placeholder founder, and
// founder-market fit comes from the injected scoring.Estimator so the result
// is deterministic whenever text generation is disabled.
package mapping

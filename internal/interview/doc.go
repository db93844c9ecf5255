// Package interview schedules founder interviews and conducts them through
// the text generator.
//
// Scheduler proposes slots on the next business days, builds a meeting link
// and derives the agenda from the startup profile. Interviewer produces the
// structured analysis the refinement phase consumes. When generation is
// disabled the interviewer reports services.ErrUnavailable, which the
// pipeline treats as an optional failure.
package interview

// Package verification compares pitch claims against public data.
//
// Comparator.Verify asks the text generator for a categorical verdict and
// falls back to deterministic rules whenever generation is disabled, fails or
// returns something other than a single well-formed JSON object. The result
// always carries a per-claim breakdown produced by the rules, so callers see
// why a confidence score was reached even when the model supplied it.
//
// Summarize builds the pitch-versus-public comparison that later phases use
// to decide which verification concerns reach the memo.
package verification

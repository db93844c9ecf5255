// Package services defines shared utilities consumed by the pipeline phases
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp evaluation IDs, phase names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent evaluation statuses (failed vs needs_review).
//
// Subpackages hold the collaborator clients (text generation, public data)
// that phases consume through narrow interfaces.
package services

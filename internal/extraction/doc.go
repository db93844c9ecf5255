// Package extraction reads pitch material into startup.Extracted.
//
// Structured documents (JSON, YAML) are decoded directly. Free text and
// video URLs go through the text generator, so they require a configured
// model. PDF parsing is not supported; callers receive a validation error.
package extraction

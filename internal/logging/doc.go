// Package logging assembles structured slog loggers and formatting helpers used
// across dealflow.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so phase code can tag log lines
// with evaluation IDs, phases, and correlation IDs. A no-op logger is provided
// for tests and for wiring code that cannot fail.
package logging

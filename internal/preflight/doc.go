// Package preflight provides readiness checks for the services and
// filesystem paths dealflow depends on.
//
// `dealflow doctor` runs RunAll, which executes every applicable check
// concurrently and returns results in a stable order. Features that are
// switched off report as passed with a "disabled" detail; a missing LLM key
// is reported as a failed optional check because every model-backed step
// then runs on its deterministic fallback.
package preflight

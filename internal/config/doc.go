// Package config loads, normalizes, and validates dealflow configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY and DEALFLOW_PUBLIC_DATA_KEY. The Config type centralizes
// every knob the CLI and MCP server need: store and deal note locations, the
// text generation connection, the public data source, investor weights and
// notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

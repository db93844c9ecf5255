// Package llm provides the text generation capability used across the
// evaluation pipeline.
//
// TextGenerator is the single-method interface injected into estimators, the
// verification comparator, extractors, the interviewer and the memo refiner.
// New returns an OpenRouter Client when an API key is configured and Disabled
// otherwise, so availability is decided once at construction.
//
// # Entry Points
//
// New: construct a TextGenerator from config.LLMConfig.
// Client.Generate: send a prompt under the JSON-only system prompt.
// Client.CompleteJSON: send explicit system/user prompts.
// Client.HealthCheck: verify API key and model availability.
// DecodeStrict: decode exactly one JSON value from model output.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty content and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
//
// # Fallback
//
// Model output is parsed with DecodeStrict only. Anything that is not exactly
// one JSON value is ErrMalformedResponse and callers switch to their
// deterministic fallback instead of repairing the text.
package llm

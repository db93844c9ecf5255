// Package notifications delivers evaluation events via ntfy.
//
// The default implementation publishes to the ntfy topic URL configured in
// config.toml and degrades to a no-op when no topic is set. Each event class
// (evaluations, batches, errors) can be switched off independently; the test
// event is always delivered so `dealflow test-notify` can verify the wiring.
//
// Callers depend only on the Service interface.
package notifications
